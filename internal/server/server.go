// Package server exposes the table service over HTTP: a small JSON API
// for seat, bet and action commands, and a websocket endpoint for
// snapshot streaming.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/fadedpez/felttable/pkg/entities"
	"github.com/fadedpez/felttable/pkg/realtime"
	tablerepo "github.com/fadedpez/felttable/pkg/repositories/table"
	"github.com/fadedpez/felttable/pkg/services/table"
)

// Server routes HTTP requests to the table service
type Server struct {
	svc    *table.Service
	hub    *realtime.Hub
	logger *log.Logger
	mux    *http.ServeMux
}

// New creates the HTTP server for a table service and hub
func New(svc *table.Service, hub *realtime.Hub, logger *log.Logger) *Server {
	s := &Server{
		svc:    svc,
		hub:    hub,
		logger: logger.WithPrefix("http"),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("POST /join", s.handleJoin)
	s.mux.HandleFunc("POST /leave", s.handleLeave)
	s.mux.HandleFunc("POST /bet", s.handleBet)
	s.mux.HandleFunc("POST /act", s.handleAct)
	s.mux.HandleFunc("POST /reset", s.handleReset)
	s.mux.Handle("GET /ws", hub)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}

type joinRequest struct {
	Name string `json:"name"`
	Seat int    `json:"seat"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	p, err := s.svc.JoinSeat(r.Context(), req.Name, req.Seat)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type leaveRequest struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.svc.LeaveSeat(r.Context(), req.PlayerID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type betRequest struct {
	Seat   int   `json:"seat"`
	Amount int64 `json:"amount"`
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h, err := s.svc.PlaceBet(r.Context(), req.Seat, req.Amount)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

type actRequest struct {
	Action string `json:"action"`
	HandID string `json:"handId"`
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	var req actRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.svc.Act(r.Context(), table.Action(req.Action), req.HandID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.svc.Reset(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeServiceError maps the service's sentinel errors onto statuses.
// Anything unrecognized is a 500 and logged.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, table.ErrWrongPhase),
		errors.Is(err, table.ErrIllegalAction),
		errors.Is(err, table.ErrNotYourTurn):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, table.ErrBetOutOfRange),
		errors.Is(err, table.ErrSeatOutOfRange):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, table.ErrSeatOccupied):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, table.ErrSeatEmpty),
		errors.Is(err, table.ErrHandNotFound),
		errors.Is(err, tablerepo.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, entities.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, err)
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
