package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadedpez/felttable/pkg/entities"
	"github.com/fadedpez/felttable/pkg/realtime"
	tablerepo "github.com/fadedpez/felttable/pkg/repositories/table"
	"github.com/fadedpez/felttable/pkg/scheduler"
	"github.com/fadedpez/felttable/pkg/services/table"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := log.New(io.Discard)
	clock := quartz.NewReal()
	sched := scheduler.New(clock, logger)
	t.Cleanup(sched.Stop)

	svc := table.NewService(table.DefaultOptions(), tablerepo.NewMemoryRepository(), sched, clock, logger)
	hub := realtime.NewHub(svc, logger)
	t.Cleanup(hub.Close)
	svc.SetPublisher(hub)

	require.NoError(t, svc.Start(context.Background()))

	ts := httptest.NewServer(New(svc, hub, logger))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestStateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap entities.Table
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, entities.PhaseWaiting, snap.Phase)
	assert.NotEmpty(t, snap.ID)
}

func TestJoinEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/join", map[string]any{"name": "alice", "seat": 0})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p entities.Player
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "alice", p.Name)
	assert.Equal(t, int64(10000), p.Balance)

	// Same seat again conflicts
	resp = postJSON(t, ts.URL+"/join", map[string]any{"name": "bob", "seat": 0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Seat out of range is a bad request
	resp = postJSON(t, ts.URL+"/join", map[string]any{"name": "bob", "seat": 12})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing name is a bad request
	resp = postJSON(t, ts.URL+"/join", map[string]any{"seat": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBetEndpointPhaseErrors(t *testing.T) {
	ts := newTestServer(t)

	// No betting window is open on a waiting table
	resp := postJSON(t, ts.URL+"/bet", map[string]any{"seat": 0, "amount": 50})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestActEndpointUnknownHand(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/join", map[string]any{"name": "alice", "seat": 0})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/act", map[string]any{"action": "hit", "handId": "nope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "actions outside player turns are rejected first")
}
