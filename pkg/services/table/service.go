// Package table implements the shared blackjack table: deck lifecycle,
// hand evaluation, turn sequencing, dealer autoplay, settlement and the
// timer-driven phase cycle. All mutations funnel through one
// mutex-guarded Service so player actions and countdown ticks never race
// on the hand list or a balance.
package table

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/fadedpez/felttable/pkg/entities"
	"github.com/fadedpez/felttable/pkg/repositories/history"
	tablerepo "github.com/fadedpez/felttable/pkg/repositories/table"
	"github.com/fadedpez/felttable/pkg/scheduler"
)

// Publisher receives a snapshot of the table after every committed
// mutation. Implementations must not call back into the Service.
type Publisher interface {
	Publish(t *entities.Table)
}

// Options holds the table rules that were hard constants in earlier
// iterations: bet limits, countdown durations and the cut card.
type Options struct {
	MinBet             int64
	MaxBet             int64
	StartingBalance    int64
	Seats              int
	CutCard            int
	BettingSeconds     int
	ReshuffleSeconds   int
	PayoutDelaySeconds int
}

// DefaultOptions returns the standard table rules
func DefaultOptions() Options {
	return Options{
		MinBet:             5,
		MaxBet:             1000,
		StartingBalance:    10000,
		Seats:              5,
		CutCard:            15,
		BettingSeconds:     15,
		ReshuffleSeconds:   5,
		PayoutDelaySeconds: 3,
	}
}

// Service owns the single live table aggregate for a session
type Service struct {
	opts    Options
	repo    tablerepo.Repository
	history history.Recorder
	sched   *scheduler.Scheduler
	clock   quartz.Clock
	logger  *log.Logger
	pub     Publisher

	mu      sync.Mutex
	table   *entities.Table
	players map[string]*entities.Player
	baseCtx context.Context
}

// NewService creates a table service. The publisher and history
// recorder are optional and attached separately.
func NewService(opts Options, repo tablerepo.Repository, sched *scheduler.Scheduler, clock quartz.Clock, logger *log.Logger) *Service {
	if repo == nil {
		panic("repository cannot be nil")
	}
	return &Service{
		opts:    opts,
		repo:    repo,
		sched:   sched,
		clock:   clock,
		logger:  logger.WithPrefix("table"),
		players: make(map[string]*entities.Player),
		baseCtx: context.Background(),
	}
}

// SetPublisher attaches a snapshot publisher
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pub = p
}

// SetRecorder attaches a best-effort round history recorder
func (s *Service) SetRecorder(r history.Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = r
}

// Start loads the latest persisted table, or creates a fresh one, and
// resumes any countdown the loaded phase implies.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baseCtx = ctx

	t, err := s.repo.LoadLatestTable(ctx)
	if err != nil {
		return fmt.Errorf("loading latest table: %w", err)
	}
	if t == nil {
		t = entities.NewTable()
		if err := s.repo.SaveTable(ctx, t); err != nil {
			return fmt.Errorf("saving new table: %w", err)
		}
		s.table = t
		s.logger.Info("created new table", "table", t.ID)
		s.publish()
		return nil
	}

	hands, err := s.repo.LoadHands(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("loading hands: %w", err)
	}
	t.Hands = hands
	t.CurrentTurn = entities.NoTurn
	for i, h := range t.Hands {
		if h.IsTurn {
			t.CurrentTurn = i
			break
		}
	}
	s.table = t

	ids := make([]string, 0, len(t.Seats)+len(t.Hands))
	seen := make(map[string]bool)
	for _, id := range t.Seats {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, h := range t.Hands {
		if !seen[h.PlayerID] {
			seen[h.PlayerID] = true
			ids = append(ids, h.PlayerID)
		}
	}
	players, err := s.repo.LoadPlayers(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}
	for _, p := range players {
		s.players[p.ID] = p
	}

	s.logger.Info("resumed table", "table", t.ID, "phase", t.Phase, "hands", len(t.Hands))

	switch t.Phase {
	case entities.PhaseBetting:
		s.scheduleBetting(t.ID, remainingSeconds(t.Timer))
	case entities.PhaseReshuffling:
		s.scheduleReshuffle(t.ID, remainingSeconds(t.Timer))
	case entities.PhaseDealerTurn:
		// A round interrupted mid-dealer-turn finishes playing out
		if t.Deck == nil {
			t.Deck = &entities.Deck{}
		}
		s.playDealer(ctx)
	case entities.PhasePayout:
		s.schedulePayoutDelay(t.ID)
	}

	s.publish()
	return nil
}

func remainingSeconds(timer int) int {
	if timer < 1 {
		return 1
	}
	return timer
}

// Snapshot returns a deep copy of the current table
func (s *Service) Snapshot() *entities.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}

// Player returns a copy of a seated player, or nil
func (s *Service) Player(id string) *entities.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, exists := s.players[id]; exists {
		return p.Clone()
	}
	return nil
}

// JoinSeat seats a player by name, creating the player on first join.
// Joining a waiting table starts the first betting round.
func (s *Service) JoinSeat(ctx context.Context, name string, seat int) (*entities.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seat < 0 || seat >= s.opts.Seats {
		return nil, ErrSeatOutOfRange
	}
	if _, taken := s.table.Seats[seat]; taken {
		return nil, ErrSeatOccupied
	}

	p, err := s.repo.FindPlayerByName(ctx, name)
	if errors.Is(err, tablerepo.ErrPlayerNotFound) {
		p = &entities.Player{
			ID:        uuid.NewString(),
			Name:      name,
			Balance:   s.opts.StartingBalance,
			CreatedAt: s.clock.Now(),
		}
	} else if err != nil {
		return nil, fmt.Errorf("finding player: %w", err)
	}

	p.LastActiveAt = s.clock.Now()
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("persisting player: %w", err)
	}

	s.players[p.ID] = p
	s.table.Seats[seat] = p.ID
	s.logger.Info("player joined", "player", p.Name, "seat", seat, "balance", p.Balance)

	if s.table.Phase == entities.PhaseWaiting {
		s.beginRound(ctx)
	} else {
		s.saveTableLogged(ctx)
		s.publish()
	}

	return p.Clone(), nil
}

// LeaveSeat removes a player's seat and hands. The table resets to a
// fresh aggregate when the last seat empties.
func (s *Service) LeaveSeat(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for seat, id := range s.table.Seats {
		if id == playerID {
			delete(s.table.Seats, seat)
		}
	}

	kept := make([]*entities.Hand, 0, len(s.table.Hands))
	for _, h := range s.table.Hands {
		if h.PlayerID != playerID {
			kept = append(kept, h)
		}
	}
	s.table.Hands = kept

	if len(s.table.Seats) == 0 {
		s.resetLocked(ctx)
		return nil
	}

	// Recover the turn pointer if the departed player held it
	s.table.CurrentTurn = entities.NoTurn
	holder := false
	for i, h := range s.table.Hands {
		if h.IsTurn {
			s.table.CurrentTurn = i
			holder = true
			break
		}
	}
	if !holder && s.table.Phase == entities.PhasePlayerTurns {
		for i, h := range s.table.Hands {
			if h.Status == entities.HandActive {
				s.table.CurrentTurn = i
				h.IsTurn = true
				s.saveHandLogged(ctx, h)
				holder = true
				break
			}
		}
		if !holder {
			s.playDealer(ctx)
			return nil
		}
	}

	s.saveTableLogged(ctx)
	s.publish()
	return nil
}

// PlaceBet creates a hand for the player seated at seat. The wager is
// withdrawn and acknowledged before the hand exists.
func (s *Service) PlaceBet(ctx context.Context, seat int, amount int64) (*entities.Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table.Phase != entities.PhaseBetting {
		return nil, ErrWrongPhase
	}
	if amount < s.opts.MinBet || amount > s.opts.MaxBet {
		return nil, ErrBetOutOfRange
	}

	playerID, seated := s.table.Seats[seat]
	if !seated {
		return nil, ErrSeatEmpty
	}
	for _, h := range s.table.Hands {
		if h.Seat == seat {
			return nil, ErrIllegalAction
		}
	}

	p, exists := s.players[playerID]
	if !exists {
		return nil, tablerepo.ErrPlayerNotFound
	}
	if err := p.Withdraw(amount); err != nil {
		return nil, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		p.Deposit(amount)
		return nil, fmt.Errorf("persisting bet withdrawal: %w", err)
	}

	h := entities.NewHand(playerID, seat, amount)
	if err := s.repo.SaveHand(ctx, s.table.ID, h); err != nil {
		p.Deposit(amount)
		if saveErr := s.repo.SavePlayer(ctx, p); saveErr != nil {
			s.logger.Error("reverting bet withdrawal", "player", playerID, "err", saveErr)
		}
		return nil, fmt.Errorf("persisting hand: %w", err)
	}

	s.insertHandBySeat(h)
	s.logger.Info("bet placed", "player", p.Name, "seat", seat, "amount", amount)
	s.saveTableLogged(ctx)
	s.publish()

	return h.Clone(), nil
}

// Reset discards the current aggregate for a fresh one, cancelling any
// timer bound to the old table ID. Seated players carry over.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
}

func (s *Service) resetLocked(ctx context.Context) {
	old := s.table
	s.sched.CancelTable(old.ID)
	if err := s.repo.DeleteHands(ctx, old.ID); err != nil {
		s.logger.Warn("deleting hands of discarded table", "table", old.ID, "err", err)
	}

	fresh := entities.NewTable()
	for seat, id := range old.Seats {
		fresh.Seats[seat] = id
	}
	s.table = fresh
	s.logger.Info("table reset", "old", old.ID, "new", fresh.ID)

	if len(fresh.Seats) > 0 {
		s.beginRound(ctx)
		return
	}
	s.saveTableLogged(ctx)
	s.publish()
}

// ExternalUpdate is an externally observed change to replicate into
// local state. Applying one never triggers a persistence write.
type ExternalUpdate struct {
	Table        *entities.Table  `json:"table,omitempty"`
	Hand         *entities.Hand   `json:"hand,omitempty"`
	RemoveHandID string           `json:"removeHandId,omitempty"`
	Player       *entities.Player `json:"player,omitempty"`
}

// ApplyExternalUpdate merges an externally observed change into local
// state. External state is authoritative: on conflict it overwrites any
// stale local prediction.
func (s *Service) ApplyExternalUpdate(u ExternalUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Table != nil {
		if u.Table.ID != s.table.ID {
			// Another writer replaced the aggregate; adopt theirs and
			// drop every timer bound to ours.
			s.sched.CancelTable(s.table.ID)
			s.table = u.Table.Clone()
		} else {
			t := s.table
			t.Phase = u.Table.Phase
			t.DealerScore = u.Table.DealerScore
			t.CurrentTurn = u.Table.CurrentTurn
			t.Timer = u.Table.Timer
			t.UpdatedAt = u.Table.UpdatedAt
			t.DealerHand = make([]*entities.Card, len(u.Table.DealerHand))
			for i, c := range u.Table.DealerHand {
				cc := *c
				t.DealerHand[i] = &cc
			}
			if u.Table.Deck != nil {
				t.Deck = &entities.Deck{Cards: make([]*entities.Card, len(u.Table.Deck.Cards))}
				for i, c := range u.Table.Deck.Cards {
					cc := *c
					t.Deck.Cards[i] = &cc
				}
			}
			if u.Table.Seats != nil {
				t.Seats = make(map[int]string, len(u.Table.Seats))
				for k, v := range u.Table.Seats {
					t.Seats[k] = v
				}
			}
		}
	}

	if u.Hand != nil {
		replaced := false
		for i, h := range s.table.Hands {
			if h.ID == u.Hand.ID {
				s.table.Hands[i] = u.Hand.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			s.insertHandBySeat(u.Hand.Clone())
		}
	}

	if u.RemoveHandID != "" {
		kept := make([]*entities.Hand, 0, len(s.table.Hands))
		for _, h := range s.table.Hands {
			if h.ID != u.RemoveHandID {
				kept = append(kept, h)
			}
		}
		s.table.Hands = kept
	}

	if u.Hand != nil || u.RemoveHandID != "" {
		s.table.CurrentTurn = entities.NoTurn
		for i, h := range s.table.Hands {
			if h.IsTurn {
				s.table.CurrentTurn = i
				break
			}
		}
	}

	if u.Player != nil {
		s.players[u.Player.ID] = u.Player.Clone()
	}
}

// insertHandBySeat keeps the hand list in seat order
func (s *Service) insertHandBySeat(h *entities.Hand) {
	hands := s.table.Hands
	at := len(hands)
	for i, existing := range hands {
		if existing.Seat > h.Seat {
			at = i
			break
		}
	}
	hands = append(hands, nil)
	copy(hands[at+1:], hands[at:])
	hands[at] = h
	s.table.Hands = hands
}

func (s *Service) publish() {
	if s.pub != nil {
		s.pub.Publish(s.table.Clone())
	}
}

func (s *Service) touch() {
	s.table.UpdatedAt = s.clock.Now()
}

// saveTableLogged mirrors the aggregate; failures here are logged, not
// surfaced, since no balance depends on them.
func (s *Service) saveTableLogged(ctx context.Context) {
	s.touch()
	if err := s.repo.SaveTable(ctx, s.table); err != nil {
		s.logger.Warn("persisting table", "table", s.table.ID, "err", err)
	}
}

func (s *Service) saveHandLogged(ctx context.Context, h *entities.Hand) {
	if err := s.repo.SaveHand(ctx, s.table.ID, h); err != nil {
		s.logger.Warn("persisting hand", "hand", h.ID, "err", err)
	}
}
