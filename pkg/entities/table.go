package entities

import (
	"time"

	"github.com/google/uuid"
)

// Phase represents where the table is in the round cycle:
// waiting -> betting -> player_turns -> dealer_turn -> payout -> betting,
// with reshuffling insertable before betting when the deck runs low.
// Transitions only ever move forward along the cycle.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseBetting     Phase = "betting"
	PhasePlayerTurns Phase = "player_turns"
	PhaseDealerTurn  Phase = "dealer_turn"
	PhasePayout      Phase = "payout"
	PhaseReshuffling Phase = "reshuffling"
)

// NoTimer marks a table with no countdown running
const NoTimer = -1

// NoTurn marks a table with no hand holding the turn
const NoTurn = -1

// Table is the single aggregate for one shared blackjack session. A
// reset produces a new ID and discards the old aggregate along with
// any timer bound to it.

type Table struct {
	ID          string         `json:"id"`
	Deck        *Deck          `json:"-"`
	DealerHand  []*Card        `json:"dealerHand"`
	DealerScore int            `json:"dealerScore"` // face-up cards only until the hole card is revealed
	Hands       []*Hand        `json:"hands"`       // kept in seat order; split hands follow their parent
	CurrentTurn int            `json:"currentTurnIndex"`
	Phase       Phase          `json:"phase"`
	Timer       int            `json:"timer"` // seconds remaining, NoTimer when none
	Seats       map[int]string `json:"seats"` // seat index -> player ID
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewTable creates a fresh table aggregate in the waiting phase
func NewTable() *Table {
	return &Table{
		ID:          uuid.NewString(),
		Hands:       make([]*Hand, 0),
		CurrentTurn: NoTurn,
		Phase:       PhaseWaiting,
		Timer:       NoTimer,
		Seats:       make(map[int]string),
		UpdatedAt:   time.Now(),
	}
}

// CurrentHand returns the hand holding the turn, or nil
func (t *Table) CurrentHand() *Hand {
	if t.CurrentTurn < 0 || t.CurrentTurn >= len(t.Hands) {
		return nil
	}
	return t.Hands[t.CurrentTurn]
}

// HandByID finds a hand on the table by its ID
func (t *Table) HandByID(id string) *Hand {
	for _, h := range t.Hands {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// Clone returns a deep copy of the table for observers
func (t *Table) Clone() *Table {
	cp := *t
	if t.Deck != nil {
		cards := make([]*Card, len(t.Deck.Cards))
		for i, c := range t.Deck.Cards {
			cc := *c
			cards[i] = &cc
		}
		cp.Deck = &Deck{Cards: cards}
	}
	cp.DealerHand = make([]*Card, len(t.DealerHand))
	for i, c := range t.DealerHand {
		cc := *c
		cp.DealerHand[i] = &cc
	}
	cp.Hands = make([]*Hand, len(t.Hands))
	for i, h := range t.Hands {
		cp.Hands[i] = h.Clone()
	}
	cp.Seats = make(map[int]string, len(t.Seats))
	for k, v := range t.Seats {
		cp.Seats[k] = v
	}
	return &cp
}
