package entities

import "github.com/google/uuid"

// HandStatus represents the current state of a wagered hand
type HandStatus string

const (
	HandBetting   HandStatus = "betting"
	HandActive    HandStatus = "active"
	HandStand     HandStatus = "stand"
	HandBust      HandStatus = "bust"
	HandBlackjack HandStatus = "blackjack"
	HandSurrender HandStatus = "surrender"
	HandDouble    HandStatus = "double"
	HandWon       HandStatus = "won"
	HandLost      HandStatus = "lost"
	HandPush      HandStatus = "push"
)

// Resolved reports whether the hand can take no further turn actions.
// Only an active hand belongs in the turn queue.
func (s HandStatus) Resolved() bool {
	return s != HandActive
}

// Hand represents a single wagered sequence of cards at a seat. A seat
// owns two hands after a split. Hands are created when a bet is placed
// and removed at the start of the next betting round.

type Hand struct {
	ID             string     `json:"id"`
	PlayerID       string     `json:"playerId"`
	Seat           int        `json:"seatPosition"`
	Cards          []*Card    `json:"cards"`
	Wager          int64      `json:"wager"`
	Status         HandStatus `json:"status"`
	IsTurn         bool       `json:"isTurn"`
	InsuranceWager int64      `json:"insuranceWager"` // 0 when no insurance was taken
	IsSplit        bool       `json:"isSplit"`
}

// NewHand creates a hand for a placed bet
func NewHand(playerID string, seat int, wager int64) *Hand {
	return &Hand{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Seat:     seat,
		Cards:    make([]*Card, 0, 2),
		Wager:    wager,
		Status:   HandBetting,
	}
}

// AddCard appends a card to the hand
func (h *Hand) AddCard(card *Card) {
	h.Cards = append(h.Cards, card)
}

// Clone returns a deep copy of the hand
func (h *Hand) Clone() *Hand {
	cp := *h
	cp.Cards = make([]*Card, len(h.Cards))
	for i, c := range h.Cards {
		cc := *c
		cp.Cards[i] = &cc
	}
	return &cp
}
