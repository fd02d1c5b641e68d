package table

import (
	"strconv"

	"github.com/fadedpez/felttable/pkg/entities"
)

func CardValue(card *entities.Card) int {
	switch card.Rank {
	case entities.Ace:
		return 11
	case entities.Jack, entities.Queen, entities.King:
		return 10
	default:
		val, _ := strconv.Atoi(string(card.Rank))
		return val
	}
}

func IsAce(card *entities.Card) bool {
	return card.Rank == entities.Ace
}

func isTenValued(card *entities.Card) bool {
	return CardValue(card) == 10
}

// Score returns the best total for the visible cards in a hand. Face-down
// cards never contribute, so the dealer's hole card stays out of the score
// until it is revealed. Aces count as 11 until the total would bust, then
// drop to 1 one at a time.
func Score(cards []*entities.Card) int {
	score := 0
	aces := 0

	for _, card := range cards {
		if !card.FaceUp {
			continue
		}
		if IsAce(card) {
			aces++
		}
		score += CardValue(card)
	}

	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}

	return score
}

func IsBlackjack(cards []*entities.Card) bool {
	return len(cards) == 2 && Score(cards) == 21
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []*entities.Card) bool {
	return Score(cards) > 21
}

// CanSplit reports whether the first two cards form a splittable pair.
// Equal ranks split, and the ten-valued ranks (10, J, Q, K) are
// split-compatible with each other.
func CanSplit(cards []*entities.Card) bool {
	if len(cards) != 2 {
		return false
	}
	if isTenValued(cards[0]) && isTenValued(cards[1]) {
		return true
	}
	return cards[0].Rank == cards[1].Rank
}

// CanDouble reports whether the hand is still in its first-decision
// window (exactly two cards).
func CanDouble(cards []*entities.Card) bool {
	return len(cards) == 2
}

// CanSurrender reports whether the hand is still in its first-decision
// window (exactly two cards).
func CanSurrender(cards []*entities.Card) bool {
	return len(cards) == 2
}

// DealerShouldHit applies the fixed house rule: hit below 17, stand on
// any 17, hard or soft.
func DealerShouldHit(cards []*entities.Card) bool {
	return Score(cards) < 17
}

// NeedsReshuffle checks if the deck has passed the cut card. Checked
// before starting a betting round, never mid-round.
func NeedsReshuffle(deck *entities.Deck, cutCard int) bool {
	return deck == nil || deck.Remaining() < cutCard
}
