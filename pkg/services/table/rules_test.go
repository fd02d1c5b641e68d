package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fadedpez/felttable/pkg/entities"
)

func up(rank entities.Rank) *entities.Card {
	return &entities.Card{Suit: entities.Hearts, Rank: rank, FaceUp: true}
}

func down(rank entities.Rank) *entities.Card {
	return &entities.Card{Suit: entities.Spades, Rank: rank, FaceUp: false}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		cards []*entities.Card
		want  int
	}{
		{"blackjack", []*entities.Card{up(entities.Ace), up(entities.King)}, 21},
		{"two aces", []*entities.Card{up(entities.Ace), up(entities.Ace)}, 12},
		{"soft becomes hard", []*entities.Card{up(entities.Ace), up(entities.Ace), up(entities.Nine)}, 21},
		{"face cards", []*entities.Card{up(entities.King), up(entities.Queen)}, 20},
		{"bust", []*entities.Card{up(entities.King), up(entities.Queen), up(entities.Two)}, 22},
		{"hole card excluded", []*entities.Card{up(entities.Nine), down(entities.King)}, 9},
		{"empty", nil, 0},
		{"soft seventeen", []*entities.Card{up(entities.Ace), up(entities.Six)}, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.cards))
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack([]*entities.Card{up(entities.Ace), up(entities.King)}))
	assert.False(t, IsBlackjack([]*entities.Card{up(entities.Seven), up(entities.Seven), up(entities.Seven)}), "three-card 21 is not a blackjack")
	assert.False(t, IsBlackjack([]*entities.Card{up(entities.King), up(entities.Queen)}))
}

func TestCanSplit(t *testing.T) {
	assert.True(t, CanSplit([]*entities.Card{up(entities.Eight), up(entities.Eight)}))
	assert.True(t, CanSplit([]*entities.Card{up(entities.Ten), up(entities.King)}), "ten-valued ranks split together")
	assert.True(t, CanSplit([]*entities.Card{up(entities.Jack), up(entities.Queen)}))
	assert.False(t, CanSplit([]*entities.Card{up(entities.Ten), up(entities.Nine)}))
	assert.False(t, CanSplit([]*entities.Card{up(entities.Eight), up(entities.Eight), up(entities.Eight)}))
	assert.False(t, CanSplit([]*entities.Card{up(entities.Eight)}))
}

func TestDealerShouldHit(t *testing.T) {
	assert.True(t, DealerShouldHit([]*entities.Card{up(entities.Ten), up(entities.Six)}))
	assert.False(t, DealerShouldHit([]*entities.Card{up(entities.Ten), up(entities.Seven)}))
	assert.False(t, DealerShouldHit([]*entities.Card{up(entities.Ace), up(entities.Six)}), "dealer stands on soft 17")
}

func TestNeedsReshuffle(t *testing.T) {
	assert.True(t, NeedsReshuffle(nil, 15))
	assert.True(t, NeedsReshuffle(&entities.Deck{Cards: make([]*entities.Card, 14)}, 15))
	assert.False(t, NeedsReshuffle(&entities.Deck{Cards: make([]*entities.Card, 15)}, 15))

	deck := entities.NewDeck()
	assert.False(t, NeedsReshuffle(deck, 15))
}
