package entities

import (
	"errors"
	"math/rand"
	"time"
)

// ErrEmptyDeck indicates a draw from an exhausted deck. The reshuffle
// check before each betting round is supposed to make this unreachable,
// so callers treat it as a fatal condition and log it.
var ErrEmptyDeck = errors.New("deck is empty")

type Deck struct {
	Cards []*Card
}

// NewDeck creates a new deck of 52 cards, one of each rank and suit
func NewDeck() *Deck {
	cards := make([]*Card, 0, 52)
	suits := []Suit{Hearts, Diamonds, Clubs, Spades}
	ranks := []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}

	return &Deck{Cards: cards}
}

// Shuffle permutes the deck uniformly (Fisher-Yates)
func (d *Deck) Shuffle() {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	r.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Draw removes the top card from the deck and returns it with the
// requested orientation.
func (d *Deck) Draw(faceUp bool) (*Card, error) {
	if len(d.Cards) == 0 {
		return nil, ErrEmptyDeck
	}
	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	return card.Facing(faceUp), nil
}

// Remaining returns the number of undrawn cards
func (d *Deck) Remaining() int {
	return len(d.Cards)
}
