package entities

import "fmt"

// Suit represents a card suit

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Rank represents a card rank

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Card represents a playing card. Suit and rank never change after creation;
// only the orientation flips, when the dealer reveals the hole card.

type Card struct {
	Suit   Suit `json:"suit"`
	Rank   Rank `json:"rank"`
	FaceUp bool `json:"faceUp"`
}

// NewCard creates a new card

func NewCard(suit Suit, rank Rank) *Card {
	return &Card{
		Suit: suit,
		Rank: rank,
	}
}

// Facing returns a copy of the card with the requested orientation
func (c *Card) Facing(up bool) *Card {
	return &Card{Suit: c.Suit, Rank: c.Rank, FaceUp: up}
}

// String returns the string representation of the card

func (c *Card) String() string {
	if !c.FaceUp {
		return "face-down card"
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}
