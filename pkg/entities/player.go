package entities

import (
	"errors"
	"time"
)

// ErrInsufficientBalance is returned when a wager or withdrawal exceeds
// the player's balance. The requested action is a no-op.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Player represents a seated player. Players persist across rounds;
// their balance never goes negative.

type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Withdraw removes funds from the player's balance, rejecting any
// amount that would take it negative.
func (p *Player) Withdraw(amount int64) error {
	if amount < 0 {
		return errors.New("amount cannot be negative")
	}
	if p.Balance < amount {
		return ErrInsufficientBalance
	}
	p.Balance -= amount
	return nil
}

// Deposit adds funds to the player's balance
func (p *Player) Deposit(amount int64) {
	p.Balance += amount
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	cp := *p
	return &cp
}
