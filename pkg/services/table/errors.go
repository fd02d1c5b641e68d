package table

import "errors"

var (
	ErrIllegalAction  = errors.New("action not legal for the hand's current status")
	ErrNotYourTurn    = errors.New("hand does not hold the turn")
	ErrHandNotFound   = errors.New("hand not found on table")
	ErrSeatOccupied   = errors.New("seat is already occupied")
	ErrSeatOutOfRange = errors.New("seat index out of range")
	ErrSeatEmpty      = errors.New("no player at seat")
	ErrBetOutOfRange  = errors.New("bet amount outside table limits")
	ErrWrongPhase     = errors.New("table is not in the required phase")

	// errStaleTimer marks a countdown tick that refers to a table or
	// phase that has since moved on. Stale ticks are discarded silently
	// and never surfaced to players.
	errStaleTimer = errors.New("stale timer")
)
