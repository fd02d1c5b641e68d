package table

import (
	"context"
	"errors"

	"github.com/fadedpez/felttable/pkg/entities"
)

// ErrPlayerNotFound is returned when a player lookup misses
var ErrPlayerNotFound = errors.New("player not found")

// Repository is the persistence gateway for the table aggregate. The
// core only ever exchanges typed values with it; how an implementation
// serializes cards is its own business. Balance- and wager-affecting
// writes are awaited by the core before any dependent step proceeds.
type Repository interface {
	// Table state
	LoadLatestTable(ctx context.Context) (*entities.Table, error) // nil when no table exists yet
	SaveTable(ctx context.Context, t *entities.Table) error

	// Hands
	LoadHands(ctx context.Context, tableID string) ([]*entities.Hand, error)
	SaveHand(ctx context.Context, tableID string, h *entities.Hand) error
	DeleteHands(ctx context.Context, tableID string) error

	// Players
	LoadPlayers(ctx context.Context, ids []string) ([]*entities.Player, error)
	FindPlayerByName(ctx context.Context, name string) (*entities.Player, error)
	SavePlayer(ctx context.Context, p *entities.Player) error

	// Close closes any resources used by the repository
	Close() error
}
