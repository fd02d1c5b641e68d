package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadedpez/felttable/pkg/entities"
)

func TestMemoryRepositoryTables(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	loaded, err := repo.LoadLatestTable(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "empty repository has no latest table")

	first := entities.NewTable()
	require.NoError(t, repo.SaveTable(ctx, first))
	second := entities.NewTable()
	require.NoError(t, repo.SaveTable(ctx, second))

	loaded, err = repo.LoadLatestTable(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, second.ID, loaded.ID, "latest means most recently saved")

	// The loaded copy must be independent of the stored one
	loaded.Phase = entities.PhasePayout
	again, err := repo.LoadLatestTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseWaiting, again.Phase)
}

func TestMemoryRepositoryHands(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	h2 := entities.NewHand("p2", 3, 100)
	h1 := entities.NewHand("p1", 0, 50)
	require.NoError(t, repo.SaveHand(ctx, "t1", h2))
	require.NoError(t, repo.SaveHand(ctx, "t1", h1))

	hands, err := repo.LoadHands(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, hands, 2)
	assert.Equal(t, 0, hands[0].Seat, "hands come back in seat order")
	assert.Equal(t, 3, hands[1].Seat)

	// Updates replace by hand ID
	h1.Status = entities.HandStand
	require.NoError(t, repo.SaveHand(ctx, "t1", h1))
	hands, err = repo.LoadHands(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, hands, 2)
	assert.Equal(t, entities.HandStand, hands[0].Status)

	require.NoError(t, repo.DeleteHands(ctx, "t1"))
	hands, err = repo.LoadHands(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, hands)
}

func TestMemoryRepositoryHandsSameSeatOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	parent := entities.NewHand("p1", 2, 50)
	split := entities.NewHand("p1", 2, 50)
	split.IsSplit = true
	require.NoError(t, repo.SaveHand(ctx, "t1", parent))
	require.NoError(t, repo.SaveHand(ctx, "t1", split))

	// Updating the parent must not move it behind the split hand
	parent.Status = entities.HandStand
	require.NoError(t, repo.SaveHand(ctx, "t1", parent))

	hands, err := repo.LoadHands(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, hands, 2)
	assert.Equal(t, parent.ID, hands[0].ID, "same-seat hands come back in creation order")
	assert.Equal(t, split.ID, hands[1].ID)
}

func TestMemoryRepositoryPlayers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.FindPlayerByName(ctx, "alice")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	p := &entities.Player{ID: "p1", Name: "alice", Balance: 10000}
	require.NoError(t, repo.SavePlayer(ctx, p))

	found, err := repo.FindPlayerByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "p1", found.ID)

	players, err := repo.LoadPlayers(ctx, []string{"p1", "missing"})
	require.NoError(t, err)
	require.Len(t, players, 1, "unknown IDs are skipped")
	assert.Equal(t, int64(10000), players[0].Balance)

	// The stored copy must be independent of the caller's pointer
	p.Balance = 0
	found, err = repo.FindPlayerByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), found.Balance)
}
