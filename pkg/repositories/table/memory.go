package table

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadedpez/felttable/pkg/entities"
)

// handRecord pairs a stored hand with its insertion sequence so two
// hands at the same seat (a split) keep their creation order.
type handRecord struct {
	hand *entities.Hand
	seq  int64
}

// MemoryRepository implements Repository with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Tables by ID, with the most recently saved ID tracked separately
	tables   map[string]*entities.Table
	latestID string
	// Map of tableID to hands by hand ID
	hands   map[string]map[string]*handRecord
	nextSeq int64
	// Players by ID
	players map[string]*entities.Player
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tables:  make(map[string]*entities.Table),
		hands:   make(map[string]map[string]*handRecord),
		players: make(map[string]*entities.Player),
	}
}

// LoadLatestTable returns the most recently saved table, or nil
func (r *MemoryRepository) LoadLatestTable(ctx context.Context) (*entities.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tables[r.latestID]
	if !exists {
		return nil, nil
	}
	return t.Clone(), nil
}

// SaveTable stores a table snapshot
func (r *MemoryRepository) SaveTable(ctx context.Context, t *entities.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := t.Clone()
	cp.UpdatedAt = time.Now()
	r.tables[t.ID] = cp
	r.latestID = t.ID
	return nil
}

// LoadHands retrieves all hands for a table in seat order, with hands
// at the same seat in creation order so a split plays back correctly.
func (r *MemoryRepository) LoadHands(ctx context.Context, tableID string) ([]*entities.Hand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID, exists := r.hands[tableID]
	if !exists {
		return []*entities.Hand{}, nil
	}
	records := make([]*handRecord, 0, len(byID))
	for _, rec := range byID {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].hand.Seat != records[j].hand.Seat {
			return records[i].hand.Seat < records[j].hand.Seat
		}
		return records[i].seq < records[j].seq
	})

	result := make([]*entities.Hand, len(records))
	for i, rec := range records {
		result[i] = rec.hand.Clone()
	}
	return result, nil
}

// SaveHand creates or updates a hand for a table. An update keeps the
// hand's original insertion sequence.
func (r *MemoryRepository) SaveHand(ctx context.Context, tableID string, h *entities.Hand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.hands[tableID]; !exists {
		r.hands[tableID] = make(map[string]*handRecord)
	}
	if rec, exists := r.hands[tableID][h.ID]; exists {
		rec.hand = h.Clone()
		return nil
	}
	r.nextSeq++
	r.hands[tableID][h.ID] = &handRecord{hand: h.Clone(), seq: r.nextSeq}
	return nil
}

// DeleteHands removes all hands for a table
func (r *MemoryRepository) DeleteHands(ctx context.Context, tableID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.hands, tableID)
	return nil
}

// LoadPlayers retrieves players by ID, skipping unknown IDs
func (r *MemoryRepository) LoadPlayers(ctx context.Context, ids []string) ([]*entities.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Player, 0, len(ids))
	for _, id := range ids {
		if p, exists := r.players[id]; exists {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

// FindPlayerByName retrieves a player by display name
func (r *MemoryRepository) FindPlayerByName(ctx context.Context, name string) (*entities.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.Name == name {
			return p.Clone(), nil
		}
	}
	return nil, ErrPlayerNotFound
}

// SavePlayer creates or updates a player
func (r *MemoryRepository) SavePlayer(ctx context.Context, p *entities.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[p.ID] = p.Clone()
	return nil
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}
