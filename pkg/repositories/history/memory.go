package history

import (
	"context"
	"sync"
)

// MemoryRecorder implements Recorder with in-memory storage
type MemoryRecorder struct {
	mu     sync.RWMutex
	rounds []*RoundRecord
}

// NewMemoryRecorder creates a new in-memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{rounds: make([]*RoundRecord, 0)}
}

// RecordRound appends a round record
func (r *MemoryRecorder) RecordRound(ctx context.Context, rec *RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rec
	r.rounds = append(r.rounds, &cp)
	return nil
}

// Rounds returns all recorded rounds
func (r *MemoryRecorder) Rounds() []*RoundRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*RoundRecord, len(r.rounds))
	copy(result, r.rounds)
	return result
}

// Close is a no-op for the memory recorder
func (r *MemoryRecorder) Close() error {
	return nil
}
