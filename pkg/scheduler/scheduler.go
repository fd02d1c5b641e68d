// Package scheduler provides cancellable countdown and delay tasks keyed
// by (table, phase). Every phase transition replaces or cancels the task
// for its key, and resetting a table cancels everything scheduled against
// the old table ID. Time is read through an injectable clock so tests
// never sleep.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Key identifies a scheduled task by the table and phase it serves
type Key struct {
	TableID string
	Phase   string
}

type task struct {
	cancel context.CancelFunc
}

// Scheduler manages countdown tasks for table phases
type Scheduler struct {
	clock  quartz.Clock
	logger *log.Logger
	mu     sync.Mutex
	tasks  map[Key]*task
}

// New creates a scheduler on the given clock
func New(clock quartz.Clock, logger *log.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		logger: logger.WithPrefix("scheduler"),
		tasks:  make(map[Key]*task),
	}
}

// Countdown starts a once-per-second countdown for key, replacing any
// task already scheduled under it. tick runs after each elapsed second
// with the seconds remaining; a tick error stops the countdown without
// running expire. expire runs when the countdown reaches zero.
func (s *Scheduler) Countdown(ctx context.Context, key Key, seconds int, tick func(ctx context.Context, remaining int) error, expire func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(ctx)
	t := &task{cancel: cancel}
	s.replace(key, t)

	go func() {
		defer s.remove(key, t)

		ticker := s.clock.NewTicker(time.Second, "countdown", key.TableID, key.Phase)
		defer ticker.Stop()

		remaining := seconds
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				remaining--
				if tick != nil {
					if err := tick(ctx, remaining); err != nil {
						s.logger.Debug("countdown stopped", "table", key.TableID, "phase", key.Phase, "err", err)
						return
					}
				}
				if remaining <= 0 {
					expire(ctx)
					return
				}
			}
		}
	}()
}

// After runs fn once after d, replacing any task scheduled under key
func (s *Scheduler) After(ctx context.Context, key Key, d time.Duration, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(ctx)
	t := &task{cancel: cancel}
	s.replace(key, t)

	go func() {
		defer s.remove(key, t)

		timer := s.clock.NewTimer(d, "after", key.TableID, key.Phase)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
			fn(ctx)
		}
	}()
}

// Cancel stops the task scheduled under key, if any
func (s *Scheduler) Cancel(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, exists := s.tasks[key]; exists {
		t.cancel()
		delete(s.tasks, key)
	}
}

// CancelTable stops every task scheduled against a table ID. Called on
// table reset so no countdown from the discarded aggregate can fire.
func (s *Scheduler) CancelTable(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tasks {
		if key.TableID == tableID {
			t.cancel()
			delete(s.tasks, key)
		}
	}
}

// Stop cancels all outstanding tasks
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tasks {
		t.cancel()
		delete(s.tasks, key)
	}
}

func (s *Scheduler) replace(key Key, t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.tasks[key]; exists {
		old.cancel()
	}
	s.tasks[key] = t
}

// remove deletes the map entry only if it still belongs to t, so a task
// finishing late never clobbers its replacement.
func (s *Scheduler) remove(key Key, t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, exists := s.tasks[key]; exists && cur == t {
		t.cancel()
		delete(s.tasks, key)
	}
}
