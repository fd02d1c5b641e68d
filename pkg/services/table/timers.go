package table

import (
	"context"
	"time"

	"github.com/fadedpez/felttable/pkg/entities"
	"github.com/fadedpez/felttable/pkg/scheduler"
)

// countdownTick persists and publishes the remaining seconds once per
// second. A tick whose (table, phase) no longer matches live state is
// stale and stops its countdown silently.
func (s *Service) countdownTick(tableID string, phase entities.Phase) func(ctx context.Context, remaining int) error {
	return func(ctx context.Context, remaining int) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.table.ID != tableID || s.table.Phase != phase {
			return errStaleTimer
		}

		s.table.Timer = remaining
		s.saveTableLogged(ctx)
		s.publish()
		return nil
	}
}

func (s *Service) scheduleBetting(tableID string, seconds int) {
	key := scheduler.Key{TableID: tableID, Phase: string(entities.PhaseBetting)}
	s.sched.Countdown(s.baseCtx, key, seconds, s.countdownTick(tableID, entities.PhaseBetting), func(ctx context.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.table.ID != tableID || s.table.Phase != entities.PhaseBetting {
			s.logger.Debug("discarding stale betting expiry", "table", tableID)
			return
		}
		s.enterPlayerTurns(ctx)
	})
}

func (s *Service) scheduleReshuffle(tableID string, seconds int) {
	key := scheduler.Key{TableID: tableID, Phase: string(entities.PhaseReshuffling)}
	s.sched.Countdown(s.baseCtx, key, seconds, s.countdownTick(tableID, entities.PhaseReshuffling), func(ctx context.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.table.ID != tableID || s.table.Phase != entities.PhaseReshuffling {
			s.logger.Debug("discarding stale reshuffle expiry", "table", tableID)
			return
		}
		s.finishReshuffle(ctx)
	})
}

// schedulePayoutDelay holds the settled round on screen briefly, then
// rolls into the next betting window, or resets the table when the last
// seat has emptied.
func (s *Service) schedulePayoutDelay(tableID string) {
	key := scheduler.Key{TableID: tableID, Phase: string(entities.PhasePayout)}
	delay := time.Duration(s.opts.PayoutDelaySeconds) * time.Second
	s.sched.After(s.baseCtx, key, delay, func(ctx context.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.table.ID != tableID || s.table.Phase != entities.PhasePayout {
			s.logger.Debug("discarding stale payout delay", "table", tableID)
			return
		}
		if len(s.table.Seats) == 0 {
			s.resetLocked(ctx)
			return
		}
		s.beginRound(ctx)
	})
}
