package table

import (
	"context"

	"github.com/fadedpez/felttable/pkg/entities"
)

// playDealer reveals the hole card, hits to 17 and settles the round.
// The dealer always plays out, even when every player hand is already
// resolved, so the final dealer total is part of the record. Caller
// holds the lock.
func (s *Service) playDealer(ctx context.Context) {
	t := s.table

	t.Phase = entities.PhaseDealerTurn
	t.CurrentTurn = entities.NoTurn
	t.Timer = entities.NoTimer

	for _, c := range t.DealerHand {
		c.FaceUp = true
	}
	t.DealerScore = Score(t.DealerHand)
	s.saveTableLogged(ctx)
	s.publish()

	for DealerShouldHit(t.DealerHand) {
		card, err := t.Deck.Draw(true)
		if err != nil {
			s.logger.Error("deck exhausted during dealer turn", "table", t.ID, "err", err)
			break
		}
		t.DealerHand = append(t.DealerHand, card)
		t.DealerScore = Score(t.DealerHand)
	}

	s.logger.Info("dealer stands", "table", t.ID, "score", t.DealerScore, "cards", len(t.DealerHand))

	t.Phase = entities.PhasePayout
	s.saveTableLogged(ctx)
	s.publish()

	s.settle(ctx)
}
