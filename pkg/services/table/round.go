package table

import (
	"context"

	"github.com/fadedpez/felttable/pkg/entities"
)

// beginRound clears the previous round and opens the next one: either a
// betting countdown, or a reshuffle countdown first when the deck has
// passed the cut card. Caller holds the lock.
func (s *Service) beginRound(ctx context.Context) {
	t := s.table

	if len(t.Hands) > 0 {
		if err := s.repo.DeleteHands(ctx, t.ID); err != nil {
			s.logger.Warn("deleting settled hands", "table", t.ID, "err", err)
		}
	}
	t.Hands = make([]*entities.Hand, 0)
	t.DealerHand = nil
	t.DealerScore = 0
	t.CurrentTurn = entities.NoTurn

	if NeedsReshuffle(t.Deck, s.opts.CutCard) {
		t.Phase = entities.PhaseReshuffling
		t.Timer = s.opts.ReshuffleSeconds
		remaining := 0
		if t.Deck != nil {
			remaining = t.Deck.Remaining()
		}
		s.logger.Info("deck past cut card, reshuffling", "table", t.ID, "remaining", remaining)
		s.saveTableLogged(ctx)
		s.publish()
		s.scheduleReshuffle(t.ID, t.Timer)
		return
	}

	s.startBetting(ctx)
}

// startBetting opens the betting window. Caller holds the lock.
func (s *Service) startBetting(ctx context.Context) {
	t := s.table
	t.Phase = entities.PhaseBetting
	t.Timer = s.opts.BettingSeconds
	s.logger.Info("betting open", "table", t.ID, "seconds", t.Timer)
	s.saveTableLogged(ctx)
	s.publish()
	s.scheduleBetting(t.ID, t.Timer)
}

// finishReshuffle swaps in a freshly shuffled deck and opens betting.
// Caller holds the lock.
func (s *Service) finishReshuffle(ctx context.Context) {
	deck := entities.NewDeck()
	deck.Shuffle()
	s.table.Deck = deck
	s.startBetting(ctx)
}

// enterPlayerTurns deals the initial cards and hands the turn to the
// first live hand. One card face-up to each hand in seat order, the
// dealer's up card, the second card to each hand, then the hole card
// face-down. Caller holds the lock.
func (s *Service) enterPlayerTurns(ctx context.Context) {
	t := s.table

	if len(t.Hands) == 0 {
		// Nobody bet; keep the cycle moving forward through an empty
		// dealer round rather than jumping back to betting.
		s.logger.Info("betting closed with no hands", "table", t.ID)
	}

	for _, h := range t.Hands {
		if !s.dealTo(&h.Cards, true) {
			return
		}
	}
	if !s.dealTo(&t.DealerHand, true) {
		return
	}
	for _, h := range t.Hands {
		if !s.dealTo(&h.Cards, true) {
			return
		}
	}
	if !s.dealTo(&t.DealerHand, false) {
		return
	}

	for _, h := range t.Hands {
		if IsBlackjack(h.Cards) {
			h.Status = entities.HandBlackjack
		} else {
			h.Status = entities.HandActive
		}
	}

	t.DealerScore = Score(t.DealerHand)
	t.Phase = entities.PhasePlayerTurns
	t.Timer = entities.NoTimer
	t.CurrentTurn = entities.NoTurn

	for i, h := range t.Hands {
		if h.Status == entities.HandActive {
			t.CurrentTurn = i
			h.IsTurn = true
			break
		}
	}

	for _, h := range t.Hands {
		s.saveHandLogged(ctx, h)
	}
	s.saveTableLogged(ctx)
	s.publish()

	if t.CurrentTurn == entities.NoTurn {
		// Every hand is blackjack, or nobody bet
		s.playDealer(ctx)
	}
}

// dealTo draws one card into dst. A draw failure here means the cut
// card guard was breached; the round is abandoned where it stands.
func (s *Service) dealTo(dst *[]*entities.Card, faceUp bool) bool {
	card, err := s.table.Deck.Draw(faceUp)
	if err != nil {
		s.logger.Error("deck exhausted during deal", "table", s.table.ID, "err", err)
		return false
	}
	*dst = append(*dst, card)
	return true
}
