package table

import (
	"context"

	"github.com/fadedpez/felttable/pkg/entities"
	"github.com/fadedpez/felttable/pkg/repositories/history"
)

// settleHand resolves a single hand against the dealer's final cards.
// It returns the total credit owed back to the player, wager included,
// and the hand's final status. A zero credit means the wager is lost.
func settleHand(h *entities.Hand, dealer []*entities.Card) (int64, entities.HandStatus) {
	handBJ := IsBlackjack(h.Cards)
	dealerBJ := IsBlackjack(dealer)

	switch {
	case IsBust(h.Cards):
		return 0, entities.HandLost
	case IsBust(dealer):
		return h.Wager * 2, entities.HandWon
	case handBJ && !dealerBJ:
		return h.Wager + h.Wager*3/2, entities.HandWon
	case dealerBJ && !handBJ:
		return 0, entities.HandLost
	case handBJ && dealerBJ:
		return h.Wager, entities.HandPush
	}

	handScore := Score(h.Cards)
	dealerScore := Score(dealer)
	switch {
	case handScore > dealerScore:
		return h.Wager * 2, entities.HandWon
	case handScore < dealerScore:
		return 0, entities.HandLost
	default:
		return h.Wager, entities.HandPush
	}
}

// insuranceCredit pays twice the side bet when the dealer has
// blackjack. The stake was withdrawn at action time and is not paid
// back on top. The side bet settles independently of the main wager.
func insuranceCredit(h *entities.Hand, dealerBlackjack bool) int64 {
	if h.InsuranceWager > 0 && dealerBlackjack {
		return h.InsuranceWager * 2
	}
	return 0
}

// settle resolves every hand, credits players in one aggregated deposit
// each, records the round and schedules the next betting window. A
// surrendered hand's main wager was refunded at action time, so only
// its insurance settles here. Caller holds the lock.
func (s *Service) settle(ctx context.Context) {
	t := s.table
	dealerBJ := IsBlackjack(t.DealerHand)

	credits := make(map[string]int64)
	order := make([]string, 0, len(t.Hands))

	rec := &history.RoundRecord{
		TableID:     t.ID,
		CompletedAt: s.clock.Now(),
		DealerCards: cardStrings(t.DealerHand),
		DealerScore: t.DealerScore,
	}

	for _, h := range t.Hands {
		var credit int64
		if h.Status != entities.HandSurrender {
			credit, h.Status = settleHand(h, t.DealerHand)
		}
		ins := insuranceCredit(h, dealerBJ)
		h.IsTurn = false

		if _, seen := credits[h.PlayerID]; !seen {
			order = append(order, h.PlayerID)
		}
		credits[h.PlayerID] += credit + ins

		rec.Hands = append(rec.Hands, history.HandRecord{
			HandID:          h.ID,
			PlayerID:        h.PlayerID,
			Seat:            h.Seat,
			Cards:           cardStrings(h.Cards),
			Score:           Score(h.Cards),
			Wager:           h.Wager,
			InsuranceWager:  h.InsuranceWager,
			Result:          string(h.Status),
			Payout:          credit,
			InsurancePayout: ins,
			IsSplit:         h.IsSplit,
		})

		s.saveHandLogged(ctx, h)
	}

	for _, playerID := range order {
		delta := credits[playerID]
		if delta == 0 {
			continue
		}
		p := s.players[playerID]
		if p == nil {
			s.logger.Error("settling unknown player", "player", playerID, "credit", delta)
			continue
		}
		p.Deposit(delta)
		p.LastActiveAt = s.clock.Now()
		if err := s.repo.SavePlayer(ctx, p); err != nil {
			// One retry, then report; the in-memory balance stays
			// credited so the session remains correct.
			if err = s.repo.SavePlayer(ctx, p); err != nil {
				s.logger.Error("persisting payout", "player", playerID, "credit", delta, "err", err)
			}
		}
	}

	s.saveTableLogged(ctx)
	s.publish()

	if s.history != nil && len(rec.Hands) > 0 {
		if err := s.history.RecordRound(ctx, rec); err != nil {
			s.logger.Warn("recording round history", "table", t.ID, "err", err)
		}
	}

	s.schedulePayoutDelay(t.ID)
}

func cardStrings(cards []*entities.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
