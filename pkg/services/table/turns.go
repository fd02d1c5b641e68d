package table

import (
	"context"
	"fmt"

	"github.com/fadedpez/felttable/pkg/entities"
)

// Action is a player decision on a hand
type Action string

const (
	ActionHit       Action = "hit"
	ActionStand     Action = "stand"
	ActionDouble    Action = "double"
	ActionSplit     Action = "split"
	ActionSurrender Action = "surrender"
	ActionInsurance Action = "insurance"
)

// Act applies a player action to a hand. Every action requires the
// player-turns phase; all but insurance also require the hand to hold
// the turn.
func (s *Service) Act(ctx context.Context, action Action, handID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table.Phase != entities.PhasePlayerTurns {
		return ErrWrongPhase
	}
	h := s.table.HandByID(handID)
	if h == nil {
		return ErrHandNotFound
	}

	if action == ActionInsurance {
		return s.takeInsurance(ctx, h)
	}

	if !h.IsTurn {
		return ErrNotYourTurn
	}
	if h.Status != entities.HandActive {
		return ErrIllegalAction
	}

	switch action {
	case ActionHit:
		return s.hit(ctx, h)
	case ActionStand:
		return s.stand(ctx, h)
	case ActionDouble:
		return s.double(ctx, h)
	case ActionSplit:
		return s.split(ctx, h)
	case ActionSurrender:
		return s.surrender(ctx, h)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrIllegalAction, action)
	}
}

func (s *Service) hit(ctx context.Context, h *entities.Hand) error {
	card, err := s.table.Deck.Draw(true)
	if err != nil {
		return fmt.Errorf("drawing hit card: %w", err)
	}
	h.AddCard(card)

	if IsBust(h.Cards) {
		h.Status = entities.HandBust
		h.IsTurn = false
		s.saveHandLogged(ctx, h)
		s.logger.Info("hand busted", "hand", h.ID, "score", Score(h.Cards))
		s.advanceTurn(ctx)
		return nil
	}

	s.saveHandLogged(ctx, h)
	s.saveTableLogged(ctx)
	s.publish()
	return nil
}

func (s *Service) stand(ctx context.Context, h *entities.Hand) error {
	h.Status = entities.HandStand
	h.IsTurn = false
	s.saveHandLogged(ctx, h)
	s.advanceTurn(ctx)
	return nil
}

// double withdraws a second wager equal to the first, deals exactly one
// card and ends the hand's turn.
func (s *Service) double(ctx context.Context, h *entities.Hand) error {
	if !CanDouble(h.Cards) {
		return ErrIllegalAction
	}

	p := s.players[h.PlayerID]
	if p == nil {
		return ErrHandNotFound
	}
	if err := p.Withdraw(h.Wager); err != nil {
		return err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		p.Deposit(h.Wager)
		return fmt.Errorf("persisting double withdrawal: %w", err)
	}

	card, err := s.table.Deck.Draw(true)
	if err != nil {
		p.Deposit(h.Wager)
		if saveErr := s.repo.SavePlayer(ctx, p); saveErr != nil {
			s.logger.Error("reverting double withdrawal", "player", p.ID, "err", saveErr)
		}
		return fmt.Errorf("drawing double card: %w", err)
	}
	h.AddCard(card)
	h.Wager *= 2

	if IsBust(h.Cards) {
		h.Status = entities.HandBust
	} else {
		h.Status = entities.HandDouble
	}
	h.IsTurn = false
	s.saveHandLogged(ctx, h)
	s.logger.Info("hand doubled", "hand", h.ID, "wager", h.Wager, "score", Score(h.Cards))
	s.advanceTurn(ctx)
	return nil
}

// split turns a pair into two hands, each completed to two cards. The
// original hand keeps the turn; the new hand plays right after it.
func (s *Service) split(ctx context.Context, h *entities.Hand) error {
	if !CanSplit(h.Cards) {
		return ErrIllegalAction
	}

	p := s.players[h.PlayerID]
	if p == nil {
		return ErrHandNotFound
	}
	if err := p.Withdraw(h.Wager); err != nil {
		return err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		p.Deposit(h.Wager)
		return fmt.Errorf("persisting split withdrawal: %w", err)
	}

	// Draw both completing cards before touching the hand, so a failed
	// draw leaves the pair intact with the withdrawal reverted.
	var drawn [2]*entities.Card
	for i := range drawn {
		card, err := s.table.Deck.Draw(true)
		if err != nil {
			p.Deposit(h.Wager)
			if saveErr := s.repo.SavePlayer(ctx, p); saveErr != nil {
				s.logger.Error("reverting split withdrawal", "player", p.ID, "err", saveErr)
			}
			return fmt.Errorf("drawing split card: %w", err)
		}
		drawn[i] = card
	}

	second := entities.NewHand(h.PlayerID, h.Seat, h.Wager)
	second.Cards = []*entities.Card{h.Cards[1], drawn[1]}
	second.Status = entities.HandActive
	second.IsSplit = true

	h.Cards = []*entities.Card{h.Cards[0], drawn[0]}
	h.IsSplit = true

	// Insert the new hand directly after its parent so it plays next.
	// A two-card 21 after a split is a plain 21, not a blackjack, so
	// both hands stay active.
	at := s.table.CurrentTurn + 1
	hands := append(s.table.Hands, nil)
	copy(hands[at+1:], hands[at:])
	hands[at] = second
	s.table.Hands = hands

	s.saveHandLogged(ctx, h)
	s.saveHandLogged(ctx, second)
	s.logger.Info("hand split", "hand", h.ID, "new", second.ID, "wager", h.Wager)
	s.saveTableLogged(ctx)
	s.publish()
	return nil
}

// surrender forfeits the hand for half the wager back, rounded down.
// The refund settles here; payout skips surrendered hands.
func (s *Service) surrender(ctx context.Context, h *entities.Hand) error {
	if !CanSurrender(h.Cards) {
		return ErrIllegalAction
	}

	p := s.players[h.PlayerID]
	if p == nil {
		return ErrHandNotFound
	}
	refund := h.Wager / 2
	p.Deposit(refund)
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		p.Withdraw(refund)
		return fmt.Errorf("persisting surrender refund: %w", err)
	}

	h.Status = entities.HandSurrender
	h.IsTurn = false
	s.saveHandLogged(ctx, h)
	s.logger.Info("hand surrendered", "hand", h.ID, "refund", refund)
	s.advanceTurn(ctx)
	return nil
}

// takeInsurance places a side bet of half the wager against a dealer
// blackjack. Only offered on the turn-holding hand's first decision
// while the dealer shows an ace.
func (s *Service) takeInsurance(ctx context.Context, h *entities.Hand) error {
	if !h.IsTurn {
		return ErrNotYourTurn
	}
	if h.Status != entities.HandActive || len(h.Cards) != 2 || h.InsuranceWager > 0 {
		return ErrIllegalAction
	}
	if len(s.table.DealerHand) == 0 || !IsAce(s.table.DealerHand[0]) {
		return ErrIllegalAction
	}

	p := s.players[h.PlayerID]
	if p == nil {
		return ErrHandNotFound
	}
	amount := h.Wager / 2
	if err := p.Withdraw(amount); err != nil {
		return err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		p.Deposit(amount)
		return fmt.Errorf("persisting insurance withdrawal: %w", err)
	}

	h.InsuranceWager = amount
	s.saveHandLogged(ctx, h)
	s.logger.Info("insurance taken", "hand", h.ID, "amount", amount)
	s.saveTableLogged(ctx)
	s.publish()
	return nil
}

// advanceTurn moves the turn to the next active hand, or starts the
// dealer's turn when none remain. Caller holds the lock.
func (s *Service) advanceTurn(ctx context.Context) {
	t := s.table

	for i := t.CurrentTurn + 1; i < len(t.Hands); i++ {
		if t.Hands[i].Status == entities.HandActive {
			t.CurrentTurn = i
			t.Hands[i].IsTurn = true
			s.saveHandLogged(ctx, t.Hands[i])
			s.saveTableLogged(ctx)
			s.publish()
			return
		}
	}

	s.playDealer(ctx)
}
