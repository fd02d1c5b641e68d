// Package history mirrors settled rounds to an analytics store. Writes
// here are best-effort: a failure is logged by the caller and dropped,
// never blocking settlement.
package history

import (
	"context"
	"time"
)

// HandRecord captures one settled hand
type HandRecord struct {
	HandID          string   `json:"hand_id"`
	PlayerID        string   `json:"player_id"`
	Seat            int      `json:"seat"`
	Cards           []string `json:"cards"`
	Score           int      `json:"score"`
	Wager           int64    `json:"wager"`
	InsuranceWager  int64    `json:"insurance_wager,omitempty"`
	Result          string   `json:"result"`
	Payout          int64    `json:"payout"`
	InsurancePayout int64    `json:"insurance_payout,omitempty"`
	IsSplit         bool     `json:"is_split"`
}

// RoundRecord captures one settled round at a table
type RoundRecord struct {
	TableID     string       `json:"table_id"`
	CompletedAt time.Time    `json:"completed_at"`
	DealerCards []string     `json:"dealer_cards"`
	DealerScore int          `json:"dealer_score"`
	Hands       []HandRecord `json:"hands"`
}

// Recorder stores settled rounds
type Recorder interface {
	RecordRound(ctx context.Context, rec *RoundRecord) error
	Close() error
}
