package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evento publicado no tópico "match_completed" após a liquidação de uma partida.
type MatchCompleted struct {
	MatchID        string          `json:"match_id"`
	WinnerID       string          `json:"winner_id"`
	WinningOutcome string          `json:"winning_outcome"` // "win_home" | "win_away"
	SettlementRef  string          `json:"settlement_ref"`
	TotalPot       decimal.Decimal `json:"total_pot"`
	WinnersPaid    int             `json:"winners_paid"`
	PayoutFailures int             `json:"payout_failures"`
	CompletedAt    time.Time       `json:"completed_at"`
}
