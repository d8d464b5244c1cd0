package dto

import "github.com/shopspring/decimal"

type PlaceBetRequest struct {
	UserID       string          `json:"userId"`
	MatchID      string          `json:"match_id"`
	Outcome      string          `json:"outcome"` // "win_home" | "draw" | "win_away"
	AmountStaked decimal.Decimal `json:"amount_staked"`
}

// SettleRequest é o payload da API interna de liquidação, chamada pelo
// match-service. O settlement_ref identifica a tentativa de liquidação e
// torna a operação idempotente.
type SettleRequest struct {
	WinningOutcome string `json:"winning_outcome"`
	SettlementRef  string `json:"settlement_ref"`
}
