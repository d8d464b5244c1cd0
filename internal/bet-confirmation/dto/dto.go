package dto

import "github.com/shopspring/decimal"

// BetPlaced espelha o evento bet_placed consumido do Kafka
type BetPlaced struct {
	BetID        string          `json:"bet_id"`
	UserID       string          `json:"user_id"`
	MatchID      string          `json:"match_id"`
	Outcome      string          `json:"outcome"`
	AmountStaked decimal.Decimal `json:"amount_staked"`
	OddsOnBet    decimal.Decimal `json:"odds_on_bet"`
	ReservedRef  string          `json:"reserved_ref"`
	TsUnixMs     int64           `json:"ts_unix_ms"`
}

// MatchStateResponse é o subconjunto da resposta do match-service
// que interessa ao worker: só o status da partida
type MatchStateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
