package events

import "github.com/shopspring/decimal"

type BetPlaced struct {
	BetID        string          `json:"bet_id"`
	UserID       string          `json:"user_id"`
	MatchID      string          `json:"match_id"`
	Outcome      string          `json:"outcome"` // "win_home" | "draw" | "win_away"
	AmountStaked decimal.Decimal `json:"amount_staked"`
	OddsOnBet    decimal.Decimal `json:"odds_on_bet"`
	ReservedRef  string          `json:"reserved_ref"` // external_ref usado na reserva da carteira (betID)
	TsUnixMs     int64           `json:"ts_unix_ms"`
}
