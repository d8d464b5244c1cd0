package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type BetResponse struct {
	BetID        string          `json:"bet_id"`
	UserID       string          `json:"user_id"`
	MatchID      string          `json:"match_id"`
	Outcome      string          `json:"outcome"`
	AmountStaked decimal.Decimal `json:"amount_staked"`
	OddsOnBet    decimal.Decimal `json:"odds_on_bet"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

type PlaceBetResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
}

// LedgerBet é a visão reduzida devolvida à API interna de liquidação.
type LedgerBet struct {
	BetID        string          `json:"bet_id"`
	UserID       string          `json:"user_id"`
	Outcome      string          `json:"outcome"`
	AmountStaked decimal.Decimal `json:"amount_staked"`
}

type ListBetsResponse struct {
	Bets []LedgerBet `json:"bets"`
}

type SettleResponse struct {
	MatchID    string `json:"match_id"`
	BetsWon    int64  `json:"bets_won"`
	BetsLost   int64  `json:"bets_lost"`
	AlreadyRef string `json:"already_settled_ref,omitempty"`
}
