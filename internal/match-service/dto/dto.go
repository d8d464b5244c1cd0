package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
)

type CreateMatchRequest struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	StartTime  time.Time `json:"start_time"`
}

type OddsRequest struct {
	WinHome decimal.Decimal `json:"win_home"`
	Draw    decimal.Decimal `json:"draw"`
	WinAway decimal.Decimal `json:"win_away"`
}

type MatchResponse struct {
	ID            string       `json:"id"`
	HomeTeamID    string       `json:"home_team_id"`
	AwayTeamID    string       `json:"away_team_id"`
	StartTime     time.Time    `json:"start_time"`
	Status        string       `json:"status"`
	WinnerID      string       `json:"winner_id,omitempty"`
	CompletedTime *time.Time   `json:"completed_time,omitempty"`
	Odds          *domain.Odds `json:"odds,omitempty"`
}

// FromMatch monta a resposta REST a partir do modelo de domínio.
func FromMatch(m *domain.Match, odds *domain.Odds) MatchResponse {
	return MatchResponse{
		ID:            m.ID,
		HomeTeamID:    m.HomeTeamID,
		AwayTeamID:    m.AwayTeamID,
		StartTime:     m.StartTime,
		Status:        string(m.Status),
		WinnerID:      m.WinnerID,
		CompletedTime: m.CompletedTime,
		Odds:          odds,
	}
}

type CompleteMatchResponse struct {
	MatchID        string          `json:"match_id"`
	Status         string          `json:"status"`
	WinnerID       string          `json:"winner_id"`
	WinningOutcome string          `json:"winning_outcome"`
	SettlementRef  string          `json:"settlement_ref"`
	TotalPot       decimal.Decimal `json:"total_pot"`
	WinnersPaid    int             `json:"winners_paid"`
	CompletedTime  *time.Time      `json:"completed_time"`
}
