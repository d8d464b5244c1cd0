package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status do ciclo de vida de uma partida.
// scheduled -> active -> processing -> completed, com processing -> active
// como única transição reversa (rollback de liquidação).
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusActive     Status = "active"
	StatusProcessing Status = "processing" // liquidação em andamento
	StatusCompleted  Status = "completed"
)

// Outcome identifica o resultado apostável de uma partida.
type Outcome string

const (
	OutcomeWinHome Outcome = "win_home"
	OutcomeDraw    Outcome = "draw"
	OutcomeWinAway Outcome = "win_away"
)

// ValidOutcome informa se o valor recebido é um resultado apostável conhecido.
func ValidOutcome(o Outcome) bool {
	switch o {
	case OutcomeWinHome, OutcomeDraw, OutcomeWinAway:
		return true
	}
	return false
}

// Match é o modelo persistido de uma partida.
type Match struct {
	ID            string
	HomeTeamID    string
	AwayTeamID    string
	StartTime     time.Time
	Status        Status
	WinnerID      string     // preenchido apenas em completed
	CompletedTime *time.Time // preenchido apenas em completed
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Odds são as cotações administradas de uma partida (mercado 1x2).
type Odds struct {
	MatchID   string          `json:"match_id"`
	WinHome   decimal.Decimal `json:"win_home"`
	Draw      decimal.Decimal `json:"draw"`
	WinAway   decimal.Decimal `json:"win_away"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ForOutcome retorna a cotação do resultado pedido.
func (o Odds) ForOutcome(out Outcome) (decimal.Decimal, bool) {
	switch out {
	case OutcomeWinHome:
		return o.WinHome, true
	case OutcomeDraw:
		return o.Draw, true
	case OutcomeWinAway:
		return o.WinAway, true
	}
	return decimal.Zero, false
}
