package repo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status possíveis de uma aposta.
const (
	StatusPendingConfirmation = "PENDING_CONFIRMATION"
	StatusActive              = "ACTIVE"
	StatusRejected            = "REJECTED"
	StatusWon                 = "WON"
	StatusLost                = "LOST"
)

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID            string
	UserID        string
	MatchID       string
	Outcome       string
	AmountStaked  decimal.Decimal
	OddsOnBet     decimal.Decimal
	Status        string
	SettlementRef string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
