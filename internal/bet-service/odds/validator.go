package odds

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrNoOdds = errors.New("no odds cached for match")

// cachedOdds espelha o payload que o match-service publica no Redis.
type cachedOdds struct {
	MatchID   string          `json:"match_id"`
	WinHome   decimal.Decimal `json:"win_home"`
	Draw      decimal.Decimal `json:"draw"`
	WinAway   decimal.Decimal `json:"win_away"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

// CurrentOdd lê a cotação corrente do resultado pedido.
// Espera a chave "odds:match:{matchID}" mantida pelo match-service.
func (v *Validator) CurrentOdd(ctx context.Context, matchID, outcome string) (decimal.Decimal, error) {
	b, err := v.Rdb.Get(ctx, "odds:match:"+matchID).Bytes()
	if err == redis.Nil {
		return decimal.Zero, ErrNoOdds
	}
	if err != nil {
		return decimal.Zero, err
	}
	var o cachedOdds
	if err := json.Unmarshal(b, &o); err != nil {
		return decimal.Zero, err
	}
	switch outcome {
	case "win_home":
		return o.WinHome, nil
	case "draw":
		return o.Draw, nil
	case "win_away":
		return o.WinAway, nil
	}
	return decimal.Zero, errors.New("unknown outcome " + outcome)
}
