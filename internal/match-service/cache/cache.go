package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
)

// Cache guarda leituras de partidas e cotações no Redis.
// A chave de odds é compartilhada com o validador do bet-service.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func keyMatch(matchID string) string { return "match:" + matchID }

// KeyOdds gera a chave Redis das cotações correntes de uma partida.
func KeyOdds(matchID string) string { return "odds:match:" + matchID }

func (c *Cache) GetMatch(ctx context.Context, matchID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyMatch(matchID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetMatch(ctx context.Context, matchID string, v any) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyMatch(matchID), b, c.TTL).Err()
}

// InvalidateMatch remove a entrada após transições de status.
func (c *Cache) InvalidateMatch(ctx context.Context, matchID string) error {
	return c.R.Del(ctx, keyMatch(matchID)).Err()
}

// SetOdds publica as cotações correntes para consumo do bet-service.
// Sem TTL: cotações administradas valem até a próxima atualização.
func (c *Cache) SetOdds(ctx context.Context, o domain.Odds) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, KeyOdds(o.MatchID), b, 0).Err()
}
