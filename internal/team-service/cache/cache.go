package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func keyTeam(id string) string { return "team:" + id }

func (c *Cache) GetTeam(ctx context.Context, id string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyTeam(id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetTeam(ctx context.Context, id string, v any) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyTeam(id), b, c.TTL).Err()
}

func (c *Cache) InvalidateTeam(ctx context.Context, id string) error {
	return c.R.Del(ctx, keyTeam(id)).Err()
}
