package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "catalog:products"

// Cache is a small JSON read-through cache on Redis. A nil Cache or a nil
// client disables caching without changing service behavior.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func (c *Cache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.R == nil {
		return false, nil
	}
	raw, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.R == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, raw, c.TTL).Err()
}

func (c *Cache) invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.R == nil {
		return
	}
	_ = c.R.Del(ctx, keys...).Err()
}
