// Package lock serializes stock mutations for a single product across
// API instances with a short-lived Redis lock.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// Stock locks only need to outlive one commit loop iteration, so the
// defaults stay short and the acquire retry is aggressive.
const (
	defaultTTL     = 10 * time.Second
	defaultBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only when the caller still holds it, so
// an expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// Locker provides a Redis-backed distributed lock. Keys are namespaced
// under "lock:" so they never collide with rate-limit or cache entries.
type Locker struct {
	R            *redis.Client
	RetryBackoff time.Duration
}

// WithLock runs fn while holding the lock for key. The lock is released
// when fn returns, success or not. Acquisition retries with a fixed
// backoff until the context is cancelled.
func (l Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	redisKey := keyPrefix + key
	token := uuid.NewString()
	if err := l.acquire(ctx, redisKey, token, ttl); err != nil {
		return err
	}
	// Release on a fresh context so a cancelled request still unlocks.
	defer func() {
		_ = releaseScript.Run(context.Background(), l.R, []string{redisKey}, token).Err()
	}()
	return fn(ctx)
}

func (l Locker) acquire(ctx context.Context, redisKey, token string, ttl time.Duration) error {
	backoff := l.RetryBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	for {
		ok, err := l.R.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
