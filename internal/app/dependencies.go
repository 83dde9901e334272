package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RunMigrations applies all pending migrations. An up-to-date database is
// not an error.
func RunMigrations(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// NewLimiterStore builds the Redis-backed store for the global rate limiter.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "limiter",
	})
}

// Deps probes the external dependencies for readiness checks.
type Deps struct {
	Pool *pgxpool.Pool
	RDB  *redis.Client
}

func (d Deps) PingDB(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.Pool.Ping(ctx)
}

func (d Deps) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.RDB.Ping(ctx).Err()
}
