package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	DBMaxConns        int32
	DBConnectTimeout  time.Duration
	CatalogCacheTTL   time.Duration
	IdempotencyTTL    time.Duration
	StockLockTTL      time.Duration
	LockRetryBackoff  time.Duration
	MaxBodyBytes      int64
	CheckRateWindow   time.Duration
	CheckRateMax      int
	GlobalRateLimit   string
	LowStockThreshold int32
	CurrencyMarker    string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		DBMaxConns:         int32(intOrDefault(k.Int("DB_MAX_CONNS"), 10)),
		DBConnectTimeout:   parseDuration(k.String("DB_CONNECT_TIMEOUT"), "5s"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "60s"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		StockLockTTL:       parseDuration(k.String("STOCK_LOCK_TTL"), "10s"),
		LockRetryBackoff:   parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		MaxBodyBytes:       int64(intOrDefault(k.Int("MAX_BODY_BYTES"), 1<<20)),
		CheckRateWindow:    parseDuration(k.String("CHECK_RATE_WINDOW"), "1m"),
		CheckRateMax:       intOrDefault(k.Int("CHECK_RATE_MAX"), 30),
		GlobalRateLimit:    valueOrDefault(k.String("GLOBAL_RATE_LIMIT"), "300-M"),
		LowStockThreshold:  int32(intOrDefault(k.Int("LOW_STOCK_THRESHOLD"), 5)),
		CurrencyMarker:     valueOrDefault(k.String("CURRENCY_MARKER"), "$"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func intOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
