// Package health exposes liveness and readiness probes over the two
// dependencies this service has: Postgres and Redis.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes the external dependencies.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler serves the probe endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Live reports process liveness only; it never touches a dependency.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready pings Postgres and Redis and reports per-dependency status. Any
// failing dependency makes the whole probe 503.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	out := readiness{
		Status: "ok",
		Checks: map[string]string{
			"postgres": probe(func() error { return h.Checker.PingDB(ctx, h.dbTimeout()) }),
			"redis":    probe(func() error { return h.Checker.PingRedis(ctx, h.redisTimeout()) }),
		},
	}

	status := http.StatusOK
	for _, check := range out.Checks {
		if check != "ok" {
			out.Status = "degraded"
			status = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

func probe(ping func() error) string {
	if err := ping(); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h Handler) dbTimeout() time.Duration {
	if h.DBTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.DBTimeout
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 250 * time.Millisecond
	}
	return h.RedisTimeout
}
