package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newIdem(t *testing.T) Idem {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return Idem{R: rdb, TTL: time.Minute}
}

func serve(h http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/check", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyAllowsFirstRequest(t *testing.T) {
	idem := newIdem(t)
	wrapped := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, serve(wrapped, "key-1").Code)
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	idem := newIdem(t)
	calls := 0
	wrapped := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, serve(wrapped, "key-1").Code)
	rec := serve(wrapped, "key-1")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "IDEMPOTENT_REPLAY")
	require.Equal(t, 1, calls)
}

func TestIdempotencyDistinctKeysPass(t *testing.T) {
	idem := newIdem(t)
	wrapped := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, serve(wrapped, "key-1").Code)
	require.Equal(t, http.StatusOK, serve(wrapped, "key-2").Code)
}

func TestIdempotencySkipsWithoutHeader(t *testing.T) {
	idem := newIdem(t)
	calls := 0
	wrapped := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, serve(wrapped, "").Code)
	require.Equal(t, http.StatusOK, serve(wrapped, "").Code)
	require.Equal(t, 2, calls)
}
