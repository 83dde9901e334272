package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/retailpoint/checkout-api/internal/app"
	"github.com/retailpoint/checkout-api/internal/card"
	"github.com/retailpoint/checkout-api/internal/catalog"
	"github.com/retailpoint/checkout-api/internal/checkout"
	"github.com/retailpoint/checkout-api/internal/common"
	"github.com/retailpoint/checkout-api/internal/config"
	"github.com/retailpoint/checkout-api/internal/health"
	"github.com/retailpoint/checkout-api/internal/lock"
	"github.com/retailpoint/checkout-api/internal/obs"
	"github.com/retailpoint/checkout-api/internal/ratelimit"
	"github.com/retailpoint/checkout-api/internal/security"
	"github.com/retailpoint/checkout-api/internal/store"
	"github.com/retailpoint/checkout-api/internal/tasks"
)

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(envOrDefault("LOG_FORMAT", "json"), envOrDefault("LOG_LEVEL", "info"))
	logger.Info().Str("env", cfg.AppEnv).Msg("starting checkout api")

	metricsNamespace := envOrDefault("METRICS_NAMESPACE", "checkout_api")
	httpMetrics := obs.NewHTTPMetrics(metricsNamespace, obs.ParseBucketsCSV(os.Getenv("METRICS_BUCKETS_MS")), nil)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if envBool("TRACING_ENABLED", false) {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   envOrDefault("OTEL_SERVICE_NAME", "checkout-api"),
			Endpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SamplingRatio: envFloat("TRACING_SAMPLING_RATIO", 1),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("init tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database url")
	}
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout
	poolCfg.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Warn().Err(err).Msg("instrument redis tracing")
	}

	if envBool("RUN_MIGRATIONS", true) {
		m, err := migrate.New("file://migrations", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("open migrations")
		}
		if err := app.RunMigrations(m); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}
	asynqClient := asynq.NewClient(asynqOpt)
	defer asynqClient.Close()

	productRepo := store.ProductRepo{DB: pool}
	cardRepo := store.CardRepo{DB: pool}

	validate := validator.New()

	catalogSvc := &catalog.Service{
		Repo:   productRepo,
		Cache:  &catalog.Cache{R: rdb, TTL: cfg.CatalogCacheTTL},
		Logger: logger,
	}
	catalogHandler := &catalog.Handler{Svc: catalogSvc, Validate: validate, Logger: logger}

	cardSvc := &card.Service{Repo: cardRepo}
	cardHandler := &card.Handler{Svc: cardSvc, Validate: validate, Logger: logger}

	checkoutSvc := &checkout.Service{
		Products: productRepo,
		Cards:    cardRepo,
		Committer: &checkout.Committer{
			Store:   productRepo,
			Locker:  &lock.Locker{R: rdb, RetryBackoff: cfg.LockRetryBackoff},
			LockTTL: cfg.StockLockTTL,
			Logger:  logger,
		},
		Currency: cfg.CurrencyMarker,
		Logger:   logger,
		AfterCommit: func(ctx context.Context, productIDs []int64) {
			catalogSvc.InvalidateList(ctx)
			task, err := tasks.NewLowStockTask(productIDs)
			if err != nil {
				logger.Error().Err(err).Msg("build low stock task")
				return
			}
			if _, err := asynqClient.EnqueueContext(ctx, task); err != nil {
				logger.Error().Err(err).Msg("enqueue low stock task")
			}
		},
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc, Validate: validate, Logger: logger}

	healthHandler := health.Handler{
		Checker:      app.Deps{Pool: pool, RDB: rdb},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}

	idem := common.Idem{R: rdb, TTL: cfg.IdempotencyTTL}
	checkLimiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: rdb, Prefix: "rl:check"},
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return common.ClientIP(r) },
			Window: cfg.CheckRateWindow,
			Max:    cfg.CheckRateMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("rate limiter degraded")
		},
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(security.Headers{
		Enable:     envBool("SECURITY_HEADERS", true),
		EnableHSTS: envBool("SECURITY_HSTS", false),
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)

	if rate, err := limiter.NewRateFromFormatted(cfg.GlobalRateLimit); err == nil {
		if lstore, err := app.NewLimiterStore(rdb); err == nil {
			r.Use(limitermw.NewMiddleware(limiter.New(lstore, rate)).Handler)
		} else {
			logger.Warn().Err(err).Msg("global rate limiter disabled")
		}
	} else {
		logger.Warn().Err(err).Str("value", cfg.GlobalRateLimit).Msg("bad global rate limit format")
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	if envBool("PPROF_ENABLED", false) {
		r.Route("/debug/pprof", func(r chi.Router) {
			r.Get("/", pprof.Index)
			r.Get("/cmdline", pprof.Cmdline)
			r.Get("/profile", pprof.Profile)
			r.Get("/symbol", pprof.Symbol)
			r.Get("/trace", pprof.Trace)
			r.Handle("/{name}", http.HandlerFunc(pprof.Index))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(idem.Middleware, checkLimiter.Middleware).Post("/check", checkoutHandler.Check)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Post("/", catalogHandler.Create)
			r.Get("/{id}", catalogHandler.Get)
			r.Put("/{id}", catalogHandler.Update)
			r.Delete("/{id}", catalogHandler.Delete)
			r.Patch("/{id}/quantity", catalogHandler.SetQuantity)
		})

		r.Route("/discount-cards", func(r chi.Router) {
			r.Get("/", cardHandler.List)
			r.Post("/", cardHandler.Create)
			r.Get("/{id}", cardHandler.Get)
			r.Put("/{id}", cardHandler.Update)
			r.Delete("/{id}", cardHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, "checkout-api"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
