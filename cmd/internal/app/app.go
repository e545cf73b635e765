// Package app wires the shopgate runtime: config, logging, the rate limit
// gate, authentication, and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopgate/cmd/identity"
	authapi "shopgate/cmd/internal/auth/api"
	"shopgate/cmd/internal/auth/session"
	"shopgate/cmd/internal/ratelimit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App is the shopgate runtime: it owns the HTTP server, the limiter
// lifecycle, and the storage resources behind them.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	rdb *redis.Client

	metrics *Metrics
	limiter *ratelimit.Limiter

	auth  *authapi.Handler
	guard *authapi.Guard
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	users, dbPool, dbEnabled, err := newUserStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics()

	counters, rdb := newCounterStore(cfg, log)
	limiter := ratelimit.New(log, counters, ratelimit.LoadConfigFromEnv(), ratelimit.WithMetrics(metrics))

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		closeStores(dbPool, rdb)
		return nil, err
	}
	tokens, err := session.NewPasetoV4PublicManager(sessCfg)
	if err != nil {
		closeStores(dbPool, rdb)
		return nil, err
	}
	resolver := session.NewResolver(log, sessCfg, tokens, users)

	authCfg := authapi.LoadConfigFromEnv()
	authHandler := authapi.NewHandler(log, authCfg, sessCfg, users, tokens, resolver)

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		rdb:       rdb,
		metrics:   metrics,
		limiter:   limiter,
		auth:      authHandler,
		guard:     authapi.NewGuard(resolver),
	}, nil
}

// Guard exposes the route guards for registering protected application routes.
func (a *App) Guard() *authapi.Guard {
	return a.guard
}

// Run starts the limiter sweep and the HTTP server, and blocks until context
// cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	a.limiter.Start(ctx)
	defer a.limiter.Stop()

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.limiter, a.metrics, a.auth)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled, "redis_enabled", a.rdb != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	closeStores(a.dbPool, a.rdb)

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newUserStore decides between Postgres-backed persistence and the in-memory
// dev store.
func newUserStore(ctx context.Context, cfg Config, log Logger) (identity.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	store, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return store, pool, true, nil
}

// newCounterStore decides between the shared Redis counter store and the
// in-process one.
func newCounterStore(cfg Config, log Logger) (ratelimit.CounterStore, *redis.Client) {
	if cfg.RedisAddr == "" {
		log.Info("ratelimit.store.memory")
		return ratelimit.NewMemoryStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	log.Info("ratelimit.store.redis", "addr", cfg.RedisAddr)
	return ratelimit.NewRedisStore(rdb), rdb
}

func closeStores(pool *pgxpool.Pool, rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
	if pool != nil {
		pool.Close()
	}
}
