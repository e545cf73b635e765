package app

import (
	"net/http"
	"time"

	authapi "shopgate/cmd/internal/auth/api"
	"shopgate/cmd/internal/ratelimit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	dbPool *pgxpool.Pool,
	dbEnabled bool,
	limiter *ratelimit.Limiter,
	metrics *Metrics,
	auth *authapi.Handler,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireDB && !dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if dbEnabled && dbPool != nil {
			if err := PingDB(r.Context(), dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	if auth == nil {
		return
	}

	// Auth routes are registered on an inner mux so the gate middleware
	// wraps them per category: login gets the tight login budget, the rest
	// the general one.
	authMux := http.NewServeMux()
	auth.Register(authMux)

	loginGate := limiter.Middleware(ratelimit.CategoryLogin, cfg.TrustProxy)
	generalGate := limiter.Middleware(ratelimit.CategoryGeneral, cfg.TrustProxy)

	wrap := func(h http.Handler) http.Handler {
		if metrics != nil {
			return metrics.CountAuthFailures(h)
		}
		return h
	}

	mux.Handle("/auth/login", wrap(loginGate(authMux)))
	mux.Handle("/auth/", wrap(generalGate(authMux)))
}
