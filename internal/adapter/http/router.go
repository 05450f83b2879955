package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Logger           *zerolog.Logger
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	// TokenVerifier enables bearer auth on /api/v1 when set.
	TokenVerifier middleware.TokenVerifier
	// AuthRequired rejects anonymous API calls; otherwise tokens are optional.
	AuthRequired bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics, cfg.Metrics.HTTPInFlight))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			if cfg.AuthRequired {
				r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			} else {
				r.Use(middleware.OptionalAuth(cfg.TokenVerifier))
			}
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Post("/{conta}/deposit", cfg.AccountHandler.Deposit)
			r.Post("/{conta}/withdraw", cfg.AccountHandler.Withdraw)
			r.Get("/{conta}/balance", cfg.AccountHandler.Balance)
			r.Get("/{conta}/transactions", cfg.AccountHandler.Transactions)
		})

		// Ledger
		if cfg.LedgerHandler != nil {
			r.Route("/ledger", func(r chi.Router) {
				r.Get("/reconciliation", cfg.LedgerHandler.Reconciliation)
				r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			})
		}
	})

	return r
}
