package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/optiledger/internal/adapter/http/handler"
	"github.com/iho/optiledger/internal/adapter/http/middleware"
	"github.com/iho/optiledger/internal/infrastructure/metrics"
	"github.com/iho/optiledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	Logger zerolog.Logger

	// Optional
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	IdempotencyStore usecase.IdempotencyStore
	Idempotency      *middleware.IdempotencyMiddleware
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		idempotency := cfg.Idempotency
		if idempotency == nil && cfg.IdempotencyStore != nil {
			idempotency = middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, 0, cfg.Logger)
		}
		if idempotency != nil {
			r.Use(idempotency.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/", cfg.TransferHandler.List)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
