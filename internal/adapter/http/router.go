package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vlk/settlecore/internal/adapter/http/handler"
	"github.com/vlk/settlecore/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger           zerolog.Logger
	TransferHandler  *handler.TransferHandler
	ReviewHandler    *handler.ReviewHandler
	AccountHandler   *handler.AccountHandler
	AuditHandler     *handler.AuditHandler
	SanctionsHandler *handler.SanctionsHandler
	HealthHandler    *handler.HealthHandler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Submit)
			r.Get("/", cfg.TransferHandler.List)
			r.Get("/{id}", cfg.TransferHandler.Get)
			r.Get("/{id}/entries", cfg.TransferHandler.ListEntries)
			r.Post("/{id}/review", cfg.ReviewHandler.Decide)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.AccountHandler.ListEntries)
			r.Get("/{id}/consistency", cfg.AccountHandler.CheckConsistency)
		})

		// Audit chains
		r.Route("/audit", func(r chi.Router) {
			r.Get("/{entityType}/{entityID}", cfg.AuditHandler.Chain)
			r.Get("/{entityType}/{entityID}/verify", cfg.AuditHandler.Verify)
			r.Post("/verify", cfg.AuditHandler.VerifyAll)
			r.Get("/ledger/consistency", cfg.AuditHandler.CheckLedger)
		})

		// Sanctions watchlist
		r.Route("/sanctions", func(r chi.Router) {
			r.Post("/ingest", cfg.SanctionsHandler.Ingest)
			r.Get("/threshold", cfg.SanctionsHandler.GetThreshold)
			r.Put("/threshold", cfg.SanctionsHandler.SetThreshold)
		})
	})

	return r
}
