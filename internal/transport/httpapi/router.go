// Package httpapi wires the HTTP surface of the wallet data gateway.
package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glowdesk/walletd/internal/credstore"
	"github.com/glowdesk/walletd/internal/transport/httpapi/handler"
	"github.com/glowdesk/walletd/internal/transport/httpapi/middleware"
	"github.com/glowdesk/walletd/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	AllowedOrigins []string
	Credentials    *credstore.Store
	AuthHandler    *handler.AuthHandler
	WalletHandler  *handler.WalletHandler
	PaymentHandler *handler.PaymentHandler
	HealthHandler  *handler.HealthHandler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Authenticated surface: the bearer token rides through to the
		// upstream service, which is the sole authority on its validity.
		r.Group(func(r chi.Router) {
			if cfg.Credentials != nil {
				r.Use(middleware.Credentials(cfg.Credentials))
			}

			if cfg.WalletHandler != nil {
				r.Get("/wallet/statement", cfg.WalletHandler.GetStatement)
				r.Post("/wallet/refresh", cfg.WalletHandler.Refresh)
			}

			if cfg.PaymentHandler != nil {
				r.Get("/payments/{id}/status", cfg.PaymentHandler.GetStatus)
			}
		})
	})

	return r
}
