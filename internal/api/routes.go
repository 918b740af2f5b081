package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. The health checker is separate from the
// handler set because it holds raw connection handles rather than services.
func SetupRoutes(h *Handlers, hc *HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// A sync batch holds its request open for up to the batch budget plus
	// aggregation, so the cutoff sits well above 55 s.
	r.Use(middleware.Timeout(2 * time.Minute))

	// Callers authenticate with bearer tokens, not cookies, so wildcard
	// origins without credentials are safe here.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health and metrics (no auth required)
	r.Get("/health", hc.HandleHealth)
	r.Get("/health/ready", hc.HandleReadiness)
	r.Get("/metrics", h.Metrics)

	// Function routes keep the path shape the original deployment exposed,
	// so provider webhook registrations survive the migration untouched.
	r.Route("/functions", func(r chi.Router) {
		r.Post("/email-sync", h.EmailSync)
		r.Post("/sync-stop", h.SyncStop)
		r.Get("/sync-status", h.SyncStatus)
		r.Post("/smartlead-webhook", h.SmartleadWebhook)
		r.Post("/replyio-webhook", h.ReplyIOWebhook)
		r.Post("/contact-search", h.ContactSearch)
	})

	return r
}
