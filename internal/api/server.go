// Package api wires the HTTP surface: router, middleware and routes.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/api/handler"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/notify"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/tzcache"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(cfg *config.Config, st store.Store, sender messaging.Sender, runner *notify.Runner, zones *tzcache.Cache, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS — the PWA calls the send endpoint directly.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", handler.CronSecretHeader},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(cfg, st, sender, runner, zones, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/notifications/check", h.CheckPrayerTimes)
		r.Post("/notifications/send", h.SendNotification)
		r.Post("/notifications/weekly-reminder", h.SendWeeklyReminder)
	})

	return r
}
