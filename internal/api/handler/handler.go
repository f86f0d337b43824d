// Package handler provides HTTP handlers for the notification backend: the
// cron trigger, the manual and topic send endpoints, and health checks.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/api/respond"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/notify"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/tzcache"
)

// CronSecretHeader carries the shared secret from the external scheduler.
const CronSecretHeader = "X-Cron-Secret"

// Handler holds shared dependencies for all endpoint handlers. Sender is
// nil when the FCM service account is not configured; affected endpoints
// then answer with a configuration error.
type Handler struct {
	cfg    *config.Config
	store  store.Store
	sender messaging.Sender
	runner *notify.Runner
	zones  *tzcache.Cache
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(cfg *config.Config, st store.Store, sender messaging.Sender, runner *notify.Runner, zones *tzcache.Cache, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		store:  st,
		sender: sender,
		runner: runner,
		zones:  zones,
		logger: logger,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Salah Tracker Notification API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies store connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns timezone cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"tz_cache":  h.zones.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
