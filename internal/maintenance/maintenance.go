// Package maintenance runs periodic background tasks as Go tickers.
// Dedup flag documents grow by a few keys per user per day; the purge task
// trims flags older than the retention window so documents stay small.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/prayer"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PurgeInterval time.Duration // dedup flag retention sweep
	RetentionDays int           // keep flags for this many days
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		PurgeInterval: 6 * time.Hour,
		RetentionDays: 7,
	}
}

// Start launches the maintenance tickers. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, st store.Store, cfg Config, logger *slog.Logger) {
	if cfg.PurgeInterval <= 0 {
		logger.Info("Maintenance disabled (zero purge interval)")
		return
	}
	logger.Info("Maintenance ticker started",
		"purge_interval", cfg.PurgeInterval,
		"retention_days", cfg.RetentionDays)

	t := time.NewTicker(cfg.PurgeInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			PurgeFlags(ctx, st, cfg.RetentionDays, logger)
		case <-ctx.Done():
			logger.Info("Maintenance ticker stopped")
			return
		}
	}
}

// PurgeFlags removes dedup flags dated before today minus retentionDays.
// The cutoff is computed in UTC; a user a few hours behind keeps at worst
// one extra day of flags, which is harmless.
func PurgeFlags(ctx context.Context, st store.Store, retentionDays int, logger *slog.Logger) {
	cutoff := prayer.DateKey(time.Now().UTC().AddDate(0, 0, -retentionDays))
	trimmed, err := st.PurgeFlagsBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("Flag purge failed", "cutoff", cutoff, "error", err)
		return
	}
	if trimmed > 0 {
		logger.Info("Flag purge complete", "cutoff", cutoff, "users_trimmed", trimmed)
	}
}
