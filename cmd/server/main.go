// Command server is the Salah Tracker notification backend.
//
// Usage:
//
//	salah-server
//	API_PORT=8080 salah-server
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/api"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/maintenance"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/notify"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/tzcache"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to the document store
	logger.Info("Connecting to database...")
	st, err := store.NewPostgres(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Messaging client (nil when the service account is absent; the
	// trigger and send endpoints then answer with a configuration error)
	var sender messaging.Sender
	if cfg.MessagingConfigured() {
		fcm, err := messaging.NewFCM(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize messaging", "error", err)
			os.Exit(1)
		}
		sender = fcm
		logger.Info("Messaging initialized", "project", cfg.FCMProjectID)
	} else {
		logger.Warn("Messaging disabled (incomplete Firebase service account)")
	}

	// Notification core
	zones := tzcache.New()
	windows, err := notify.WindowsFromConfig(cfg)
	if err != nil {
		logger.Error("Invalid window configuration", "error", err)
		os.Exit(1)
	}
	eval := notify.NewEvaluator(st, sender, zones, windows, logger)
	runner := notify.NewRunner(st, eval, cfg.CheckWorkers, logger)

	// Start flag retention ticker
	go maintenance.Start(ctx, st, maintenance.Config{
		PurgeInterval: cfg.PurgeInterval,
		RetentionDays: cfg.FlagRetentionDays,
	}, logger)

	// Create router
	router := api.NewRouter(cfg, st, sender, runner, zones, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Salah Tracker notification API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
