// Command salahctl is the notification operations CLI. It runs against the
// store and push provider directly, for cron platforms that exec a binary
// instead of calling the HTTP trigger.
//
// Usage:
//
//	salahctl check
//	salahctl check --workers 8
//	salahctl send --token <fcm-token> --title "Test" --body "Hello"
//	salahctl weekly
//	salahctl purge-flags --retention 7
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/maintenance"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/notify"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/tzcache"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "salahctl",
		Short: "Salah Tracker notification operations CLI",
	}

	root.AddCommand(checkCmd())
	root.AddCommand(sendCmd())
	root.AddCommand(weeklyCmd())
	root.AddCommand(purgeFlagsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// check command
// --------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one notification check pass over all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, cfg *config.Config, st *store.Postgres, sender messaging.Sender) error {
				if sender == nil {
					return fmt.Errorf("firebase service account is required for check")
				}
				windows, err := notify.WindowsFromConfig(cfg)
				if err != nil {
					return err
				}
				if workers == 0 {
					workers = cfg.CheckWorkers
				}
				eval := notify.NewEvaluator(st, sender, tzcache.New(), windows, logger)
				runner := notify.NewRunner(st, eval, workers, logger)

				result, err := runner.Run(ctx, time.Now().UTC())
				if err != nil {
					return err
				}
				for _, n := range result.Notified {
					logger.Info("notified", "uid", n.UID, "prayer", n.Prayer)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Evaluation workers (default from config)")
	return cmd
}

// --------------------------------------------------------------------------
// send command
// --------------------------------------------------------------------------

func sendCmd() *cobra.Command {
	var token, title, body string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one test notification to a device token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" || title == "" || body == "" {
				return fmt.Errorf("--token, --title and --body are all required")
			}
			return withSender(func(ctx context.Context, cfg *config.Config, sender messaging.Sender) error {
				id, err := sender.Send(ctx, token, title, body, messaging.Options{Sound: "default"})
				if err != nil {
					return err
				}
				logger.Info("sent", "message_id", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "FCM device token")
	cmd.Flags().StringVar(&title, "title", "", "Notification title")
	cmd.Flags().StringVar(&body, "body", "", "Notification body")
	return cmd
}

// --------------------------------------------------------------------------
// weekly command
// --------------------------------------------------------------------------

func weeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Send the weekly donation reminder to the configured topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSender(func(ctx context.Context, cfg *config.Config, sender messaging.Sender) error {
				id, err := sender.SendToTopic(ctx, cfg.WeeklyTopic,
					"Weekly Sadaqah Reminder",
					"A small donation every week adds up. Give what you can today.")
				if err != nil {
					return err
				}
				logger.Info("sent", "topic", cfg.WeeklyTopic, "message_id", id)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// purge-flags command
// --------------------------------------------------------------------------

func purgeFlagsCmd() *cobra.Command {
	var retention int
	cmd := &cobra.Command{
		Use:   "purge-flags",
		Short: "Trim dedup flags older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, cfg *config.Config, st *store.Postgres, _ messaging.Sender) error {
				if retention == 0 {
					retention = cfg.FlagRetentionDays
				}
				maintenance.PurgeFlags(ctx, st, retention, logger)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&retention, "retention", 0, "Days of flags to keep (default from config)")
	return cmd
}

// --------------------------------------------------------------------------
// Shared wiring
// --------------------------------------------------------------------------

func withDeps(fn func(ctx context.Context, cfg *config.Config, st *store.Postgres, sender messaging.Sender) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	st, err := store.NewPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var sender messaging.Sender
	if cfg.MessagingConfigured() {
		fcm, err := messaging.NewFCM(ctx, cfg)
		if err != nil {
			return err
		}
		sender = fcm
	}
	return fn(ctx, cfg, st, sender)
}

func withSender(fn func(ctx context.Context, cfg *config.Config, sender messaging.Sender) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fcm, err := messaging.NewFCM(ctx, cfg)
	if err != nil {
		return err
	}
	return fn(ctx, cfg, fcm)
}
