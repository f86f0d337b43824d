// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/server and cmd/salahctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Trigger authentication
	CronSecret string

	// Firebase Cloud Messaging service account
	FCMProjectID   string
	FCMClientEmail string
	FCMPrivateKey  string

	// Notification windows (minutes unless noted). Defaults preserve the
	// deployed behavior; widths assume a cron cadence of a few minutes.
	PrayerWindowMin int    // main reminder window from scheduled time
	DelayOffsetMin  int    // partner alert offset after scheduled time
	DelayWindowMin  int    // partner alert window from the offset
	QuranStart      string // "HH:MM" local start of the Quran nudge window
	QuranWindowMin  int

	// Weekly broadcast
	WeeklyTopic string

	// Batch evaluation
	CheckWorkers int

	// Flag retention
	FlagRetentionDays int
	PurgeInterval     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("NEON_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or NEON_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CronSecret: envOr("CRON_SECRET", ""),

		FCMProjectID:   envOr("FIREBASE_PROJECT_ID", ""),
		FCMClientEmail: envOr("FIREBASE_CLIENT_EMAIL", ""),
		FCMPrivateKey:  NormalizePrivateKey(envOr("FIREBASE_PRIVATE_KEY", "")),

		PrayerWindowMin: envInt("PRAYER_WINDOW_MINUTES", 10),
		DelayOffsetMin:  envInt("DELAY_OFFSET_MINUTES", 15),
		DelayWindowMin:  envInt("DELAY_WINDOW_MINUTES", 10),
		QuranStart:      envOr("QURAN_REMINDER_START", "21:00"),
		QuranWindowMin:  envInt("QURAN_WINDOW_MINUTES", 20),

		WeeklyTopic: envOr("WEEKLY_REMINDER_TOPIC", "donation-reminders"),

		CheckWorkers: envInt("CHECK_WORKERS", 4),

		FlagRetentionDays: envInt("FLAG_RETENTION_DAYS", 7),
		PurgeInterval:     time.Duration(envInt("PURGE_INTERVAL_MINUTES", 360)) * time.Minute,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MessagingConfigured reports whether the FCM service account is complete.
func (c *Config) MessagingConfigured() bool {
	return c.FCMProjectID != "" && c.FCMClientEmail != "" && c.FCMPrivateKey != ""
}

// NormalizePrivateKey undoes the encodings a PEM key picks up travelling
// through env files and secret managers: surrounding quotes and literal
// backslash-n sequences in place of newlines.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) >= 2 {
		if (key[0] == '"' && key[len(key)-1] == '"') ||
			(key[0] == '\'' && key[len(key)-1] == '\'') {
			key = key[1 : len(key)-1]
		}
	}
	return strings.ReplaceAll(key, `\n`, "\n")
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
