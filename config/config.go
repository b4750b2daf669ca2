// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Timesheet defaults
	PeriodLengthDays int    // 7 = weekly
	PeriodAnchor     string // ISO date a period starts on
	DailyStdHours    float64

	// Logging
	LogLevel slog.Level

	// Shutdown
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./timesheets.db"),
		PeriodLengthDays: getEnvInt("PERIOD_LENGTH_DAYS", 7),
		PeriodAnchor:     getEnv("PERIOD_ANCHOR", "2026-01-05"),
		DailyStdHours:    getEnvFloat("DAILY_STD_HOURS", 8),
		LogLevel:         parseLevel(getEnv("LOG_LEVEL", "info")),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.PeriodLengthDays < 1 || c.PeriodLengthDays > 31 {
		problems = append(problems, fmt.Sprintf("invalid period length %d: must be 1-31 days", c.PeriodLengthDays))
	}

	if _, err := time.Parse("2006-01-02", c.PeriodAnchor); err != nil {
		problems = append(problems, fmt.Sprintf("invalid period anchor %q: must be an ISO date", c.PeriodAnchor))
	}

	if c.DailyStdHours <= 0 || c.DailyStdHours > 24 {
		problems = append(problems, fmt.Sprintf("invalid daily standard hours %v: must be in (0, 24]", c.DailyStdHours))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
