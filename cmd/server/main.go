/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the timesheet engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment configuration
  2. Initialize structured logging
  3. Initialize SQLite store
  4. Create API handler, scenarios and session janitor
  5. Start server with graceful shutdown

CONFIGURATION (environment):
  PORT                HTTP server port (default: 8080)
  SQLITE_DB_PATH      SQLite database path (default: ./timesheets.db)
                      Use ":memory:" for an in-memory database
  PERIOD_LENGTH_DAYS  Period length, 7 = weekly (default: 7)
  PERIOD_ANCHOR       ISO date a period starts on (default: 2026-01-05)
  DAILY_STD_HOURS     Contracted hours per working day (default: 8)
  LOG_LEVEL           debug | info | warn | error (default: info)
  SHUTDOWN_TIMEOUT    Graceful shutdown window (default: 30s)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete
  3. Stop the session janitor and close the database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/config"
	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/logging"
	"github.com/warp/timesheet-engine/store/sqlite"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel}).WithComponent(logging.ComponentApp)

	schedule, err := factory.ParseSchedule(fmt.Sprintf(
		`{"type": "declared", "anchor": %q, "length_days": %d}`,
		cfg.PeriodAnchor, cfg.PeriodLengthDays))
	if err != nil {
		log.Error("invalid schedule configuration", logging.FieldError, err.Error())
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.SQLiteDBPath, log)
	if err != nil {
		log.Error("failed to initialize database", logging.FieldError, err.Error())
		os.Exit(1)
	}
	defer store.Close()

	scenarios := api.NewScenarioManager(store, schedule, log)
	handler := api.NewHandler(store, schedule, log).WithScenarios(scenarios)
	router := api.NewRouter(handler, log)

	janitor := api.NewSessionJanitor(handler, log)
	janitor.Start()
	defer janitor.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", logging.FieldError, err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", logging.FieldError, err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
