// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package main is the entry point for the GuardIT server application.
//
// GuardIT is a self-hosted backup job monitor. Backup scripts POST their
// status to the REST API; GuardIT keeps an in-memory snapshot of every
// tracked task, persists a status history and daily success metrics in
// DuckDB, raises keyword-driven alerts, and streams updates to dashboards
// over SSE and WebSocket. A Grafana JSON datasource endpoint exposes the
// same data to external dashboards.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and optional config file (Koanf v2)
//  2. Database: DuckDB handle (schema creation is deferred to warm-up)
//  3. Status cache: in-memory snapshot of the latest status per task
//  4. Broadcast hub: real-time fan-out to SSE and WebSocket subscribers
//  5. Alerting engine: keyword matching with optional webhook escalation
//  6. Ingestion pipeline: cache, persistence, alerting, and broadcast per report
//  7. HTTP server: REST API, Grafana datasource, and streaming endpoints
//
// All long-running components run under a suture supervisor tree. The
// HTTP server starts accepting status reports immediately; until the
// warm-up service finishes creating the schema, ingestion runs in
// degraded mode (cache and broadcast only, no persistence).
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. See internal/config for the full variable list.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes subscriber channels and the database connection
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guardit/guardit/internal/alerting"
	"github.com/guardit/guardit/internal/api"
	"github.com/guardit/guardit/internal/broadcast"
	"github.com/guardit/guardit/internal/config"
	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/ingest"
	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/metrics"
	"github.com/guardit/guardit/internal/statuscache"
	"github.com/guardit/guardit/internal/supervisor"
	"github.com/guardit/guardit/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting GuardIT")

	// Open the database handle without touching the schema. Schema
	// creation happens in the warm-up service so a slow or missing
	// data volume can't delay HTTP startup.
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Ingestion starts degraded until warm-up flips the gate
	metrics.SetDegradedMode(true)

	cache := statuscache.New()
	hub := broadcast.NewHub()
	gate := ingest.NewStoreGate()

	notifier := alerting.NewWebhookNotifier(&cfg.Alerting)
	if notifier.Enabled() {
		logging.Info().
			Dur("min_interval", cfg.Alerting.WebhookMinInterval).
			Msg("Alert webhook escalation enabled")
	} else {
		logging.Info().Msg("Alert webhook escalation disabled (ALERT_WEBHOOK_URL not set)")
	}

	engine := alerting.NewEngine(db, hub, notifier)
	pipeline := ingest.NewPipeline(gate, db, db, cache, engine, hub)

	handler := api.NewHandler(cfg, db, cache, pipeline, engine, hub, gate, version)
	middleware := api.NewMiddleware(&cfg.Security)
	router := api.NewRouter(handler, middleware)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewWarmupService(db, gate, engine))
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
