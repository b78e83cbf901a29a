// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package services

import (
	"context"
	"fmt"

	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/metrics"
)

// SchemaStore matches *database.DB's schema initialization.
type SchemaStore interface {
	InitSchema() error
}

// ReadinessGate matches *ingest.StoreGate's readiness flip.
type ReadinessGate interface {
	SetReady()
}

// RuleLoader matches *alerting.Engine's rule reload.
type RuleLoader interface {
	ReloadRules(ctx context.Context) error
}

// WarmupService performs database warm-up as a supervised service.
//
// The HTTP server starts accepting status reports immediately; until
// warm-up completes, the ingestion pipeline runs in degraded mode
// (cache and broadcast only, no persistence). This service does the
// work that ends that window:
//
//  1. Creates tables and indexes if they don't exist
//  2. Flips the readiness gate so the pipeline starts persisting
//  3. Loads active keyword rules into the alerting engine
//  4. Blocks until the context is canceled
//
// If schema creation fails, the error is returned and suture restarts
// the service with backoff, giving slow-mounting storage time to appear.
// A rule load failure is logged but not fatal since rules are reloaded
// on every keyword change through the API.
type WarmupService struct {
	store SchemaStore
	gate  ReadinessGate
	rules RuleLoader
	name  string
}

// NewWarmupService creates a new warm-up service.
// The rules loader may be nil when alerting is not configured.
func NewWarmupService(store SchemaStore, gate ReadinessGate, rules RuleLoader) *WarmupService {
	return &WarmupService{
		store: store,
		gate:  gate,
		rules: rules,
		name:  "db-warmup",
	}
}

// Serve implements suture.Service.
func (w *WarmupService) Serve(ctx context.Context) error {
	if err := w.store.InitSchema(); err != nil {
		return fmt.Errorf("schema warm-up failed: %w", err)
	}

	w.gate.SetReady()
	metrics.SetDegradedMode(false)
	logging.Info().Msg("Database warm-up complete, persistence enabled")

	if w.rules != nil {
		if err := w.rules.ReloadRules(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to load keyword rules during warm-up")
		}
	}

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (w *WarmupService) String() string {
	return w.name
}
