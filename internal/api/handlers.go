// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package api exposes GuardIT over HTTP: status ingestion, task and
// keyword management, alert workflow, history queries, real-time
// streams, and the Grafana JSON datasource.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guardit/guardit/internal/broadcast"
	"github.com/guardit/guardit/internal/config"
	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/ingest"
	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/models"
	"github.com/guardit/guardit/internal/statuscache"
)

// Handler carries the wired dependencies for all endpoints.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	cache     *statuscache.Cache
	pipeline  *ingest.Pipeline
	engine    RuleReloader
	hub       *broadcast.Hub
	gate      *ingest.StoreGate
	startTime time.Time
	version   string
}

// RuleReloader refreshes the alerting engine after keyword mutations.
type RuleReloader interface {
	ReloadRules(ctx context.Context) error
}

// NewHandler wires the handler. engine may be nil when alerting is
// disabled.
func NewHandler(cfg *config.Config, db *database.DB, cache *statuscache.Cache, pipeline *ingest.Pipeline, engine RuleReloader, hub *broadcast.Hub, gate *ingest.StoreGate, version string) *Handler {
	return &Handler{
		cfg:       cfg,
		db:        db,
		cache:     cache,
		pipeline:  pipeline,
		engine:    engine,
		hub:       hub,
		gate:      gate,
		startTime: time.Now(),
		version:   version,
	}
}

// ReportStatus handles POST /api/status/{taskID}. The report body is
// optional field by field; defaults are applied during ingestion.
// Acceptance is acknowledged with a bare success body; reporting
// scripts fire and forget, dashboards read the stream.
func (h *Handler) ReportStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Task ID is required", nil)
		return
	}

	var report models.StatusReport
	if !decodeBody(w, r, &report) {
		return
	}
	if apiErr := validateRequest(&report); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	_, err := h.pipeline.Ingest(r.Context(), taskID, report)
	switch {
	case errors.Is(err, ingest.ErrUnregisteredTask):
		respondError(w, http.StatusNotFound, "UNREGISTERED_TASK", "Task is not registered", nil)
		return
	case errors.Is(err, ingest.ErrInactiveTask):
		respondError(w, http.StatusForbidden, "INACTIVE_TASK", "Task is inactive", nil)
		return
	case errors.Is(err, ingest.ErrRegistryUnavailable):
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to verify task registration", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process status report", err)
		return
	}

	respondData(w, http.StatusOK, models.AckResponse{Success: true}, time.Now())
}

// GetStatus handles GET /api/status/{taskID}, served from the cache.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	snap, ok := h.cache.Get(taskID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No status tracked for task", nil)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     snap,
		Metadata: models.Metadata{Timestamp: time.Now(), Cached: true},
	})
}

// ListStatuses handles GET /api/status. Returns the full snapshot map.
func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     h.cache.GetAll(),
		Metadata: models.Metadata{Timestamp: time.Now(), Cached: true},
	})
}

// DeleteStatus handles DELETE /api/status/{taskID}. Removal is
// idempotent; deleting an untracked task still succeeds.
func (h *Handler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	h.pipeline.Remove(taskID)
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, time.Now())
}

// ClearStatuses handles DELETE /api/status.
func (h *Handler) ClearStatuses(w http.ResponseWriter, r *http.Request) {
	n := h.pipeline.Clear()
	logging.Info().Int("cleared", n).Msg("Status cache cleared")
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, time.Now())
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.gate.Ready() {
		status = "degraded"
	}
	respondRaw(w, http.StatusOK, models.HealthResponse{
		Status:        status,
		Timestamp:     time.Now(),
		Uptime:        time.Since(h.startTime).Seconds(),
		DatabaseReady: h.gate.Ready(),
		Subscribers:   h.hub.SubscriberCount(),
		TrackedTasks:  h.cache.Len(),
		Version:       h.version,
	})
}

// Events handles GET /events, the SSE stream.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	broadcast.SSEHandler(h.hub, h.cache, h.cfg.Server.KeepaliveInterval)(w, r)
}

// WebSocket handles GET /api/v1/ws.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	broadcast.ServeWS(h.hub, h.cache, w, r)
}
