// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/models"
)

// GetHistory handles GET /api/tasks/{taskID}/history. Newest first,
// paged with limit/offset. Passing start and end (RFC3339) switches to
// a date range query.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	limit, offset := clampPage(
		getIntParam(r, "limit", h.cfg.API.DefaultPageSize),
		getIntParam(r, "offset", 0),
		h.cfg.API.DefaultPageSize,
		h.cfg.API.MaxPageSize,
	)

	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	var events []models.StatusEvent
	var err error
	if startParam != "" && endParam != "" {
		var from, to time.Time
		from, err = time.Parse(time.RFC3339, startParam)
		if err == nil {
			to, err = time.Parse(time.RFC3339, endParam)
		}
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "start and end must be RFC3339 timestamps", nil)
			return
		}
		events, err = h.db.GetHistoryByDateRange(r.Context(), taskID, from, to, limit)
	} else {
		events, err = h.db.GetHistory(r.Context(), taskID, limit, offset)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load history", err)
		return
	}
	if events == nil {
		events = []models.StatusEvent{}
	}
	respondData(w, http.StatusOK, events, start)
}

// GetLatestEvent handles GET /api/tasks/{taskID}/latest, the newest
// persisted event as opposed to the cached snapshot.
func (h *Handler) GetLatestEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	event, err := h.db.GetLatestEvent(r.Context(), taskID)
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No history for task", nil)
		return
	}
	respondData(w, http.StatusOK, event, start)
}

// GetStats handles GET /api/tasks/{taskID}/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	stats, err := h.db.GetTaskStats(r.Context(), taskID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute stats", err)
		return
	}
	respondData(w, http.StatusOK, stats, start)
}

// GetTodaysSummary handles GET /api/tasks/{taskID}/summary, today's
// events grouped by status.
func (h *Handler) GetTodaysSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	summary, err := h.db.GetTodaysSummary(r.Context(), taskID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute summary", err)
		return
	}
	if summary == nil {
		summary = []database.StatusCount{}
	}
	respondData(w, http.StatusOK, summary, start)
}

// GetDailyMetrics handles GET /api/tasks/{taskID}/metrics. With start
// and end (YYYY-MM-DD) it returns the range; otherwise the last 30
// days.
func (h *Handler) GetDailyMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	startDate := r.URL.Query().Get("start")
	endDate := r.URL.Query().Get("end")

	var dailyMetrics []models.DailyMetric
	var err error
	if startDate != "" && endDate != "" {
		if !validDate(startDate) || !validDate(endDate) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "start and end must be YYYY-MM-DD dates", nil)
			return
		}
		dailyMetrics, err = h.db.GetMetricsByDateRange(r.Context(), taskID, startDate, endDate)
	} else {
		dailyMetrics, err = h.db.GetLastMonthMetrics(r.Context(), taskID)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load daily metrics", err)
		return
	}
	if dailyMetrics == nil {
		dailyMetrics = []models.DailyMetric{}
	}
	respondData(w, http.StatusOK, dailyMetrics, start)
}

func validDate(s string) bool {
	_, err := time.Parse(database.DateFormat, s)
	return err == nil
}
