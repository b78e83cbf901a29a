// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/models"
)

// reloadRules refreshes the alerting engine after a keyword mutation.
// A failed reload leaves the previous rules active, so it is logged
// rather than surfaced to the caller.
func (h *Handler) reloadRules(r *http.Request) {
	if h.engine == nil {
		return
	}
	if err := h.engine.ReloadRules(r.Context()); err != nil {
		logging.Error().Err(err).Msg("Failed to reload keyword rules")
	}
}

func keywordIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "keywordID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Keyword ID must be an integer", nil)
		return 0, false
	}
	return id, true
}

// CreateKeyword handles POST /api/keywords.
func (h *Handler) CreateKeyword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateKeywordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	keyword, err := h.db.CreateKeyword(r.Context(), &req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create keyword", err)
		return
	}

	h.reloadRules(r)
	respondData(w, http.StatusCreated, keyword, start)
}

// ListKeywords handles GET /api/keywords. ?active=true filters to
// active rules.
func (h *Handler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	activeOnly := r.URL.Query().Get("active") == "true"
	keywords, err := h.db.ListKeywords(r.Context(), activeOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list keywords", err)
		return
	}
	if keywords == nil {
		keywords = []models.KeywordRule{}
	}
	respondData(w, http.StatusOK, keywords, start)
}

// GetKeyword handles GET /api/keywords/{keywordID}.
func (h *Handler) GetKeyword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := keywordIDParam(w, r)
	if !ok {
		return
	}

	keyword, err := h.db.GetKeyword(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrKeywordNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Keyword not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load keyword", err)
		return
	}
	respondData(w, http.StatusOK, keyword, start)
}

// UpdateKeyword handles PUT /api/keywords/{keywordID}.
func (h *Handler) UpdateKeyword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := keywordIDParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateKeywordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	keyword, err := h.db.UpdateKeyword(r.Context(), id, &req)
	switch {
	case errors.Is(err, database.ErrKeywordNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Keyword not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update keyword", err)
		return
	}

	h.reloadRules(r)
	respondData(w, http.StatusOK, keyword, start)
}

// DeleteKeyword handles DELETE /api/keywords/{keywordID}.
func (h *Handler) DeleteKeyword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := keywordIDParam(w, r)
	if !ok {
		return
	}

	err := h.db.DeleteKeyword(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrKeywordNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Keyword not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete keyword", err)
		return
	}

	h.reloadRules(r)
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, start)
}

// ListAlerts handles GET /api/alerts with task_id and status filters
// plus limit/offset paging.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, offset := clampPage(
		getIntParam(r, "limit", h.cfg.API.DefaultPageSize),
		getIntParam(r, "offset", 0),
		h.cfg.API.DefaultPageSize,
		h.cfg.API.MaxPageSize,
	)

	alerts, err := h.db.ListAlerts(r.Context(), r.URL.Query().Get("task_id"), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list alerts", err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	respondData(w, http.StatusOK, alerts, start)
}

func alertIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Alert ID must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// AcknowledgeAlert handles POST /api/alerts/{alertID}/acknowledge.
// Only active alerts can be acknowledged.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := alertIDParam(w, r)
	if !ok {
		return
	}

	err := h.db.AcknowledgeAlert(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrAlertNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No active alert with that ID", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to acknowledge alert", err)
		return
	}
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, start)
}

// ResolveAlert handles POST /api/alerts/{alertID}/resolve.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := alertIDParam(w, r)
	if !ok {
		return
	}

	err := h.db.ResolveAlert(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrAlertNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No open alert with that ID", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve alert", err)
		return
	}
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, start)
}
