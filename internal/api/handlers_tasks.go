// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/models"
)

// RegisterTask handles POST /api/tasks.
func (h *Handler) RegisterTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RegisterTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	task, err := h.db.RegisterTask(r.Context(), &req)
	switch {
	case errors.Is(err, database.ErrTaskIDConflict):
		respondError(w, http.StatusConflict, "VALIDATION_ERROR", "Task ID is already registered", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to register task", err)
		return
	}

	respondData(w, http.StatusCreated, task, start)
}

// GetTask handles GET /api/tasks/{taskID}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	task, err := h.db.GetTask(r.Context(), taskID)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load task", err)
		return
	}

	respondData(w, http.StatusOK, task, start)
}

// ListTasks handles GET /api/tasks with optional task_type and
// server_id filters.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tasks, err := h.db.ListTasks(r.Context(), r.URL.Query().Get("task_type"), r.URL.Query().Get("server_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []models.BackupTask{}
	}
	respondData(w, http.StatusOK, tasks, start)
}

// UpdateTask handles PUT /api/tasks/{taskID}. Omitted fields keep
// their stored values.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	var req models.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	task, err := h.db.UpdateTask(r.Context(), taskID, &req)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update task", err)
		return
	}

	respondData(w, http.StatusOK, task, start)
}

// DeleteTask handles DELETE /api/tasks/{taskID}. Drops the task, its
// history, daily metrics, and alerts, and removes the live snapshot.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	taskID := chi.URLParam(r, "taskID")

	err := h.db.DeleteTask(r.Context(), taskID)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete task", err)
		return
	}

	h.pipeline.Remove(taskID)
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, start)
}

// ListServers handles GET /api/servers.
func (h *Handler) ListServers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	servers, err := h.db.ListServers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list servers", err)
		return
	}
	if servers == nil {
		servers = []models.Server{}
	}
	respondData(w, http.StatusOK, servers, start)
}

// UpsertServer handles POST /api/servers. Registering an existing
// server ID refreshes its display name.
func (h *Handler) UpsertServer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		ServerID    string `json:"server_id" validate:"required,min=1,max=255"`
		DisplayName string `json:"display_name" validate:"max=255"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	server, err := h.db.UpsertServer(r.Context(), req.ServerID, req.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to upsert server", err)
		return
	}
	respondData(w, http.StatusOK, server, start)
}

// DeleteServer handles DELETE /api/servers/{serverID}.
func (h *Handler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	serverID := chi.URLParam(r, "serverID")

	err := h.db.DeleteServer(r.Context(), serverID)
	switch {
	case errors.Is(err, database.ErrServerNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Server not found", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete server", err)
		return
	}
	respondData(w, http.StatusOK, models.AckResponse{Success: true}, start)
}
