// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardit/guardit/internal/alerting"
	"github.com/guardit/guardit/internal/broadcast"
	"github.com/guardit/guardit/internal/config"
	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/ingest"
	"github.com/guardit/guardit/internal/models"
	"github.com/guardit/guardit/internal/statuscache"
)

type testStack struct {
	server *httptest.Server
	db     *database.DB
	cache  *statuscache.Cache
	hub    *broadcast.Hub
	engine *alerting.Engine
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{KeepaliveInterval: time.Minute},
		API:      config.APIConfig{DefaultPageSize: 50, MaxPageSize: 500},
		Security: config.SecurityConfig{RateLimitDisabled: true, CORSOrigins: []string{"*"}},
	}

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { _ = db.Close() })

	cache := statuscache.New()
	hub := broadcast.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(hubDone)
	}()
	t.Cleanup(func() {
		cancel()
		<-hubDone
	})

	engine := alerting.NewEngine(db, hub, nil)
	require.NoError(t, engine.ReloadRules(context.Background()))

	gate := ingest.NewStoreGate()
	gate.SetReady()
	pipeline := ingest.NewPipeline(gate, db, db, cache, engine, hub)

	handler := NewHandler(cfg, db, cache, pipeline, engine, hub, gate, "test")
	router := NewRouter(handler, NewMiddleware(&cfg.Security))
	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)

	return &testStack{server: srv, db: db, cache: cache, hub: hub, engine: engine}
}

func (s *testStack) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope models.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func (s *testStack) registerTask(t *testing.T, taskID string) {
	t.Helper()
	resp := s.request(t, http.MethodPost, "/api/tasks", models.RegisterTaskRequest{
		TaskID:      taskID,
		DisplayName: taskID,
		TaskType:    "database",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestReportStatusRoundTrip(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")

	resp := s.request(t, http.MethodPost, "/api/status/backup-db", models.StatusReport{
		Status:   "running",
		Message:  "copying files",
		Progress: 42,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, "success", envelope.Status)

	// Reporting scripts get a bare acknowledgement, not the snapshot.
	ack, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, ack["success"])
	assert.NotContains(t, ack, "status")

	snap, ok := s.cache.Get("backup-db")
	require.True(t, ok)
	assert.Equal(t, "running", snap.Status)
	assert.Equal(t, 42, snap.Progress)

	// Single status read.
	resp = s.request(t, http.MethodGet, "/api/status/backup-db", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Full map read.
	resp = s.request(t, http.MethodGet, "/api/status", nil)
	envelope = decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "backup-db")
}

func TestReportStatusUnregistered(t *testing.T) {
	s := newTestStack(t)

	resp := s.request(t, http.MethodPost, "/api/status/ghost", models.StatusReport{Status: "running"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNREGISTERED_TASK", envelope.Error.Code)
}

func TestReportStatusInactive(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")

	inactive := false
	resp := s.request(t, http.MethodPut, "/api/tasks/backup-db", models.UpdateTaskRequest{IsActive: &inactive})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(t, http.MethodPost, "/api/status/backup-db", models.StatusReport{Status: "running"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, "INACTIVE_TASK", envelope.Error.Code)
}

func TestReportStatusValidation(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")

	// Malformed JSON is rejected.
	resp, err := http.Post(s.server.URL+"/api/status/backup-db", "application/json", strings.NewReader(`{"progress":`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)

	// Progress carries whatever unit the script counts in, so large
	// values pass.
	resp = s.request(t, http.MethodPost, "/api/status/backup-db", map[string]any{"progress": 5000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	snap, ok := s.cache.Get("backup-db")
	require.True(t, ok)
	assert.Equal(t, 5000, snap.Progress)
}

func TestDeleteAndClearStatuses(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")
	s.registerTask(t, "backup-files")

	for _, id := range []string{"backup-db", "backup-files"} {
		resp := s.request(t, http.MethodPost, "/api/status/"+id, models.StatusReport{Status: "running"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.request(t, http.MethodDelete, "/api/status/backup-db", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, s.cache.Len())

	resp = s.request(t, http.MethodDelete, "/api/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, s.cache.Len())
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")

	// Duplicate registration conflicts.
	resp := s.request(t, http.MethodPost, "/api/tasks", models.RegisterTaskRequest{TaskID: "backup-db", DisplayName: "x", TaskType: "database"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(t, http.MethodGet, "/api/tasks", nil)
	envelope := decodeEnvelope(t, resp)
	tasks, ok := envelope.Data.([]any)
	require.True(t, ok)
	assert.Len(t, tasks, 1)

	resp = s.request(t, http.MethodDelete, "/api/tasks/backup-db", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(t, http.MethodGet, "/api/tasks/backup-db", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestKeywordCRUDAndAlertGeneration(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")

	resp := s.request(t, http.MethodPost, "/api/keywords", models.CreateKeywordRequest{
		Keyword:   "permission denied",
		AlertType: models.AlertTypeCritical,
		Severity:  8,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, s.engine.RuleCount())

	// Trigger the keyword.
	resp = s.request(t, http.MethodPost, "/api/status/backup-db", models.StatusReport{
		Status:  "failed",
		Message: "rsync: Permission Denied on /etc",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(t, http.MethodGet, "/api/alerts?task_id=backup-db", nil)
	envelope := decodeEnvelope(t, resp)
	alerts, ok := envelope.Data.([]any)
	require.True(t, ok)
	require.Len(t, alerts, 1)

	alert := alerts[0].(map[string]any)
	assert.Equal(t, "permission denied", alert["keyword"])
	assert.Equal(t, float64(8), alert["severity"])
	alertID := alert["id"].(string)

	// Acknowledge, then resolve.
	resp = s.request(t, http.MethodPost, "/api/alerts/"+alertID+"/acknowledge", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(t, http.MethodPost, "/api/alerts/"+alertID+"/resolve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Re-acknowledging a resolved alert fails.
	resp = s.request(t, http.MethodPost, "/api/alerts/"+alertID+"/acknowledge", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHistoryAndMetricsEndpoints(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")

	for _, status := range []string{"running", "completed", "failed"} {
		resp := s.request(t, http.MethodPost, "/api/status/backup-db", models.StatusReport{Status: status})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.request(t, http.MethodGet, "/api/tasks/backup-db/history?limit=2", nil)
	envelope := decodeEnvelope(t, resp)
	events, ok := envelope.Data.([]any)
	require.True(t, ok)
	assert.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "failed", events[0].(map[string]any)["status"])

	resp = s.request(t, http.MethodGet, "/api/tasks/backup-db/stats", nil)
	envelope = decodeEnvelope(t, resp)
	stats := envelope.Data.(map[string]any)
	assert.Equal(t, float64(3), stats["total_events"])
	assert.Equal(t, float64(1), stats["completed"])
	assert.Equal(t, float64(1), stats["failed"])

	resp = s.request(t, http.MethodGet, "/api/tasks/backup-db/metrics", nil)
	envelope = decodeEnvelope(t, resp)
	dailyMetrics := envelope.Data.([]any)
	require.Len(t, dailyMetrics, 1)
	day := dailyMetrics[0].(map[string]any)
	assert.Equal(t, float64(2), day["total_runs"])
	assert.Equal(t, float64(1), day["successful_runs"])
	assert.Equal(t, float64(1), day["failed_runs"])

	resp = s.request(t, http.MethodGet, "/api/tasks/backup-db/summary", nil)
	envelope = decodeEnvelope(t, resp)
	summary := envelope.Data.([]any)
	assert.Len(t, summary, 3)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestStack(t)
	s.registerTask(t, "backup-db")
	resp := s.request(t, http.MethodPost, "/api/status/backup-db", models.StatusReport{Status: "running"})
	resp.Body.Close()

	resp = s.request(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var health models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.DatabaseReady)
	assert.Equal(t, 1, health.TrackedTasks)
}
