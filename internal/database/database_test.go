// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardit/guardit/internal/config"
	"github.com/guardit/guardit/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func registerTestTask(t *testing.T, db *DB, taskID string) *models.BackupTask {
	t.Helper()

	task, err := db.RegisterTask(context.Background(), &models.RegisterTaskRequest{
		TaskID:      taskID,
		DisplayName: "Test Task",
		TaskType:    "rsync",
	})
	require.NoError(t, err)
	return task
}

func TestInitSchemaIdempotent(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.InitSchema())
}

func TestRegisterAndGetTask(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task, err := db.RegisterTask(ctx, &models.RegisterTaskRequest{
		TaskID:      "backup-db",
		DisplayName: "Database Backup",
		TaskType:    "postgres",
		Description: "nightly pg_dump",
		ServerID:    "srv-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "backup-db", task.TaskID)
	assert.True(t, task.IsActive)
	assert.Nil(t, task.LastSeen)

	got, err := db.GetTask(ctx, "backup-db")
	require.NoError(t, err)
	assert.Equal(t, "Database Backup", got.DisplayName)
	assert.Equal(t, "nightly pg_dump", got.Description)
	assert.Equal(t, "srv-1", got.ServerID)
}

func TestRegisterTaskConflict(t *testing.T) {
	db := setupTestDB(t)
	registerTestTask(t, db, "backup-db")

	_, err := db.RegisterTask(context.Background(), &models.RegisterTaskRequest{
		TaskID:      "backup-db",
		DisplayName: "Duplicate",
		TaskType:    "rsync",
	})
	assert.ErrorIs(t, err, ErrTaskIDConflict)
}

func TestGetTaskNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTaskPartial(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	inactive := false
	name := "Renamed"
	task, err := db.UpdateTask(ctx, "backup-db", &models.UpdateTaskRequest{
		DisplayName: &name,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", task.DisplayName)
	assert.False(t, task.IsActive)
	// Fields left nil keep their stored values.
	assert.Equal(t, "rsync", task.TaskType)
}

func TestTouchTaskLastSeen(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	require.NoError(t, db.TouchTaskLastSeen(ctx, "backup-db"))

	task, err := db.GetTask(ctx, "backup-db")
	require.NoError(t, err)
	require.NotNil(t, task.LastSeen)
	assert.WithinDuration(t, time.Now(), *task.LastSeen, 5*time.Second)

	assert.ErrorIs(t, db.TouchTaskLastSeen(ctx, "missing"), ErrTaskNotFound)
}

func TestDeleteTaskCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	require.NoError(t, db.AppendStatusEvent(ctx, &models.StatusEvent{
		TaskID: "backup-db",
		Status: models.StatusCompleted,
	}))
	_, err := db.RecomputeDailyMetric(ctx, "backup-db", "")
	require.NoError(t, err)
	require.NoError(t, db.InsertAlert(ctx, &models.Alert{
		TaskID:    "backup-db",
		KeywordID: 1,
		Keyword:   "failed",
		AlertType: models.AlertTypeError,
	}))

	require.NoError(t, db.DeleteTask(ctx, "backup-db"))

	_, err = db.GetTask(ctx, "backup-db")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	events, err := db.GetHistory(ctx, "backup-db", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	alerts, err := db.ListAlerts(ctx, "backup-db", "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAppendAndGetHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	base := time.Now().Add(-time.Hour)
	for i, status := range []string{models.StatusRunning, models.StatusRunning, models.StatusCompleted} {
		require.NoError(t, db.AppendStatusEvent(ctx, &models.StatusEvent{
			TaskID:    "backup-db",
			Status:    status,
			Message:   "step",
			Progress:  i * 50,
			Data:      json.RawMessage(`{"files":12}`),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := db.GetHistory(ctx, "backup-db", 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first.
	assert.Equal(t, models.StatusCompleted, events[0].Status)
	assert.Equal(t, 100, events[0].Progress)
	assert.JSONEq(t, `{"files":12}`, string(events[0].Data))

	paged, err := db.GetHistory(ctx, "backup-db", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, models.StatusRunning, paged[0].Status)
}

func TestGetHistoryByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	old := time.Now().AddDate(0, 0, -10)
	recent := time.Now().Add(-time.Hour)
	for _, ts := range []time.Time{old, recent} {
		require.NoError(t, db.AppendStatusEvent(ctx, &models.StatusEvent{
			TaskID:    "backup-db",
			Status:    models.StatusCompleted,
			Timestamp: ts,
		}))
	}

	events, err := db.GetHistoryByDateRange(ctx, "backup-db",
		time.Now().AddDate(0, 0, -2), time.Now(), 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.WithinDuration(t, recent, events[0].Timestamp, 2*time.Second)
}

func TestGetTaskStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	statuses := []string{
		models.StatusCompleted, models.StatusCompleted,
		models.StatusFailed, models.StatusError,
		models.StatusRunning, models.StatusWarning,
	}
	for _, status := range statuses {
		require.NoError(t, db.AppendStatusEvent(ctx, &models.StatusEvent{
			TaskID: "backup-db",
			Status: status,
		}))
	}

	stats, err := db.GetTaskStats(ctx, "backup-db")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalEvents)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 2, stats.Failed, "failed counts both failed and error")
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 1, stats.Warning)
	assert.NotNil(t, stats.FirstEvent)
	assert.NotNil(t, stats.LastEvent)
}

func TestRecomputeDailyMetricIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registerTestTask(t, db, "backup-db")

	for _, status := range []string{models.StatusCompleted, models.StatusFailed, models.StatusError} {
		require.NoError(t, db.AppendStatusEvent(ctx, &models.StatusEvent{
			TaskID: "backup-db",
			Status: status,
		}))
	}

	first, err := db.RecomputeDailyMetric(ctx, "backup-db", "")
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalRuns)
	assert.Equal(t, 1, first.SuccessfulRuns)
	assert.Equal(t, 2, first.FailedRuns)

	// Recomputing without new events converges on the same counts.
	second, err := db.RecomputeDailyMetric(ctx, "backup-db", "")
	require.NoError(t, err)
	assert.Equal(t, first.TotalRuns, second.TotalRuns)

	// The default day key is derived in UTC, matching the stored
	// event timestamps.
	today := time.Now().UTC().Format(DateFormat)
	assert.Equal(t, today, first.Date)
	rows, err := db.GetMetricsByDateRange(ctx, "backup-db", today, today)
	require.NoError(t, err)
	require.Len(t, rows, 1, "recompute must upsert, not duplicate")
	assert.Equal(t, 3, rows[0].TotalRuns)
}

func TestKeywordCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rule, err := db.CreateKeyword(ctx, &models.CreateKeywordRequest{
		Keyword:   "permission denied",
		AlertType: models.AlertTypeError,
		Severity:  3,
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.Equal(t, 3, rule.Severity)

	inactive := false
	updated, err := db.UpdateKeyword(ctx, rule.ID, &models.UpdateKeywordRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	// An update without severity keeps the stored value.
	assert.Equal(t, 3, updated.Severity)

	bumped := 7
	updated, err = db.UpdateKeyword(ctx, rule.ID, &models.UpdateKeywordRequest{Severity: &bumped})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Severity)

	all, err := db.ListKeywords(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	active, err := db.ListKeywords(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, db.DeleteKeyword(ctx, rule.ID))
	assert.ErrorIs(t, db.DeleteKeyword(ctx, rule.ID), ErrKeywordNotFound)
}

func TestAlertLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alert := &models.Alert{
		TaskID:    "backup-db",
		KeywordID: 1,
		Keyword:   "failed",
		AlertType: models.AlertTypeCritical,
		Severity:  9,
		Message:   "backup failed: disk full",
	}
	require.NoError(t, db.InsertAlert(ctx, alert))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", alert.ID.String())

	active, err := db.ListAlerts(ctx, "", models.AlertStatusActive, 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "backup failed: disk full", active[0].Message)
	assert.Equal(t, 9, active[0].Severity)

	require.NoError(t, db.AcknowledgeAlert(ctx, alert.ID))
	// Acknowledging twice fails because the alert left the active state.
	assert.ErrorIs(t, db.AcknowledgeAlert(ctx, alert.ID), ErrAlertNotFound)

	require.NoError(t, db.ResolveAlert(ctx, alert.ID))

	resolved, err := db.ListAlerts(ctx, "backup-db", models.AlertStatusResolved, 10, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.NotNil(t, resolved[0].AcknowledgedAt)
	assert.NotNil(t, resolved[0].ResolvedAt)
}

func TestUpsertServer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.UpsertServer(ctx, "srv-1", "Primary")
	require.NoError(t, err)
	assert.Equal(t, "Primary", first.DisplayName)

	// Second upsert keeps the row and bumps updated_at.
	second, err := db.UpsertServer(ctx, "srv-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Primary", second.DisplayName)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	servers, err := db.ListServers(ctx)
	require.NoError(t, err)
	assert.Len(t, servers, 1)
}
