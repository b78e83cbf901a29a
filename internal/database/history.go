// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guardit/guardit/internal/metrics"
	"github.com/guardit/guardit/internal/models"
)

// AppendStatusEvent inserts one immutable history row for an accepted
// status report. The event ID is generated here; callers get it back
// on the returned event.
func (db *DB) AppendStatusEvent(ctx context.Context, event *models.StatusEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var data any
	if len(event.Data) > 0 {
		data = string(event.Data)
	}

	query := `INSERT INTO status_history (id, task_id, status, message, progress, data, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		event.ID.String(), event.TaskID, event.Status,
		nullIfEmpty(event.Message), event.Progress, data, event.Timestamp,
	)
	metrics.RecordDBQuery("INSERT", "status_history", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to append status event: %w", err)
	}

	return nil
}

// GetHistory returns history rows for a task, newest first.
func (db *DB) GetHistory(ctx context.Context, taskID string, limit, offset int) ([]models.StatusEvent, error) {
	query := `SELECT id, task_id, status, message, progress, data, timestamp
		FROM status_history
		WHERE task_id = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, taskID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer closeWithLog(rows, "history rows")

	return collectStatusEvents(rows)
}

// GetHistoryByDateRange returns history rows within [start, end],
// newest first, capped at limit.
func (db *DB) GetHistoryByDateRange(ctx context.Context, taskID string, start, end time.Time, limit int) ([]models.StatusEvent, error) {
	query := `SELECT id, task_id, status, message, progress, data, timestamp
		FROM status_history
		WHERE task_id = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp DESC
		LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, taskID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history by date range: %w", err)
	}
	defer closeWithLog(rows, "history rows")

	return collectStatusEvents(rows)
}

// GetLatestEvent returns the most recent history row for a task.
func (db *DB) GetLatestEvent(ctx context.Context, taskID string) (*models.StatusEvent, error) {
	query := `SELECT id, task_id, status, message, progress, data, timestamp
		FROM status_history
		WHERE task_id = ?
		ORDER BY timestamp DESC
		LIMIT 1`

	rows, err := db.conn.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest event: %w", err)
	}
	defer closeWithLog(rows, "history rows")

	events, err := collectStatusEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, sql.ErrNoRows
	}
	return &events[0], nil
}

// StatusCount is one row of a per-status aggregation.
type StatusCount struct {
	Status      string  `json:"status"`
	Count       int     `json:"count"`
	AvgProgress float64 `json:"avg_progress"`
}

// GetTodaysSummary groups today's history rows by status.
func (db *DB) GetTodaysSummary(ctx context.Context, taskID string) ([]StatusCount, error) {
	query := `SELECT status, COUNT(*) AS count, COALESCE(AVG(progress), 0) AS avg_progress
		FROM status_history
		WHERE task_id = ? AND DATE(timestamp) = CURRENT_DATE
		GROUP BY status`

	rows, err := db.conn.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's summary: %w", err)
	}
	defer closeWithLog(rows, "summary rows")

	counts := []StatusCount{}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count, &sc.AvgProgress); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}

	return counts, nil
}

// GetTaskStats returns lifetime aggregate statistics for a task.
// Failed counts both "failed" and "error" terminal statuses.
func (db *DB) GetTaskStats(ctx context.Context, taskID string) (*models.TaskStats, error) {
	query := `SELECT
		COUNT(*) AS total_events,
		COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed,
		COUNT(CASE WHEN status IN ('failed', 'error') THEN 1 END) AS failed,
		COUNT(CASE WHEN status = 'running' THEN 1 END) AS running,
		COUNT(CASE WHEN status = 'warning' THEN 1 END) AS warning,
		MIN(timestamp) AS first_event,
		MAX(timestamp) AS last_event
	FROM status_history
	WHERE task_id = ?`

	var stats models.TaskStats
	var first, last sql.NullTime

	err := db.conn.QueryRowContext(ctx, query, taskID).Scan(
		&stats.TotalEvents, &stats.Completed, &stats.Failed,
		&stats.Running, &stats.Warning, &first, &last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query task stats: %w", err)
	}

	if first.Valid {
		stats.FirstEvent = &first.Time
	}
	if last.Valid {
		stats.LastEvent = &last.Time
	}

	return &stats, nil
}

func collectStatusEvents(rows *sql.Rows) ([]models.StatusEvent, error) {
	events := []models.StatusEvent{}
	for rows.Next() {
		var event models.StatusEvent
		var id string
		var message sql.NullString
		var progress sql.NullInt64
		var data sql.NullString

		if err := rows.Scan(&id, &event.TaskID, &event.Status, &message, &progress, &data, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan status event: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", id, err)
		}
		event.ID = parsed
		event.Message = message.String
		event.Progress = int(progress.Int64)
		if data.Valid && data.String != "" {
			event.Data = json.RawMessage(data.String)
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status events: %w", err)
	}

	return events, nil
}
