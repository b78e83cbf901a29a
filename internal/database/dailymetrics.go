// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guardit/guardit/internal/metrics"
	"github.com/guardit/guardit/internal/models"
)

// DateFormat is the canonical day key for daily metrics.
const DateFormat = "2006-01-02"

// RecomputeDailyMetric recalculates the metric row for (taskID, date)
// from status_history and upserts it. Recomputing from scratch instead
// of incrementing makes the operation idempotent: replays and retries
// converge on the same counts.
func (db *DB) RecomputeDailyMetric(ctx context.Context, taskID, date string) (*models.DailyMetric, error) {
	// Event timestamps are stored in UTC, so the default day key must
	// be UTC too or a recompute near midnight targets the wrong row.
	if date == "" {
		date = time.Now().UTC().Format(DateFormat)
	}

	countQuery := `SELECT
		COUNT(*) AS total_runs,
		COUNT(CASE WHEN status = 'completed' THEN 1 END) AS successful_runs,
		COUNT(CASE WHEN status IN ('failed', 'error') THEN 1 END) AS failed_runs
	FROM status_history
	WHERE task_id = ? AND DATE(timestamp) = ?`

	var total, successful, failed int
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, countQuery, taskID, date).Scan(&total, &successful, &failed)
	metrics.RecordDBQuery("SELECT", "daily_metrics", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count history for daily metric: %w", err)
	}

	upsert := `INSERT INTO daily_metrics (task_id, date, total_runs, successful_runs, failed_runs, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (task_id, date) DO UPDATE SET
			total_runs = EXCLUDED.total_runs,
			successful_runs = EXCLUDED.successful_runs,
			failed_runs = EXCLUDED.failed_runs,
			created_at = CURRENT_TIMESTAMP`

	start = time.Now()
	_, err = db.conn.ExecContext(ctx, upsert, taskID, date, total, successful, failed)
	metrics.RecordDBQuery("UPSERT", "daily_metrics", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily metric: %w", err)
	}

	return &models.DailyMetric{
		TaskID:         taskID,
		Date:           date,
		TotalRuns:      total,
		SuccessfulRuns: successful,
		FailedRuns:     failed,
	}, nil
}

// GetMetricsByDateRange returns daily metrics for [startDate, endDate]
// in ascending date order. Dates use the YYYY-MM-DD format.
func (db *DB) GetMetricsByDateRange(ctx context.Context, taskID, startDate, endDate string) ([]models.DailyMetric, error) {
	query := `SELECT task_id, date, total_runs, successful_runs, failed_runs, created_at
		FROM daily_metrics
		WHERE task_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC`

	rows, err := db.conn.QueryContext(ctx, query, taskID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	defer closeWithLog(rows, "daily metric rows")

	return collectDailyMetrics(rows)
}

// GetLastMonthMetrics returns the trailing 30 days of metrics in
// ascending date order.
func (db *DB) GetLastMonthMetrics(ctx context.Context, taskID string) ([]models.DailyMetric, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	return db.GetMetricsByDateRange(ctx, taskID, start.Format(DateFormat), end.Format(DateFormat))
}

func collectDailyMetrics(rows *sql.Rows) ([]models.DailyMetric, error) {
	out := []models.DailyMetric{}
	for rows.Next() {
		var m models.DailyMetric
		var date time.Time

		if err := rows.Scan(&m.TaskID, &date, &m.TotalRuns, &m.SuccessfulRuns, &m.FailedRuns, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily metric: %w", err)
		}

		m.Date = date.Format(DateFormat)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily metrics: %w", err)
	}

	return out, nil
}
