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

	"github.com/google/uuid"

	"github.com/guardit/guardit/internal/models"
)

// InsertAlert persists a generated alert. The ID is generated here if
// the caller did not set one.
func (db *DB) InsertAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusActive
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	query := `INSERT INTO alerts (id, task_id, keyword_id, keyword, alert_type, severity, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		alert.ID.String(), alert.TaskID, alert.KeywordID, alert.Keyword,
		alert.AlertType, alert.Severity, nullIfEmpty(alert.Message), alert.Status, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// ListAlerts retrieves alerts newest first, optionally filtered by task
// and lifecycle status.
func (db *DB) ListAlerts(ctx context.Context, taskID, status string, limit, offset int) ([]models.Alert, error) {
	query := `SELECT id, task_id, keyword_id, keyword, alert_type, severity, message, status,
		created_at, acknowledged_at, resolved_at
	FROM alerts WHERE 1=1`

	args := []any{}
	if taskID != "" {
		query += " AND task_id = ?"
		args = append(args, taskID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer closeWithLog(rows, "alert rows")

	alerts := []models.Alert{}
	for rows.Next() {
		alert, err := scanAlertRows(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}

// AcknowledgeAlert moves an active alert to acknowledged.
func (db *DB) AcknowledgeAlert(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE alerts
		SET status = ?, acknowledged_at = ?
		WHERE id = ? AND status = ?`

	res, err := db.conn.ExecContext(ctx, query,
		models.AlertStatusAcknowledged, time.Now(), id.String(), models.AlertStatusActive)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ResolveAlert moves an alert to resolved from either active or
// acknowledged.
func (db *DB) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE alerts
		SET status = ?, resolved_at = ?
		WHERE id = ? AND status IN (?, ?)`

	res, err := db.conn.ExecContext(ctx, query,
		models.AlertStatusResolved, time.Now(), id.String(),
		models.AlertStatusActive, models.AlertStatusAcknowledged)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func scanAlertRows(rows *sql.Rows) (*models.Alert, error) {
	var alert models.Alert
	var id string
	var message sql.NullString
	var acknowledgedAt, resolvedAt sql.NullTime

	err := rows.Scan(
		&id, &alert.TaskID, &alert.KeywordID, &alert.Keyword, &alert.AlertType,
		&alert.Severity, &message, &alert.Status, &alert.CreatedAt, &acknowledgedAt, &resolvedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid alert id %q: %w", id, err)
	}
	alert.ID = parsed
	alert.Message = message.String
	if acknowledgedAt.Valid {
		alert.AcknowledgedAt = &acknowledgedAt.Time
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}

	return &alert, nil
}
