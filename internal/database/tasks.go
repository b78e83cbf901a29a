// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guardit/guardit/internal/models"
)

// RegisterTask creates a new backup task. New tasks are active so they
// can report status immediately.
func (db *DB) RegisterTask(ctx context.Context, req *models.RegisterTaskRequest) (*models.BackupTask, error) {
	now := time.Now()

	query := `INSERT INTO backup_tasks (
		task_id, display_name, task_type, description, server_id,
		is_active, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, true, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		req.TaskID, req.DisplayName, req.TaskType,
		nullIfEmpty(req.Description), nullIfEmpty(req.ServerID),
		now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrTaskIDConflict
		}
		return nil, fmt.Errorf("failed to register task: %w", err)
	}

	return db.GetTask(ctx, req.TaskID)
}

// GetTask retrieves a backup task by its task ID.
func (db *DB) GetTask(ctx context.Context, taskID string) (*models.BackupTask, error) {
	query := `SELECT
		task_id, display_name, task_type, description, server_id,
		is_active, created_at, updated_at, last_seen
	FROM backup_tasks WHERE task_id = ?`

	row := db.conn.QueryRowContext(ctx, query, taskID)
	return scanTask(row)
}

// ListTasks retrieves all backup tasks, optionally filtered by task
// type and server, newest first.
func (db *DB) ListTasks(ctx context.Context, taskType, serverID string) ([]models.BackupTask, error) {
	query := `SELECT
		task_id, display_name, task_type, description, server_id,
		is_active, created_at, updated_at, last_seen
	FROM backup_tasks WHERE 1=1`

	args := []any{}
	if taskType != "" {
		query += " AND task_type = ?"
		args = append(args, taskType)
	}
	if serverID != "" {
		query += " AND server_id = ?"
		args = append(args, serverID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer closeWithLog(rows, "task rows")

	tasks := []models.BackupTask{}
	for rows.Next() {
		task, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update. Nil fields keep the stored
// value, mirroring COALESCE semantics.
func (db *DB) UpdateTask(ctx context.Context, taskID string, req *models.UpdateTaskRequest) (*models.BackupTask, error) {
	query := `UPDATE backup_tasks
		SET display_name = COALESCE(?, display_name),
			description = COALESCE(?, description),
			task_type = COALESCE(?, task_type),
			server_id = COALESCE(?, server_id),
			is_active = COALESCE(?, is_active),
			updated_at = ?
		WHERE task_id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		req.DisplayName, req.Description, req.TaskType,
		req.ServerID, req.IsActive, time.Now(), taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrTaskNotFound
	}

	return db.GetTask(ctx, taskID)
}

// TouchTaskLastSeen updates last_seen to now. Called on every accepted
// status report.
func (db *DB) TouchTaskLastSeen(ctx context.Context, taskID string) error {
	query := `UPDATE backup_tasks SET last_seen = ? WHERE task_id = ?`

	res, err := db.conn.ExecContext(ctx, query, time.Now(), taskID)
	if err != nil {
		return fmt.Errorf("failed to update last_seen: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a task together with its history, metrics, and
// alerts in one transaction.
func (db *DB) DeleteTask(ctx context.Context, taskID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM backup_tasks WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrTaskNotFound
	}

	for _, query := range []string{
		`DELETE FROM status_history WHERE task_id = ?`,
		`DELETE FROM daily_metrics WHERE task_id = ?`,
		`DELETE FROM alerts WHERE task_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, taskID); err != nil {
			return fmt.Errorf("failed to delete task data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task deletion: %w", err)
	}
	return nil
}

func scanTask(row *sql.Row) (*models.BackupTask, error) {
	var task models.BackupTask
	var description, serverID sql.NullString
	var lastSeen sql.NullTime

	err := row.Scan(
		&task.TaskID, &task.DisplayName, &task.TaskType, &description, &serverID,
		&task.IsActive, &task.CreatedAt, &task.UpdatedAt, &lastSeen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Description = description.String
	task.ServerID = serverID.String
	if lastSeen.Valid {
		task.LastSeen = &lastSeen.Time
	}

	return &task, nil
}

func scanTaskRows(rows *sql.Rows) (*models.BackupTask, error) {
	var task models.BackupTask
	var description, serverID sql.NullString
	var lastSeen sql.NullTime

	err := rows.Scan(
		&task.TaskID, &task.DisplayName, &task.TaskType, &description, &serverID,
		&task.IsActive, &task.CreatedAt, &task.UpdatedAt, &lastSeen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Description = description.String
	task.ServerID = serverID.String
	if lastSeen.Valid {
		task.LastSeen = &lastSeen.Time
	}

	return &task, nil
}

// nullIfEmpty maps "" to NULL so optional text columns stay NULL
// instead of storing empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
