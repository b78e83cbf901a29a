// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// InitSchema creates all tables and indexes. Idempotent; every
// statement uses IF NOT EXISTS so restarts are safe.
func (db *DB) InitSchema() error {
	if err := db.createTables(); err != nil {
		return err
	}
	return db.createIndexes()
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements.
// Referential cleanup (task deletion removing history, metrics, and
// alerts) happens transactionally in Go because DuckDB does not support
// ON DELETE CASCADE.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS servers (
			server_id TEXT PRIMARY KEY,
			display_name TEXT,
			description TEXT,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_seen TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS backup_tasks (
			task_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			task_type TEXT NOT NULL,
			description TEXT,
			server_id TEXT,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_seen TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS status_history (
			id UUID PRIMARY KEY,
			task_id TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			progress INTEGER,
			data TEXT,
			timestamp TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS daily_metrics (
			task_id TEXT NOT NULL,
			date DATE NOT NULL,
			total_runs INTEGER DEFAULT 0,
			successful_runs INTEGER DEFAULT 0,
			failed_runs INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (task_id, date)
		)`,

		`CREATE SEQUENCE IF NOT EXISTS alert_keywords_seq`,

		`CREATE TABLE IF NOT EXISTS alert_keywords (
			id BIGINT PRIMARY KEY DEFAULT nextval('alert_keywords_seq'),
			keyword TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id UUID PRIMARY KEY,
			task_id TEXT NOT NULL,
			keyword_id BIGINT NOT NULL,
			keyword TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			acknowledged_at TIMESTAMP,
			resolved_at TIMESTAMP
		)`,
	}
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_status_history_task_id ON status_history(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_timestamp ON status_history(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_metrics_task_id ON daily_metrics(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_metrics_date ON daily_metrics(date)`,
		`CREATE INDEX IF NOT EXISTS idx_backup_tasks_server_id ON backup_tasks(server_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_task_id ON alerts(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
