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

// CreateKeyword adds a keyword rule. New rules are active immediately.
func (db *DB) CreateKeyword(ctx context.Context, req *models.CreateKeywordRequest) (*models.KeywordRule, error) {
	query := `INSERT INTO alert_keywords (keyword, alert_type, severity, is_active, created_at, updated_at)
		VALUES (?, ?, ?, true, ?, ?)
		RETURNING id`

	now := time.Now()
	var id int64
	if err := db.conn.QueryRowContext(ctx, query, req.Keyword, req.AlertType, req.Severity, now, now).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create keyword rule: %w", err)
	}

	return db.GetKeyword(ctx, id)
}

// GetKeyword retrieves a keyword rule by ID.
func (db *DB) GetKeyword(ctx context.Context, id int64) (*models.KeywordRule, error) {
	query := `SELECT id, keyword, alert_type, severity, is_active, created_at, updated_at
		FROM alert_keywords WHERE id = ?`

	var rule models.KeywordRule
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&rule.ID, &rule.Keyword, &rule.AlertType, &rule.Severity, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeywordNotFound
		}
		return nil, fmt.Errorf("failed to scan keyword rule: %w", err)
	}

	return &rule, nil
}

// ListKeywords retrieves keyword rules, optionally only active ones.
func (db *DB) ListKeywords(ctx context.Context, activeOnly bool) ([]models.KeywordRule, error) {
	query := `SELECT id, keyword, alert_type, severity, is_active, created_at, updated_at
		FROM alert_keywords`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword rules: %w", err)
	}
	defer closeWithLog(rows, "keyword rows")

	rules := []models.KeywordRule{}
	for rows.Next() {
		var rule models.KeywordRule
		if err := rows.Scan(
			&rule.ID, &rule.Keyword, &rule.AlertType, &rule.Severity, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan keyword rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword rules: %w", err)
	}

	return rules, nil
}

// UpdateKeyword applies a partial update to a keyword rule.
func (db *DB) UpdateKeyword(ctx context.Context, id int64, req *models.UpdateKeywordRequest) (*models.KeywordRule, error) {
	query := `UPDATE alert_keywords
		SET keyword = COALESCE(?, keyword),
			alert_type = COALESCE(?, alert_type),
			severity = COALESCE(?, severity),
			is_active = COALESCE(?, is_active),
			updated_at = ?
		WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query, req.Keyword, req.AlertType, req.Severity, req.IsActive, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update keyword rule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrKeywordNotFound
	}

	return db.GetKeyword(ctx, id)
}

// DeleteKeyword removes a keyword rule. Existing alerts keep their
// copied keyword text.
func (db *DB) DeleteKeyword(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM alert_keywords WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete keyword rule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrKeywordNotFound
	}
	return nil
}
