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

// UpsertServer creates a server row or refreshes updated_at on an
// existing one.
func (db *DB) UpsertServer(ctx context.Context, serverID, displayName string) (*models.Server, error) {
	now := time.Now()

	query := `INSERT INTO servers (server_id, display_name, is_active, created_at, updated_at)
		VALUES (?, ?, true, ?, ?)
		ON CONFLICT (server_id) DO UPDATE SET updated_at = EXCLUDED.updated_at`

	_, err := db.conn.ExecContext(ctx, query, serverID, nullIfEmpty(displayName), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert server: %w", err)
	}

	return db.GetServer(ctx, serverID)
}

// GetServer retrieves a server by its server ID.
func (db *DB) GetServer(ctx context.Context, serverID string) (*models.Server, error) {
	query := `SELECT server_id, display_name, description, is_active,
		created_at, updated_at, last_seen
	FROM servers WHERE server_id = ?`

	var server models.Server
	var displayName, description sql.NullString
	var lastSeen sql.NullTime

	err := db.conn.QueryRowContext(ctx, query, serverID).Scan(
		&server.ServerID, &displayName, &description, &server.IsActive,
		&server.CreatedAt, &server.UpdatedAt, &lastSeen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServerNotFound
		}
		return nil, fmt.Errorf("failed to scan server: %w", err)
	}

	server.DisplayName = displayName.String
	server.Description = description.String
	if lastSeen.Valid {
		server.LastSeen = &lastSeen.Time
	}

	return &server, nil
}

// ListServers retrieves all servers, most recently updated first.
func (db *DB) ListServers(ctx context.Context) ([]models.Server, error) {
	query := `SELECT server_id, display_name, description, is_active,
		created_at, updated_at, last_seen
	FROM servers ORDER BY updated_at DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer closeWithLog(rows, "server rows")

	servers := []models.Server{}
	for rows.Next() {
		var server models.Server
		var displayName, description sql.NullString
		var lastSeen sql.NullTime

		if err := rows.Scan(
			&server.ServerID, &displayName, &description, &server.IsActive,
			&server.CreatedAt, &server.UpdatedAt, &lastSeen,
		); err != nil {
			return nil, fmt.Errorf("failed to scan server: %w", err)
		}

		server.DisplayName = displayName.String
		server.Description = description.String
		if lastSeen.Valid {
			server.LastSeen = &lastSeen.Time
		}
		servers = append(servers, server)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating servers: %w", err)
	}

	return servers, nil
}

// TouchServerLastSeen updates last_seen to now.
func (db *DB) TouchServerLastSeen(ctx context.Context, serverID string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE servers SET last_seen = ? WHERE server_id = ?`, time.Now(), serverID)
	if err != nil {
		return fmt.Errorf("failed to update server last_seen: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrServerNotFound
	}
	return nil
}

// DeleteServer removes a server. Tasks referencing it keep their
// server_id; the reference simply dangles until the task is updated.
func (db *DB) DeleteServer(ctx context.Context, serverID string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM servers WHERE server_id = ?`, serverID)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrServerNotFound
	}
	return nil
}
