// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package models

import "time"

// Server is a physical or virtual host that groups backup tasks.
type Server struct {
	ServerID    string     `json:"server_id"`
	DisplayName string     `json:"display_name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
}

// BackupTask is a registered backup job. Status reports are only accepted
// for tasks that exist and are active; LastSeen is touched on every
// accepted report.
type BackupTask struct {
	TaskID      string     `json:"task_id"`
	DisplayName string     `json:"display_name"`
	TaskType    string     `json:"task_type"`
	Description string     `json:"description,omitempty"`
	ServerID    string     `json:"server_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
}

// RegisterTaskRequest is the body for task registration.
type RegisterTaskRequest struct {
	TaskID      string `json:"task_id" validate:"required,min=1,max=255"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=255"`
	TaskType    string `json:"task_type" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ServerID    string `json:"server_id" validate:"max=255"`
}

// UpdateTaskRequest is the body for task updates. Nil fields keep the
// stored value, mirroring the COALESCE update semantics of the registry.
type UpdateTaskRequest struct {
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	TaskType    *string `json:"task_type"`
	ServerID    *string `json:"server_id"`
	IsActive    *bool   `json:"is_active"`
}
