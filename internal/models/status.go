// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package models defines the shared data types for GuardIT: status
// snapshots and events, daily metrics, keyword rules, alerts, and the
// API response envelope.
package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Well-known status tokens reported by backup scripts. The set is open:
// unknown tokens are stored and broadcast as-is, they just never trigger
// metric recomputation.
const (
	StatusUnknown   = "unknown"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusError     = "error"
	StatusWarning   = "warning"
	StatusNoData    = "no_data"
)

// IsTerminalStatus reports whether a status marks the end of a backup run.
// Terminal statuses trigger daily metric recomputation.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusError:
		return true
	default:
		return false
	}
}

// StatusReport is the body of a status push from a backup script.
// All fields are optional; defaults are applied by NewSnapshot.
// Progress is deliberately unconstrained, scripts count whatever they
// like (percent, bytes, files).
type StatusReport struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Progress int             `json:"progress"`
	Data     json.RawMessage `json:"data"`
}

// StatusSnapshot is the most recent status of a task, held only in the
// in-memory status cache. Each accepted report fully replaces the previous
// snapshot; readers always receive copies.
type StatusSnapshot struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Progress int             `json:"progress"`
	Data     json.RawMessage `json:"data"`
	// Timestamp is the server-assigned ingestion time (RFC3339 UTC).
	Timestamp time.Time `json:"timestamp"`
	// LastUpdate is a human-readable rendering of Timestamp for dashboards.
	LastUpdate string `json:"lastUpdate"`
}

// NewSnapshot builds a snapshot from a report, applying the defaulting
// rules: missing status becomes "unknown", missing message the empty
// string, missing progress 0, missing data null.
func NewSnapshot(report StatusReport, now time.Time) StatusSnapshot {
	status := report.Status
	if status == "" {
		status = StatusUnknown
	}
	return StatusSnapshot{
		Status:     status,
		Message:    report.Message,
		Progress:   report.Progress,
		Data:       report.Data,
		Timestamp:  now.UTC(),
		LastUpdate: now.Format("1/2/2006, 3:04:05 PM"),
	}
}

// StatusEvent is a durably persisted historical status report. Events are
// append-only and never mutated after insert.
type StatusEvent struct {
	ID        uuid.UUID       `json:"id"`
	TaskID    string          `json:"task_id"`
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Progress  int             `json:"progress"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// DailyMetric is the per-day aggregate for a task. It is recomputed
// wholesale from that day's status events on every terminal event, so
// re-running the aggregation is idempotent rather than additive.
type DailyMetric struct {
	TaskID         string    `json:"task_id"`
	Date           string    `json:"date"` // YYYY-MM-DD
	TotalRuns      int       `json:"total_runs"`
	SuccessfulRuns int       `json:"successful_runs"`
	FailedRuns     int       `json:"failed_runs"`
	CreatedAt      time.Time `json:"created_at"`
}

// TaskStats summarizes the full status history of one task.
type TaskStats struct {
	TotalEvents int        `json:"total_events"`
	Completed   int        `json:"completed"`
	Failed      int        `json:"failed"`
	Running     int        `json:"running"`
	Warning     int        `json:"warning"`
	FirstEvent  *time.Time `json:"first_event,omitempty"`
	LastEvent   *time.Time `json:"last_event,omitempty"`
}
