// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert lifecycle states.
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert severity classes carried on keyword rules. Matches on rules of
// type error or critical additionally escalate through the realtime
// broadcast channel.
const (
	AlertTypeInfo     = "info"
	AlertTypeWarning  = "warning"
	AlertTypeError    = "error"
	AlertTypeCritical = "critical"
)

// IsEscalatingAlertType reports whether alerts of the given type are
// pushed to connected dashboards in addition to being persisted.
func IsEscalatingAlertType(alertType string) bool {
	return alertType == AlertTypeError || alertType == AlertTypeCritical
}

// KeywordRule is a case-insensitive substring pattern matched against
// incoming status messages. Every matching rule yields one alert.
type KeywordRule struct {
	ID        int64     `json:"id"`
	Keyword   string    `json:"keyword"`
	AlertType string    `json:"alert_type"`
	Severity  int       `json:"severity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateKeywordRequest is the body for keyword rule creation.
// Severity is an ordering hint for consumers; higher is more urgent.
type CreateKeywordRequest struct {
	Keyword   string `json:"keyword" validate:"required,min=1,max=255"`
	AlertType string `json:"alert_type" validate:"required,oneof=info warning error critical"`
	Severity  int    `json:"severity" validate:"gte=0"`
}

// UpdateKeywordRequest is the body for keyword rule updates.
type UpdateKeywordRequest struct {
	Keyword   *string `json:"keyword" validate:"omitempty,min=1,max=255"`
	AlertType *string `json:"alert_type" validate:"omitempty,oneof=info warning error critical"`
	Severity  *int    `json:"severity" validate:"omitempty,gte=0"`
	IsActive  *bool   `json:"is_active"`
}

// Alert records a keyword match against a task's status message.
type Alert struct {
	ID             uuid.UUID  `json:"id"`
	TaskID         string     `json:"task_id"`
	KeywordID      int64      `json:"keyword_id"`
	Keyword        string     `json:"keyword"`
	AlertType      string     `json:"alert_type"`
	Severity       int        `json:"severity"`
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// AlertNotification is the realtime payload pushed to dashboards when
// an escalating alert fires. TaskName is the task's display name from
// the registry so dashboards can label the alert without a lookup.
type AlertNotification struct {
	TaskID    string    `json:"task_id"`
	TaskName  string    `json:"task_name"`
	Keyword   string    `json:"keyword"`
	AlertType string    `json:"alert_type"`
	Severity  int       `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
