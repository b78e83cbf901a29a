// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package broadcast fans out realtime events to connected dashboards
// over SSE and WebSocket transports.
package broadcast

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/guardit/guardit/internal/models"
)

// Event types pushed to dashboards.
const (
	EventConnected         = "connected"
	EventInitial           = "initial"
	EventUpdate            = "update"
	EventAlertNotification = "alert_notification"
	EventClearAll          = "clear_all"
)

// Event is a pre-marshaled realtime message. Payload is the complete
// JSON object including the type field, marshaled once at construction
// so the hub fans out bytes instead of re-encoding per subscriber.
type Event struct {
	Type    string
	Payload []byte
}

type connectedPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type initialPayload struct {
	Type     string                           `json:"type"`
	Statuses map[string]models.StatusSnapshot `json:"statuses"`
}

type updatePayload struct {
	Type   string                 `json:"type"`
	TaskID string                 `json:"taskId"`
	Status *models.StatusSnapshot `json:"status"`
}

type alertPayload struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"taskId"`
	TaskName  string    `json:"taskName"`
	Keyword   string    `json:"keyword"`
	AlertType string    `json:"alertType"`
	Severity  int       `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type clearAllPayload struct {
	Type string `json:"type"`
}

// NewConnectedEvent greets a freshly connected subscriber.
func NewConnectedEvent() (Event, error) {
	return marshalEvent(EventConnected, connectedPayload{
		Type:    EventConnected,
		Message: "SSE connection established",
	})
}

// NewInitialEvent carries the full current status map so a new
// subscriber can render without waiting for updates.
func NewInitialEvent(statuses map[string]models.StatusSnapshot) (Event, error) {
	if statuses == nil {
		statuses = map[string]models.StatusSnapshot{}
	}
	return marshalEvent(EventInitial, initialPayload{
		Type:     EventInitial,
		Statuses: statuses,
	})
}

// NewUpdateEvent announces a task's new snapshot. A nil snapshot means
// the task's status was deleted; the status field is explicitly null so
// dashboards can drop the entry.
func NewUpdateEvent(taskID string, snap *models.StatusSnapshot) (Event, error) {
	return marshalEvent(EventUpdate, updatePayload{
		Type:   EventUpdate,
		TaskID: taskID,
		Status: snap,
	})
}

// NewAlertNotificationEvent escalates an alert to dashboards.
func NewAlertNotificationEvent(n models.AlertNotification) (Event, error) {
	return marshalEvent(EventAlertNotification, alertPayload{
		Type:      EventAlertNotification,
		TaskID:    n.TaskID,
		TaskName:  n.TaskName,
		Keyword:   n.Keyword,
		AlertType: n.AlertType,
		Severity:  n.Severity,
		Message:   n.Message,
		Timestamp: n.Timestamp,
	})
}

// NewClearAllEvent tells dashboards to drop every status.
func NewClearAllEvent() (Event, error) {
	return marshalEvent(EventClearAll, clearAllPayload{Type: EventClearAll})
}

func marshalEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: data}, nil
}
