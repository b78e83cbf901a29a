// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package broadcast

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardit/guardit/internal/models"
)

func TestNewUpdateEventNullStatusOnDelete(t *testing.T) {
	event, err := NewUpdateEvent("backup-db", nil)
	require.NoError(t, err)
	assert.Equal(t, EventUpdate, event.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, "update", decoded["type"])
	assert.Equal(t, "backup-db", decoded["taskId"])

	// Deletions broadcast an explicit null, not an absent key.
	status, present := decoded["status"]
	assert.True(t, present)
	assert.Nil(t, status)
}

func TestNewUpdateEventCarriesSnapshot(t *testing.T) {
	snap := models.NewSnapshot(models.StatusReport{
		Status:   models.StatusCompleted,
		Message:  "backup finished",
		Progress: 100,
	}, time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC))

	event, err := NewUpdateEvent("backup-db", &snap)
	require.NoError(t, err)

	var decoded struct {
		Status struct {
			Status     string `json:"status"`
			Progress   int    `json:"progress"`
			LastUpdate string `json:"lastUpdate"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, models.StatusCompleted, decoded.Status.Status)
	assert.Equal(t, 100, decoded.Status.Progress)
	assert.Equal(t, "3/14/2026, 3:09:26 PM", decoded.Status.LastUpdate)
}

func TestNewInitialEventEmptyMap(t *testing.T) {
	event, err := NewInitialEvent(nil)
	require.NoError(t, err)

	// A nil cache must serialize as an empty object, never null.
	assert.JSONEq(t, `{"type":"initial","statuses":{}}`, string(event.Payload))
}

func TestNewConnectedEvent(t *testing.T) {
	event, err := NewConnectedEvent()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"connected","message":"SSE connection established"}`, string(event.Payload))
}

func TestNewAlertNotificationEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	event, err := NewAlertNotificationEvent(models.AlertNotification{
		TaskID:    "backup-db",
		TaskName:  "Database Backup",
		Keyword:   "permission denied",
		AlertType: models.AlertTypeCritical,
		Severity:  9,
		Message:   "rsync: permission denied on /var/lib",
		Timestamp: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, EventAlertNotification, event.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, "alert_notification", decoded["type"])
	assert.Equal(t, "backup-db", decoded["taskId"])
	assert.Equal(t, "Database Backup", decoded["taskName"])
	assert.Equal(t, "permission denied", decoded["keyword"])
	assert.Equal(t, "critical", decoded["alertType"])
	assert.Equal(t, float64(9), decoded["severity"])
}
