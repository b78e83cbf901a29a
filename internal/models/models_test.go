// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotDefaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	snap := NewSnapshot(StatusReport{}, now)

	assert.Equal(t, StatusUnknown, snap.Status)
	assert.Equal(t, "", snap.Message)
	assert.Equal(t, 0, snap.Progress)
	assert.Nil(t, snap.Data)
	assert.Equal(t, now, snap.Timestamp)
	assert.Equal(t, "3/14/2026, 3:09:26 PM", snap.LastUpdate)
}

func TestNewSnapshotPreservesFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := json.RawMessage(`{"bytes":1024}`)

	snap := NewSnapshot(StatusReport{
		Status:   StatusRunning,
		Message:  "copying files",
		Progress: 42,
		Data:     raw,
	}, now)

	assert.Equal(t, StatusRunning, snap.Status)
	assert.Equal(t, "copying files", snap.Message)
	assert.Equal(t, 42, snap.Progress)
	require.NotNil(t, snap.Data)
	assert.JSONEq(t, `{"bytes":1024}`, string(snap.Data))
}

func TestIsTerminalStatus(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusError, true},
		{StatusRunning, false},
		{StatusWarning, false},
		{StatusUnknown, false},
		{"COMPLETED", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.terminal, IsTerminalStatus(tt.status), "status %q", tt.status)
	}
}

func TestIsEscalatingAlertType(t *testing.T) {
	assert.True(t, IsEscalatingAlertType(AlertTypeError))
	assert.True(t, IsEscalatingAlertType(AlertTypeCritical))
	assert.False(t, IsEscalatingAlertType(AlertTypeWarning))
	assert.False(t, IsEscalatingAlertType(AlertTypeInfo))
	assert.False(t, IsEscalatingAlertType(""))
}
