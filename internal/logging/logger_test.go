// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("task_id", "backup-db-01").Msg("status report accepted")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"task_id":"backup-db-01"`)
	assert.Contains(t, out, `"message":"status report accepted"`)
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("should be filtered")
	assert.Empty(t, buf.String())

	Error().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Msg("captured")
	assert.Contains(t, buf.String(), "captured")
}

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	slogger := NewSlogLogger()
	slogger.Info("supervisor event", slog.String("service", "broadcast-hub"), slog.Int("restarts", 2))

	out := buf.String()
	assert.Contains(t, out, `"service":"broadcast-hub"`)
	assert.Contains(t, out, `"restarts":2`)
	assert.Contains(t, out, "supervisor event")
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	slogger := NewSlogLogger().With(slog.String("component", "warmup"))
	slogger.Warn("schema init retried")

	assert.Contains(t, buf.String(), `"component":"warmup"`)
}

func TestSlogLevelMapping(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, slogToZerologLevel(slog.LevelDebug))
	assert.Equal(t, zerolog.InfoLevel, slogToZerologLevel(slog.LevelInfo))
	assert.Equal(t, zerolog.WarnLevel, slogToZerologLevel(slog.LevelWarn))
	assert.Equal(t, zerolog.ErrorLevel, slogToZerologLevel(slog.LevelError))
}

func TestConsoleFormatDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("k", "v").Msg("console line")
	assert.True(t, strings.Contains(buf.String(), "console line"))
}
