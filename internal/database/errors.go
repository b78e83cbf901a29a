// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/guardit/guardit/internal/logging"
)

// Sentinel errors returned by data access methods. Callers map these to
// HTTP status codes at the API boundary.
var (
	ErrTaskNotFound    = errors.New("backup task not found")
	ErrTaskIDConflict  = errors.New("task with this task_id already exists")
	ErrServerNotFound  = errors.New("server not found")
	ErrKeywordNotFound = errors.New("keyword rule not found")
	ErrAlertNotFound   = errors.New("alert not found")
)

// closeWithLog closes a resource and logs any error. Use for cleanup
// where errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error. Use
// in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isUniqueConstraintError checks if an error is a unique constraint
// violation. DuckDB error messages contain "UNIQUE constraint" or
// "Duplicate key".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}
