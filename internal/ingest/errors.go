// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package ingest

import "errors"

// Ingestion rejections. Anything that goes wrong after the registry
// check is a warning, not an error: the report is still accepted and
// the snapshot still reaches dashboards.
var (
	// ErrUnregisteredTask rejects reports for task IDs with no
	// registration. Maps to HTTP 404.
	ErrUnregisteredTask = errors.New("task is not registered")

	// ErrInactiveTask rejects reports for tasks that were deactivated.
	// Maps to HTTP 403.
	ErrInactiveTask = errors.New("task is inactive")

	// ErrRegistryUnavailable rejects reports when the registry lookup
	// itself failed, so the report could not be authorized. Maps to
	// HTTP 500.
	ErrRegistryUnavailable = errors.New("task registry unavailable")
)
