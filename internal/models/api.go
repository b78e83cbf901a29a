// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package models

import (
	"time"
)

// APIResponse is the standardized wrapper returned by read endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"backup-db": {"status": "completed", "progress": 100}},
//	  "metadata": {
//	    "timestamp": "2026-08-31T12:00:00Z",
//	    "query_time_ms": 4
//	  }
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability. QueryTimeMS is
// the database execution time in milliseconds and is 0 for responses
// served from the in-memory status cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a structured error payload.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - UNREGISTERED_TASK: Status report for an unknown task ID
//   - INACTIVE_TASK: Status report for a deactivated task
//   - NOT_FOUND: Resource doesn't exist
//   - DATABASE_ERROR: Query execution failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AckResponse is the minimal body returned by mutation endpoints that
// only need to confirm the write.
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of the health endpoint. Uptime is whole
// seconds since process start.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Uptime        float64   `json:"uptime"`
	DatabaseReady bool      `json:"database_ready"`
	Subscribers   int       `json:"connectedClients"`
	TrackedTasks  int       `json:"trackedServers"`
	Version       string    `json:"version,omitempty"`
}
