// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package services provides suture.Service wrappers for GuardIT's
// long-running components.
//
// Each wrapper adapts a component's lifecycle to suture's Serve(ctx)
// pattern so that the supervisor tree can restart it on failure:
//
//   - WarmupService: database schema creation and readiness gate (data layer)
//   - HubService: broadcast hub for SSE and WebSocket fan-out (messaging layer)
//   - HTTPServerService: the HTTP API server (api layer)
//
// The wrappers depend on small local interfaces rather than the concrete
// component packages, which keeps the dependency graph acyclic and makes
// the wrappers trivially testable with fakes.
package services
