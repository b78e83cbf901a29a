// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package services

import (
	"context"
)

// ContextHub interface matches *broadcast.Hub's RunWithContext method.
//
// This interface allows the HubService to work with the hub without
// importing the broadcast package, avoiding circular dependencies.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService wraps the broadcast hub as a supervised service.
//
// The hub's RunWithContext method already implements the suture.Service
// pattern, so this wrapper simply delegates to it and provides a name
// for logging.
//
// Example usage:
//
//	hub := broadcast.NewHub()
//	svc := services.NewHubService(hub)
//	tree.AddMessagingService(svc)
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService creates a new broadcast hub service wrapper.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{
		hub:  hub,
		name: "broadcast-hub",
	}
}

// Serve implements suture.Service.
//
// This method delegates to hub.RunWithContext which:
//  1. Processes subscriber registration and event fan-out
//  2. Returns when the context is canceled
//  3. Gracefully closes all subscriber channels on shutdown
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *HubService) String() string {
	return s.name
}
