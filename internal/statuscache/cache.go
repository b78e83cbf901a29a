// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package statuscache holds the latest status snapshot per task in
// memory. It is the authoritative source for dashboard reads and keeps
// working through database outages.
package statuscache

import (
	"sync"

	"github.com/guardit/guardit/internal/models"
)

// Cache is a thread-safe map of task ID to latest status snapshot.
// Snapshots are overwritten unconditionally on every accepted report,
// so the cache always reflects the most recent write regardless of
// report ordering or status value.
type Cache struct {
	mu        sync.RWMutex
	snapshots map[string]models.StatusSnapshot
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		snapshots: make(map[string]models.StatusSnapshot),
	}
}

// Get returns the snapshot for a task, if present.
func (c *Cache) Get(taskID string) (models.StatusSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.snapshots[taskID]
	return snap, ok
}

// GetAll returns a copy of the full task-to-snapshot map. The copy is
// safe to serialize without holding the cache lock.
func (c *Cache) GetAll() map[string]models.StatusSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]models.StatusSnapshot, len(c.snapshots))
	for id, snap := range c.snapshots {
		out[id] = snap
	}
	return out
}

// Set stores the snapshot for a task, replacing any previous one.
func (c *Cache) Set(taskID string, snap models.StatusSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots[taskID] = snap
}

// Remove deletes the snapshot for a task. Returns whether an entry
// existed.
func (c *Cache) Remove(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.snapshots[taskID]
	delete(c.snapshots, taskID)
	return ok
}

// Clear removes all snapshots and returns how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.snapshots)
	c.snapshots = make(map[string]models.StatusSnapshot)
	return n
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.snapshots)
}
