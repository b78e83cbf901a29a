// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package ingest

import (
	"context"
	"sync"
	"sync/atomic"
)

// StoreGate separates accepting traffic from having a warm store.
// The HTTP server starts immediately; the gate flips once schema
// initialization finishes. Until then the pipeline runs degraded,
// serving cache and broadcast without persistence.
type StoreGate struct {
	ready atomic.Bool
	once  sync.Once
	ch    chan struct{}
}

// NewStoreGate returns a gate in the not-ready state.
func NewStoreGate() *StoreGate {
	return &StoreGate{ch: make(chan struct{})}
}

// SetReady marks the store as warm. Safe to call more than once.
func (g *StoreGate) SetReady() {
	g.once.Do(func() {
		g.ready.Store(true)
		close(g.ch)
	})
}

// Ready reports whether the store is warm.
func (g *StoreGate) Ready() bool {
	return g.ready.Load()
}

// WaitReady blocks until the store is warm or the context ends.
func (g *StoreGate) WaitReady(ctx context.Context) error {
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
