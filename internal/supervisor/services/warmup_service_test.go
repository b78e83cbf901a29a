// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockSchemaStore struct {
	initErr   error
	initCount atomic.Int32
}

func (m *mockSchemaStore) InitSchema() error {
	m.initCount.Add(1)
	return m.initErr
}

type mockGate struct {
	readyCount atomic.Int32
}

func (m *mockGate) SetReady() {
	m.readyCount.Add(1)
}

type mockRuleLoader struct {
	reloadErr   error
	reloadCount atomic.Int32
}

func (m *mockRuleLoader) ReloadRules(ctx context.Context) error {
	m.reloadCount.Add(1)
	return m.reloadErr
}

func TestWarmupService_Interface(t *testing.T) {
	var _ suture.Service = (*WarmupService)(nil)
}

func TestWarmupService_Serve(t *testing.T) {
	t.Run("initializes schema, flips gate, and loads rules", func(t *testing.T) {
		store := &mockSchemaStore{}
		gate := &mockGate{}
		rules := &mockRuleLoader{}
		svc := NewWarmupService(store, gate, rules)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if store.initCount.Load() != 1 {
			t.Errorf("expected 1 InitSchema call, got %d", store.initCount.Load())
		}
		if gate.readyCount.Load() != 1 {
			t.Errorf("expected 1 SetReady call, got %d", gate.readyCount.Load())
		}
		if rules.reloadCount.Load() != 1 {
			t.Errorf("expected 1 ReloadRules call, got %d", rules.reloadCount.Load())
		}
	})

	t.Run("returns error without flipping gate when schema init fails", func(t *testing.T) {
		store := &mockSchemaStore{initErr: errors.New("disk not mounted")}
		gate := &mockGate{}
		svc := NewWarmupService(store, gate, nil)

		err := svc.Serve(context.Background())
		if !errors.Is(err, store.initErr) {
			t.Errorf("expected wrapped init error, got %v", err)
		}
		if gate.readyCount.Load() != 0 {
			t.Error("gate should not be flipped when schema init fails")
		}
	})

	t.Run("rule load failure is not fatal", func(t *testing.T) {
		store := &mockSchemaStore{}
		gate := &mockGate{}
		rules := &mockRuleLoader{reloadErr: errors.New("query failed")}
		svc := NewWarmupService(store, gate, rules)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if gate.readyCount.Load() != 1 {
			t.Error("gate should be flipped even when rule load fails")
		}
	})

	t.Run("nil rule loader is allowed", func(t *testing.T) {
		store := &mockSchemaStore{}
		gate := &mockGate{}
		svc := NewWarmupService(store, gate, nil)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if gate.readyCount.Load() != 1 {
			t.Error("gate should be flipped")
		}
	})
}

func TestWarmupService_String(t *testing.T) {
	svc := NewWarmupService(&mockSchemaStore{}, &mockGate{}, nil)
	if svc.String() != "db-warmup" {
		t.Errorf("expected name 'db-warmup', got %q", svc.String())
	}
}
