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

// mockHub is a test double for the ContextHub interface.
type mockHub struct {
	runErr   error
	runCount atomic.Int32
}

func (m *mockHub) RunWithContext(ctx context.Context) error {
	m.runCount.Add(1)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHubService_Interface(t *testing.T) {
	var _ suture.Service = (*HubService)(nil)
}

func TestHubService_Serve(t *testing.T) {
	t.Run("delegates to RunWithContext until cancellation", func(t *testing.T) {
		hub := &mockHub{}
		svc := NewHubService(hub)

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

		if hub.runCount.Load() != 1 {
			t.Errorf("expected 1 RunWithContext call, got %d", hub.runCount.Load())
		}
	})

	t.Run("propagates hub errors", func(t *testing.T) {
		hub := &mockHub{runErr: errors.New("hub crashed")}
		svc := NewHubService(hub)

		err := svc.Serve(context.Background())
		if !errors.Is(err, hub.runErr) {
			t.Errorf("expected hub error, got %v", err)
		}
	})
}

func TestHubService_String(t *testing.T) {
	svc := NewHubService(&mockHub{})
	if svc.String() != "broadcast-hub" {
		t.Errorf("expected name 'broadcast-hub', got %q", svc.String())
	}
}
