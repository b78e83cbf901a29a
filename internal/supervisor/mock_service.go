// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package supervisor

import (
	"context"
	"errors"
	"sync"
)

// MockService is a controllable suture.Service for exercising the tree
// in tests. By default Serve blocks until the context is canceled; it
// can be told to fail a fixed number of times first (to observe suture
// restarts) or to always return a given error.
type MockService struct {
	name string

	mu           sync.Mutex
	starts       int
	stops        int
	failuresLeft int
	err          error
}

// NewMockService creates a mock service that blocks until canceled.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	m.mu.Lock()
	m.starts++
	fail := m.failuresLeft > 0
	if fail {
		m.failuresLeft--
	}
	err := m.err
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.stops++
		m.mu.Unlock()
	}()

	if fail {
		return errors.New("simulated failure")
	}
	if err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// SetError makes every subsequent Serve return err immediately.
func (m *MockService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetFailCount makes the next n Serve calls fail before the service
// settles into its normal blocking behavior.
func (m *MockService) SetFailCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft = n
}

// StartCount reports how many times Serve was entered.
func (m *MockService) StartCount() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int32(m.starts)
}

// StopCount reports how many times Serve returned.
func (m *MockService) StopCount() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int32(m.stops)
}

func (m *MockService) String() string {
	return m.name
}
