// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package statuscache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardit/guardit/internal/models"
)

func snap(status string) models.StatusSnapshot {
	return models.NewSnapshot(models.StatusReport{Status: status}, time.Now())
}

func TestSetGet(t *testing.T) {
	c := New()

	_, ok := c.Get("backup-db")
	assert.False(t, ok)

	c.Set("backup-db", snap(models.StatusRunning))
	got, ok := c.Get("backup-db")
	require.True(t, ok)
	assert.Equal(t, models.StatusRunning, got.Status)
}

func TestSetOverwritesUnconditionally(t *testing.T) {
	c := New()
	c.Set("backup-db", snap(models.StatusCompleted))
	c.Set("backup-db", snap(models.StatusFailed))

	got, ok := c.Get("backup-db")
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, 1, c.Len())
}

func TestGetAllReturnsCopy(t *testing.T) {
	c := New()
	c.Set("a", snap(models.StatusRunning))
	c.Set("b", snap(models.StatusCompleted))

	all := c.GetAll()
	assert.Len(t, all, 2)

	// Mutating the copy must not affect the cache.
	delete(all, "a")
	assert.Equal(t, 2, c.Len())
}

func TestRemove(t *testing.T) {
	c := New()
	c.Set("a", snap(models.StatusRunning))

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c := New()
	c.Set("a", snap(models.StatusRunning))
	c.Set("b", snap(models.StatusCompleted))

	assert.Equal(t, 2, c.Clear())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Clear())
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(fmt.Sprintf("task-%d", n), snap(models.StatusRunning))
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get(fmt.Sprintf("task-%d", n))
				c.GetAll()
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 10, c.Len())
}
