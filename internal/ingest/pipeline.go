// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package ingest implements the status ingestion pipeline. Each accepted
// report flows through a fixed sequence: readiness gate, registry check,
// cache overwrite, history append, daily metric recompute on terminal
// statuses, keyword alerting, and finally a broadcast to dashboards.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/guardit/guardit/internal/broadcast"
	"github.com/guardit/guardit/internal/database"
	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/metrics"
	"github.com/guardit/guardit/internal/models"
	"github.com/guardit/guardit/internal/statuscache"
)

// Registry is the task registration lookup the pipeline authorizes
// reports against.
type Registry interface {
	GetTask(ctx context.Context, taskID string) (*models.BackupTask, error)
	TouchTaskLastSeen(ctx context.Context, taskID string) error
}

// HistoryStore persists accepted reports and their daily aggregates.
type HistoryStore interface {
	AppendStatusEvent(ctx context.Context, event *models.StatusEvent) error
	RecomputeDailyMetric(ctx context.Context, taskID, date string) (*models.DailyMetric, error)
}

// Alerter evaluates an accepted report's message against keyword rules.
// taskName is the registered display name, used to label escalations.
type Alerter interface {
	ProcessStatus(ctx context.Context, taskID, taskName, message string, timestamp time.Time) ([]models.Alert, error)
}

// Publisher fans events out to connected dashboards.
type Publisher interface {
	Publish(event broadcast.Event)
}

// Pipeline processes status reports in arrival order. A mutex serializes
// ingestion so two reports for the same task cannot interleave their
// cache, history, and broadcast steps.
type Pipeline struct {
	mu sync.Mutex

	gate     *StoreGate
	registry Registry
	history  HistoryStore
	cache    *statuscache.Cache
	alerter  Alerter
	hub      Publisher
}

// NewPipeline wires the pipeline. The alerter may be nil when alerting
// is disabled.
func NewPipeline(gate *StoreGate, registry Registry, history HistoryStore, cache *statuscache.Cache, alerter Alerter, hub Publisher) *Pipeline {
	return &Pipeline{
		gate:     gate,
		registry: registry,
		history:  history,
		cache:    cache,
		alerter:  alerter,
		hub:      hub,
	}
}

// Ingest runs one status report through the pipeline and returns the
// snapshot that was cached and broadcast. Rejections are
// ErrUnregisteredTask, ErrInactiveTask, and ErrRegistryUnavailable;
// once the registry check passes, persistence and alerting problems
// degrade to logged warnings because the cache and the broadcast are
// the product, the history is best effort.
func (p *Pipeline) Ingest(ctx context.Context, taskID string, report models.StatusReport) (models.StatusSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	snap := models.NewSnapshot(report, start)

	if !p.gate.Ready() {
		p.acceptDegraded(taskID, snap)
		metrics.RecordIngest("degraded", time.Since(start))
		return snap, nil
	}

	task, err := p.registry.GetTask(ctx, taskID)
	switch {
	case errors.Is(err, database.ErrTaskNotFound):
		metrics.RecordIngest("unregistered", time.Since(start))
		return models.StatusSnapshot{}, ErrUnregisteredTask
	case err != nil:
		// The report could not be authorized, so nothing may be
		// cached, persisted, or broadcast for it.
		logging.Error().Err(err).Str("task_id", taskID).Msg("Registry lookup failed")
		metrics.RecordIngest("registry_error", time.Since(start))
		return models.StatusSnapshot{}, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	case !task.IsActive:
		metrics.RecordIngest("inactive", time.Since(start))
		return models.StatusSnapshot{}, ErrInactiveTask
	}

	p.cache.Set(taskID, snap)

	if err := p.registry.TouchTaskLastSeen(ctx, taskID); err != nil {
		logging.Warn().Err(err).Str("task_id", taskID).Msg("Failed to update last seen")
		metrics.RecordPersistenceWarning("last_seen")
	}

	event := &models.StatusEvent{
		TaskID:    taskID,
		Status:    snap.Status,
		Message:   snap.Message,
		Progress:  snap.Progress,
		Data:      snap.Data,
		Timestamp: snap.Timestamp,
	}
	if err := p.history.AppendStatusEvent(ctx, event); err != nil {
		logging.Error().Err(err).Str("task_id", taskID).Msg("Failed to append status history")
		metrics.RecordPersistenceWarning("history")
	}

	if models.IsTerminalStatus(snap.Status) {
		if _, err := p.history.RecomputeDailyMetric(ctx, taskID, ""); err != nil {
			logging.Error().Err(err).Str("task_id", taskID).Msg("Failed to recompute daily metric")
			metrics.RecordPersistenceWarning("daily_metric")
		}
	}

	if p.alerter != nil {
		if _, err := p.alerter.ProcessStatus(ctx, taskID, task.DisplayName, snap.Message, snap.Timestamp); err != nil {
			logging.Error().Err(err).Str("task_id", taskID).Msg("Alerting degraded")
			metrics.RecordPersistenceWarning("alerting")
		}
	}

	p.broadcastUpdate(taskID, &snap)
	metrics.RecordIngest("accepted", time.Since(start))
	return snap, nil
}

// acceptDegraded serves the cache and broadcast path only, used while
// the store is still warming up.
func (p *Pipeline) acceptDegraded(taskID string, snap models.StatusSnapshot) {
	p.cache.Set(taskID, snap)
	p.broadcastUpdate(taskID, &snap)
}

// Remove drops a task's snapshot from the cache and tells dashboards
// with a null-status update. Reports whether the task was tracked.
func (p *Pipeline) Remove(taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cache.Remove(taskID) {
		return false
	}
	p.broadcastUpdate(taskID, nil)
	return true
}

// Clear empties the status cache and broadcasts clear_all. Returns the
// number of snapshots dropped.
func (p *Pipeline) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.cache.Clear()
	event, err := broadcast.NewClearAllEvent()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode clear_all event")
		return n
	}
	p.hub.Publish(event)
	metrics.RecordBroadcast(broadcast.EventClearAll)
	return n
}

func (p *Pipeline) broadcastUpdate(taskID string, snap *models.StatusSnapshot) {
	event, err := broadcast.NewUpdateEvent(taskID, snap)
	if err != nil {
		logging.Error().Err(err).Str("task_id", taskID).Msg("Failed to encode update event")
		return
	}
	p.hub.Publish(event)
	metrics.RecordBroadcast(broadcast.EventUpdate)
}
