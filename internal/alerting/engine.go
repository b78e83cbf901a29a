// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package alerting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/guardit/guardit/internal/broadcast"
	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/metrics"
	"github.com/guardit/guardit/internal/models"
)

// RuleStore is the slice of the database the engine needs: loading
// keyword rules and persisting generated alerts.
type RuleStore interface {
	ListKeywords(ctx context.Context, activeOnly bool) ([]models.KeywordRule, error)
	InsertAlert(ctx context.Context, alert *models.Alert) error
}

// Publisher fans an event out to connected dashboards.
type Publisher interface {
	Publish(event broadcast.Event)
}

// webhookSendTimeout bounds the detached webhook delivery goroutine.
const webhookSendTimeout = 30 * time.Second

// Engine evaluates incoming status messages against the active keyword
// rules. Every matching rule produces one persisted alert; rules with
// alert type error or critical additionally escalate to an
// alert_notification broadcast and a webhook delivery.
type Engine struct {
	store    RuleStore
	hub      Publisher
	notifier Notifier

	mu      sync.RWMutex
	matcher *Matcher
}

// NewEngine creates an engine with no rules loaded. Call ReloadRules
// before processing; until then every message matches nothing.
func NewEngine(store RuleStore, hub Publisher, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		hub:      hub,
		notifier: notifier,
		matcher:  NewMatcher(nil),
	}
}

// ReloadRules rebuilds the matcher from the active keyword rules in the
// store. It is called at startup and after every keyword mutation, so
// rule changes apply to the next status report without a restart.
func (e *Engine) ReloadRules(ctx context.Context) error {
	rules, err := e.store.ListKeywords(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load keyword rules: %w", err)
	}

	matcher := NewMatcher(rules)
	e.mu.Lock()
	e.matcher = matcher
	e.mu.Unlock()

	logging.Info().Int("rules", matcher.RuleCount()).Msg("Alert keyword rules loaded")
	return nil
}

// RuleCount returns the number of rules in the current matcher.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher.RuleCount()
}

// ProcessStatus matches the message against the loaded rules and emits
// one alert per matching rule, each carrying the matched rule's alert
// type and severity. It returns the generated alerts and an aggregate
// error for any that could not be persisted; matching itself never
// fails, so a storage problem degrades alerting rather than blocking
// ingestion. taskName is the task's display name, carried into
// escalation payloads.
func (e *Engine) ProcessStatus(ctx context.Context, taskID, taskName, message string, timestamp time.Time) ([]models.Alert, error) {
	e.mu.RLock()
	matcher := e.matcher
	e.mu.RUnlock()

	matched := matcher.MatchedRules(message)
	if len(matched) == 0 {
		return nil, nil
	}

	alerts := make([]models.Alert, 0, len(matched))
	var errs []error

	for _, rule := range matched {
		alert := models.Alert{
			TaskID:    taskID,
			KeywordID: rule.ID,
			Keyword:   rule.Keyword,
			AlertType: rule.AlertType,
			Severity:  rule.Severity,
			Message:   message,
			Status:    models.AlertStatusActive,
			CreatedAt: timestamp,
		}

		if err := e.store.InsertAlert(ctx, &alert); err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", rule.Keyword, err))
			logging.Error().Err(err).
				Str("task_id", taskID).
				Str("keyword", rule.Keyword).
				Msg("Failed to persist alert")
			continue
		}

		escalated := models.IsEscalatingAlertType(rule.AlertType)
		metrics.RecordAlert(rule.AlertType, escalated)
		alerts = append(alerts, alert)

		logging.Warn().
			Str("task_id", taskID).
			Str("keyword", rule.Keyword).
			Str("alert_type", rule.AlertType).
			Int("severity", rule.Severity).
			Msg("Keyword alert generated")

		if escalated {
			e.escalate(models.AlertNotification{
				TaskID:    taskID,
				TaskName:  taskName,
				Keyword:   rule.Keyword,
				AlertType: rule.AlertType,
				Severity:  rule.Severity,
				Message:   message,
				Timestamp: timestamp,
			})
		}
	}

	return alerts, errors.Join(errs...)
}

// escalate pushes the notification to dashboards and hands it to the
// webhook notifier. Webhook delivery is detached so a slow endpoint
// never holds up the ingestion path.
func (e *Engine) escalate(notification models.AlertNotification) {
	event, err := broadcast.NewAlertNotificationEvent(notification)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode alert notification")
	} else {
		e.hub.Publish(event)
	}

	if e.notifier == nil || !e.notifier.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookSendTimeout)
		defer cancel()
		if err := e.notifier.Send(ctx, notification); err != nil {
			logging.Error().Err(err).
				Str("task_id", notification.TaskID).
				Str("keyword", notification.Keyword).
				Msg("Webhook delivery failed")
		}
	}()
}
