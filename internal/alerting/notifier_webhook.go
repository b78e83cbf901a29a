// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package alerting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/guardit/guardit/internal/config"
	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/metrics"
	"github.com/guardit/guardit/internal/models"
)

// Notifier delivers escalated alerts to an external system.
type Notifier interface {
	Send(ctx context.Context, notification models.AlertNotification) error
	Enabled() bool
}

// WebhookNotifier posts escalated alerts to a configured HTTP endpoint.
// Deliveries run through a circuit breaker so a dead endpoint cannot
// stall the ingestion path, and consecutive deliveries are spaced by a
// minimum interval.
type WebhookNotifier struct {
	webhookURL  string
	minInterval time.Duration
	client      *http.Client
	cb          *gobreaker.CircuitBreaker[struct{}]

	mu       sync.Mutex
	lastSent time.Time
}

// webhookPayload is the JSON body posted to the webhook endpoint.
type webhookPayload struct {
	EventType string                   `json:"event_type"`
	Source    string                   `json:"source"`
	Timestamp time.Time                `json:"timestamp"`
	Alert     models.AlertNotification `json:"alert"`
}

const webhookBreakerName = "alert-webhook"

// NewWebhookNotifier creates a notifier from the alerting configuration.
// An empty webhook URL yields a disabled notifier.
func NewWebhookNotifier(cfg *config.AlertingConfig) *WebhookNotifier {
	metrics.CircuitBreakerState.WithLabelValues(webhookBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        webhookBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("[WEBHOOK] Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, breakerStateString(from), breakerStateString(to))
		},
	})

	return &WebhookNotifier{
		webhookURL:  cfg.WebhookURL,
		minInterval: cfg.WebhookMinInterval,
		client:      &http.Client{Timeout: cfg.WebhookTimeout},
		cb:          cb,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *WebhookNotifier) Enabled() bool {
	return n.webhookURL != ""
}

// Send posts the notification to the webhook endpoint. Deliveries are
// serialized and rate limited; waiting respects context cancellation.
func (n *WebhookNotifier) Send(ctx context.Context, notification models.AlertNotification) error {
	if !n.Enabled() {
		return nil
	}

	if err := n.waitMinInterval(ctx); err != nil {
		return err
	}

	_, err := n.cb.Execute(func() (struct{}, error) {
		return struct{}{}, n.deliver(ctx, notification)
	})

	switch {
	case err == nil:
		metrics.RecordWebhookDelivery("success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordWebhookDelivery("rejected")
		logging.Warn().Err(err).Msg("[WEBHOOK] Delivery rejected by circuit breaker")
	default:
		metrics.RecordWebhookDelivery("failure")
	}
	return err
}

// waitMinInterval blocks until the minimum spacing since the previous
// delivery has elapsed, then claims the slot.
func (n *WebhookNotifier) waitMinInterval(ctx context.Context) error {
	if n.minInterval <= 0 {
		return nil
	}

	n.mu.Lock()
	wait := n.minInterval - time.Since(n.lastSent)
	if wait <= 0 {
		n.lastSent = time.Now()
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return ctx.Err()
	}

	n.mu.Lock()
	n.lastSent = time.Now()
	n.mu.Unlock()
	return nil
}

func (n *WebhookNotifier) deliver(ctx context.Context, notification models.AlertNotification) error {
	body, err := json.Marshal(webhookPayload{
		EventType: "backup_alert",
		Source:    "guardit",
		Timestamp: time.Now().UTC(),
		Alert:     notification,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
