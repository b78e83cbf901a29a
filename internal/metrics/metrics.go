// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Status ingestion pipeline (throughput, latency, rejections)
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Keyword alerting
// - Realtime broadcast fan-out (SSE and WebSocket)
// - Alert webhook circuit breaker

var (
	// Ingestion Pipeline Metrics
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_reports_total",
			Help: "Total number of status reports processed by the ingestion pipeline",
		},
		[]string{"result"}, // "accepted", "unregistered", "inactive", "invalid"
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "End-to-end duration of status report ingestion in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	IngestPersistenceWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_persistence_warnings_total",
			Help: "Total number of best-effort persistence failures during ingestion",
		},
		[]string{"step"}, // "history", "daily_metrics", "last_seen"
	)

	IngestDegradedMode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_degraded_mode",
			Help: "Whether ingestion runs without persistence (1=degraded, 0=ready)",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Alerting Metrics
	AlertsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_generated_total",
			Help: "Total number of keyword alerts generated",
		},
		[]string{"alert_type"},
	)

	AlertsEscalated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_escalated_total",
			Help: "Total number of alerts pushed to connected dashboards",
		},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_webhook_deliveries_total",
			Help: "Total number of alert webhook delivery attempts",
		},
		[]string{"result"}, // "success", "failure", "rejected", "rate_limited"
	)

	// Broadcast Metrics
	BroadcastSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "broadcast_subscribers",
			Help: "Current number of connected realtime subscribers",
		},
		[]string{"transport"}, // "sse", "websocket"
	)

	BroadcastEventsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_events_sent_total",
			Help: "Total number of events fanned out to subscribers",
		},
		[]string{"event_type"},
	)

	BroadcastDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_drops_total",
			Help: "Total number of events dropped because a subscriber buffer was full",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordIngest records the outcome and duration of one pipeline run.
func RecordIngest(result string, duration time.Duration) {
	IngestTotal.WithLabelValues(result).Inc()
	IngestDuration.Observe(duration.Seconds())
}

// RecordPersistenceWarning records a best-effort persistence failure.
func RecordPersistenceWarning(step string) {
	IngestPersistenceWarnings.WithLabelValues(step).Inc()
}

// SetDegradedMode flips the degraded-mode gauge.
func SetDegradedMode(degraded bool) {
	if degraded {
		IngestDegradedMode.Set(1)
	} else {
		IngestDegradedMode.Set(0)
	}
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to bound label cardinality.
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAlert records a generated keyword alert.
func RecordAlert(alertType string, escalated bool) {
	AlertsGenerated.WithLabelValues(alertType).Inc()
	if escalated {
		AlertsEscalated.Inc()
	}
}

// RecordWebhookDelivery records an alert webhook delivery attempt.
func RecordWebhookDelivery(result string) {
	WebhookDeliveries.WithLabelValues(result).Inc()
}

// RecordBroadcast records an event fanned out to one subscriber.
func RecordBroadcast(eventType string) {
	BroadcastEventsSent.WithLabelValues(eventType).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change and
// updates the state gauge.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
}

func stateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
