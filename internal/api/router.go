// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the chi route tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router around the wired handler set.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	return &Router{handler: handler, middleware: mw}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging())
	r.Use(router.middleware.CORS())

	// Status ingestion and live snapshots.
	r.Route("/api/status", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Get("/", router.handler.ListStatuses)
		r.Delete("/", router.handler.ClearStatuses)
		r.Post("/{taskID}", router.handler.ReportStatus)
		r.Get("/{taskID}", router.handler.GetStatus)
		r.Delete("/{taskID}", router.handler.DeleteStatus)
	})

	// Task registry.
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Post("/", router.handler.RegisterTask)
		r.Get("/", router.handler.ListTasks)

		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", router.handler.GetTask)
			r.Put("/", router.handler.UpdateTask)
			r.Delete("/", router.handler.DeleteTask)

			r.Get("/history", router.handler.GetHistory)
			r.Get("/latest", router.handler.GetLatestEvent)
			r.Get("/stats", router.handler.GetStats)
			r.Get("/summary", router.handler.GetTodaysSummary)
			r.Get("/metrics", router.handler.GetDailyMetrics)
		})
	})

	// Server registry.
	r.Route("/api/servers", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Get("/", router.handler.ListServers)
		r.Post("/", router.handler.UpsertServer)
		r.Delete("/{serverID}", router.handler.DeleteServer)
	})

	// Keyword rules and the alert workflow.
	r.Route("/api/keywords", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Post("/", router.handler.CreateKeyword)
		r.Get("/", router.handler.ListKeywords)
		r.Get("/{keywordID}", router.handler.GetKeyword)
		r.Put("/{keywordID}", router.handler.UpdateKeyword)
		r.Delete("/{keywordID}", router.handler.DeleteKeyword)
	})

	r.Route("/api/alerts", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Get("/", router.handler.ListAlerts)
		r.Post("/{alertID}/acknowledge", router.handler.AcknowledgeAlert)
		r.Post("/{alertID}/resolve", router.handler.ResolveAlert)
	})

	// Health is outside the rate limit so monitors never trip it.
	r.Get("/api/health", router.handler.Health)

	// Real-time streams. No Prometheus latency tracking, these live
	// for hours.
	r.Get("/events", router.handler.Events)
	r.Get("/api/v1/ws", router.handler.WebSocket)

	// Grafana JSON datasource.
	r.Route("/grafana", func(r chi.Router) {
		r.Use(PrometheusMetrics)

		r.HandleFunc("/", router.handler.GrafanaRoot)
		r.Post("/search", router.handler.GrafanaSearch)
		r.Post("/metrics", router.handler.GrafanaSearch)
		r.Post("/query", router.handler.GrafanaQuery)
		r.Post("/annotations", router.handler.GrafanaAnnotations)
		r.Post("/table", router.handler.GrafanaTable)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
