// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package api

import (
	"net/http"
	"sort"

	"github.com/guardit/guardit/internal/models"
)

// Grafana JSON datasource protocol. The endpoints return bare JSON in
// the exact shapes the simple-json datasource expects, not the API
// envelope.

// grafanaStatusValue maps a status token to the numeric series value.
func grafanaStatusValue(status string) int {
	switch status {
	case models.StatusCompleted:
		return 100
	case models.StatusRunning:
		return 50
	case models.StatusWarning:
		return 25
	case models.StatusFailed, models.StatusError:
		return 0
	default:
		return -1
	}
}

type grafanaMetric struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

type grafanaQueryRequest struct {
	Targets []struct {
		Target string `json:"target"`
	} `json:"targets"`
}

type grafanaSeries struct {
	Target     string  `json:"target"`
	Datapoints [][]any `json:"datapoints"`
}

type grafanaAnnotation struct {
	Annotation string   `json:"annotation"`
	Time       int64    `json:"time"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Text       string   `json:"text"`
}

type grafanaColumn struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type grafanaTable struct {
	Columns []grafanaColumn `json:"columns"`
	Rows    [][]any         `json:"rows"`
	Type    string          `json:"type"`
}

// sortedTaskIDs returns the cached task IDs in lexical order so
// Grafana responses are stable between refreshes.
func (h *Handler) sortedTaskIDs() ([]string, map[string]models.StatusSnapshot) {
	statuses := h.cache.GetAll()
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, statuses
}

// GrafanaRoot handles any method on /grafana, the datasource
// connectivity test.
func (h *Handler) GrafanaRoot(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		return
	}
}

// GrafanaSearch handles POST /grafana/search and /grafana/metrics,
// listing tracked tasks as selectable metrics.
func (h *Handler) GrafanaSearch(w http.ResponseWriter, r *http.Request) {
	ids, _ := h.sortedTaskIDs()
	metricsList := make([]grafanaMetric, 0, len(ids))
	for _, id := range ids {
		metricsList = append(metricsList, grafanaMetric{Text: id, Value: id})
	}
	respondRaw(w, http.StatusOK, metricsList)
}

// GrafanaQuery handles POST /grafana/query. Each target yields two
// datapoints at the snapshot timestamp: the numeric status value and
// the progress.
func (h *Handler) GrafanaQuery(w http.ResponseWriter, r *http.Request) {
	var req grafanaQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	results := make([]grafanaSeries, 0, len(req.Targets))
	for _, target := range req.Targets {
		snap, ok := h.cache.Get(target.Target)
		if !ok {
			results = append(results, grafanaSeries{Target: target.Target, Datapoints: [][]any{}})
			continue
		}

		ts := snap.Timestamp.UnixMilli()
		results = append(results, grafanaSeries{
			Target: target.Target,
			Datapoints: [][]any{
				{grafanaStatusValue(snap.Status), ts},
				{snap.Progress, ts},
			},
		})
	}
	respondRaw(w, http.StatusOK, results)
}

// GrafanaAnnotations handles POST /grafana/annotations. Only terminal
// statuses are annotated.
func (h *Handler) GrafanaAnnotations(w http.ResponseWriter, r *http.Request) {
	ids, statuses := h.sortedTaskIDs()
	annotations := make([]grafanaAnnotation, 0)
	for _, id := range ids {
		snap := statuses[id]
		if !models.IsTerminalStatus(snap.Status) {
			continue
		}
		annotations = append(annotations, grafanaAnnotation{
			Annotation: "Backup Status",
			Time:       snap.Timestamp.UnixMilli(),
			Title:      id,
			Tags:       []string{snap.Status},
			Text:       snap.Message,
		})
	}
	respondRaw(w, http.StatusOK, annotations)
}

// GrafanaTable handles POST /grafana/table, the live status overview.
func (h *Handler) GrafanaTable(w http.ResponseWriter, r *http.Request) {
	ids, statuses := h.sortedTaskIDs()
	rows := make([][]any, 0, len(ids))
	for _, id := range ids {
		snap := statuses[id]
		rows = append(rows, []any{id, snap.Status, snap.Message, snap.Progress, snap.Timestamp.UnixMilli()})
	}

	respondRaw(w, http.StatusOK, []grafanaTable{{
		Columns: []grafanaColumn{
			{Text: "Server", Type: "string"},
			{Text: "Status", Type: "string"},
			{Text: "Message", Type: "string"},
			{Text: "Progress", Type: "number"},
			{Text: "Last Update", Type: "time"},
		},
		Rows: rows,
		Type: "table",
	}})
}
