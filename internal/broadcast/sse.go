// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package broadcast

import (
	"fmt"
	"net/http"
	"time"

	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/statuscache"
)

// SSEHandler streams realtime events to a dashboard over Server-Sent
// Events. Each connection first receives a connected greeting and an
// initial event with the full status map, then live updates until the
// client disconnects.
func SSEHandler(hub *Hub, cache *statuscache.Cache, keepalive time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := writeSSE(w, flusher, mustConnectedEvent()); err != nil {
			return
		}
		initial, err := NewInitialEvent(cache.GetAll())
		if err != nil {
			logging.Error().Err(err).Msg("failed to marshal initial event")
			return
		}
		if err := writeSSE(w, flusher, initial); err != nil {
			return
		}

		sub := NewSubscriber("sse")
		hub.Register <- sub
		defer func() {
			// Unregister may race with hub shutdown; the hub closes
			// sub.C either way.
			select {
			case hub.Unregister <- sub:
			case <-time.After(time.Second):
			}
		}()

		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return

			case event, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeSSE(w, flusher, event); err != nil {
					return
				}

			case <-ticker.C:
				// Comment line keeps intermediaries from timing out
				// the idle stream.
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// mustConnectedEvent builds the static greeting. The payload contains
// no dynamic data, so marshaling cannot fail at runtime.
func mustConnectedEvent() Event {
	event, err := NewConnectedEvent()
	if err != nil {
		return Event{Type: EventConnected, Payload: []byte(`{"type":"connected"}`)}
	}
	return event
}
