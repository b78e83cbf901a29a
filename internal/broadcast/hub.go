// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package broadcast

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/metrics"
)

// subscriberIDCounter generates unique, monotonically increasing IDs.
// IDs give broadcasts a stable fan-out order instead of random map
// iteration.
var subscriberIDCounter atomic.Uint64

// Subscriber is one connected dashboard. Events arrive on C; a
// subscriber that stops draining its buffer is evicted by the hub.
type Subscriber struct {
	id        uint64
	transport string
	C         chan Event
}

// NewSubscriber creates a subscriber for the given transport
// ("sse" or "websocket").
func NewSubscriber(transport string) *Subscriber {
	return &Subscriber{
		id:        subscriberIDCounter.Add(1),
		transport: transport,
		C:         make(chan Event, 64),
	}
}

// Transport returns the subscriber's transport label.
func (s *Subscriber) Transport() string {
	return s.transport
}

// Hub maintains the set of subscribers and fans events out to them.
// A single goroutine (RunWithContext) owns the subscriber set; all
// mutation flows through the Register/Unregister channels.
type Hub struct {
	subscribers map[*Subscriber]bool
	broadcast   chan Event
	Register    chan *Subscriber
	Unregister  chan *Subscriber
	mu          sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:   make(chan Event, 256),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
		subscribers: make(map[*Subscriber]bool),
	}
}

// RunWithContext runs the hub until the context is canceled. Designed
// for suture supervision; on cancellation all subscribers are closed
// and ctx.Err() is returned.
//
// Selection is priority based so behavior stays predictable when
// several channels are ready at once:
//   - Priority 1: context cancellation
//   - Priority 2: subscriber lifecycle (Register/Unregister)
//   - Priority 3: broadcast events
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case sub := <-h.Register:
			h.addSubscriber(sub)
			continue
		case sub := <-h.Unregister:
			h.removeSubscriber(sub)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()

		case sub := <-h.Register:
			h.addSubscriber(sub)

		case sub := <-h.Unregister:
			h.removeSubscriber(sub)

		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Publish queues an event for fan-out. Non-blocking; the event is
// dropped with a warning when the broadcast buffer is full.
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		metrics.BroadcastDrops.Inc()
		logging.Warn().Str("event_type", event.Type).Msg("broadcast channel full, dropping event")
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) addSubscriber(sub *Subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = true
	total := len(h.subscribers)
	h.mu.Unlock()

	metrics.BroadcastSubscribers.WithLabelValues(sub.transport).Inc()
	logging.Info().Str("transport", sub.transport).Int("total_subscribers", total).Msg("subscriber connected")
}

func (h *Hub) removeSubscriber(sub *Subscriber) {
	h.mu.Lock()
	removed := false
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.C)
		removed = true
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if removed {
		metrics.BroadcastSubscribers.WithLabelValues(sub.transport).Dec()
		logging.Info().Str("transport", sub.transport).Int("total_subscribers", total).Msg("subscriber disconnected")
	}
}

// fanOut sends an event to all subscribers in ID order. Subscribers
// with a full buffer are evicted rather than allowed to stall the hub.
func (h *Hub) fanOut(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].id < subs[j].id
	})

	var toRemove []*Subscriber
	for _, sub := range subs {
		select {
		case sub.C <- event:
			metrics.RecordBroadcast(event.Type)
		default:
			toRemove = append(toRemove, sub)
		}
	}

	for _, sub := range toRemove {
		close(sub.C)
		delete(h.subscribers, sub)
		metrics.BroadcastSubscribers.WithLabelValues(sub.transport).Dec()
		metrics.BroadcastDrops.Inc()
		logging.Warn().Str("transport", sub.transport).Msg("evicting slow subscriber")
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.subscribers)
	for sub := range h.subscribers {
		close(sub.C)
		delete(h.subscribers, sub)
		metrics.BroadcastSubscribers.WithLabelValues(sub.transport).Dec()
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "broadcast-hub").
		Str("reason", reason).
		Int("subscribers_closed", count).
		Msg("broadcast hub stopped")
}
