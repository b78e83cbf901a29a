// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package broadcast

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guardit/guardit/internal/logging"
	"github.com/guardit/guardit/internal/statuscache"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served cross-origin; CORS policy is enforced at
	// the router layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client bridges one WebSocket connection and the hub. It receives the
// same pre-marshaled event payloads as SSE subscribers.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	sub  *Subscriber
}

// ServeWS upgrades the request and starts the client pumps. The new
// connection immediately receives the connected and initial events.
func ServeWS(hub *Hub, cache *statuscache.Cache, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		sub:  NewSubscriber("websocket"),
	}

	greeting := mustConnectedEvent()
	initial, err := NewInitialEvent(cache.GetAll())
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal initial event")
		_ = conn.Close()
		return
	}

	hub.Register <- client.sub

	go client.writePump(greeting, initial)
	go client.readPump()
}

// readPump drains inbound frames. Dashboards do not send application
// messages; reading is only needed to process control frames and to
// detect disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c.sub
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}
	}
}

// writePump pushes hub events to the connection and pings on idle.
func (c *Client) writePump(first ...Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for _, event := range first {
		if err := c.writeEvent(event); err != nil {
			return
		}
	}

	for {
		select {
		case event, ok := <-c.sub.C:
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeEvent(event); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeEvent(event Event) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set write deadline")
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, event.Payload); err != nil {
		logging.Error().Err(err).Msg("failed to write websocket event")
		return err
	}
	return nil
}
