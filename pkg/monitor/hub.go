// Package monitor implements the modulator's optional live telemetry
// dashboard: a websocket hub broadcasting FrameStats snapshots to
// connected browser clients. It is strictly observational and never
// touches the DSP hot path; the encoder hands off a copy of its
// per-frame stats through a buffered channel and this package does the
// rest off that thread.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/dabmod/pkg/logger"
	"github.com/gorilla/websocket"
)

// FrameStats is the per-transmission-frame telemetry snapshot broadcast
// to every connected dashboard client (spec_full.md section 3).
type FrameStats struct {
	FCT           uint8     `json:"fct"`
	Timestamp     time.Time `json:"timestamp"`
	GainFactor    float64   `json:"gain_factor"`
	RSCorrections int       `json:"rs_corrections"`
}

// client is one connected websocket dashboard.
type client struct {
	id       string
	conn     *websocket.Conn
	messages chan []byte
}

// Hub manages dashboard client connections and broadcasts FrameStats.
// Grounded on the teacher's WebSocketHub (pkg/web/websocket.go),
// repurposed from DMR peer events to DAB frame telemetry.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan FrameStats
	register   chan *client
	unregister chan *client
	logger     *logger.Logger
	mu         sync.RWMutex
}

// NewHub creates a hub with a reasonably deep broadcast buffer so a
// burst of frames never blocks the caller that feeds it.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan FrameStats, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     log.WithComponent("monitor"),
	}
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("dashboard client registered", logger.String("client_id", c.id))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.messages)
			}
			h.mu.Unlock()
			h.logger.Debug("dashboard client unregistered", logger.String("client_id", c.id))

		case stats := <-h.broadcast:
			data, err := json.Marshal(stats)
			if err != nil {
				h.logger.Error("failed to marshal frame stats", logger.Error(err))
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.messages <- data:
				default:
					h.logger.Warn("dashboard client buffer full, dropping frame", logger.String("client_id", c.id))
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.messages)
			}
			h.clients = make(map[*client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Publish offers one FrameStats snapshot to the hub. If the hub's
// internal buffer is full the sample is dropped: telemetry loss is
// preferable to stalling the caller (spec_full.md section 5).
func (h *Hub) Publish(stats FrameStats) {
	select {
	case h.broadcast <- stats:
	default:
		h.logger.Warn("broadcast channel full, dropping frame stats")
	}
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns the HTTP handler that upgrades requests to websocket
// connections and streams FrameStats JSON frames to each client.
func (h *Hub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
			return
		}
		c := &client{id: r.RemoteAddr, conn: conn, messages: make(chan []byte, 256)}
		h.register <- c

		go func() {
			defer func() {
				h.unregister <- c
				_ = c.conn.Close()
			}()
			c.conn.SetReadLimit(1024)
			for {
				if _, _, err := c.conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			for msg := range c.messages {
				_ = c.conn.WriteMessage(websocket.TextMessage, msg)
			}
		}()
	})
}
