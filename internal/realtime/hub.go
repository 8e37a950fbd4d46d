// Package realtime fans the store's change notifications out to connected
// websocket observers. The hub holds no authoritative state: every frame is a
// store event, and a client that reconnects simply refetches snapshots over
// the HTTP API.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"munchkin-tracker/internal/constants"
	"munchkin-tracker/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Co-located devices hit the server from arbitrary LAN origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	store  *store.Store
	logger zerolog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(st *store.Store, logger zerolog.Logger) *Hub {
	return &Hub{
		store:   st,
		logger:  logger,
		clients: map[*client]struct{}{},
	}
}

// Run consumes the store subscription until ctx is done, broadcasting every
// event to all connected clients. Intended to be launched once at startup.
func (h *Hub) Run(ctx context.Context) {
	events, cancel := h.store.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(event)
		}
	}
}

// Serve upgrades one HTTP request to a websocket observer connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, constants.WSSendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Int("clients", count).Msg("observer connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) broadcast(event store.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("path", event.Path).Msg("failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow observer: drop it rather than block the stream.
			h.drop(c)
		}
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(constants.WSWriteTimeout)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// readPump discards inbound frames; mutations go through the HTTP API. Its
// only job is detecting the close.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.drop(c)
		h.mu.Unlock()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop removes a client. Caller holds h.mu.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}
