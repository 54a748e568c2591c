// Package ws streams state snapshots to WebSocket clients using
// gorilla/websocket.
//
// A Hub holds the latest published snapshot. New clients receive it on
// connect and every later snapshot after that; a slow client only ever
// sees the newest state, never a backlog.
//
//	hub := ws.NewHub("cart")
//	go hub.Run(ctx)
//	cart.Subscribe(func(items []models.CartLine) { hub.PublishJSON(items) })
//
//	// in a handler:
//	hub.Upgrade(w, r)
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
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
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	version uint64 // last snapshot version queued; owned by Run
}

// readPump only services control frames; clients never send data.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Hub fans the latest snapshot out to all connected clients.
type Hub struct {
	log *slog.Logger

	register   chan *client
	unregister chan *client
	notify     chan struct{}
	done       chan struct{}

	mu      sync.Mutex
	last    []byte
	version uint64
	count   int
}

// NewHub creates a Hub. name tags its log lines. Call Run before Upgrade.
func NewHub(name string) *Hub {
	return &Hub{
		log:        logger.Component("ws").With("hub", name),
		register:   make(chan *client),
		unregister: make(chan *client),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Publish replaces the current snapshot. It never blocks, so it is safe to
// call from inside a store's subscriber.
func (h *Hub) Publish(data []byte) {
	h.mu.Lock()
	h.last = data
	h.version++
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// PublishJSON encodes v and publishes it. Encoding errors are logged.
func (h *Hub) PublishJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode snapshot", "error", err)
		return
	}
	h.Publish(data)
}

// Run owns the client set until ctx is done, then closes every client.
// It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})

	deliver := func(c *client, data []byte, version uint64) {
		if data == nil || c.version >= version {
			return
		}
		select {
		case c.send <- data:
			c.version = version
		default:
			// Buffer full: drop the client rather than stall the hub.
			delete(clients, c)
			close(c.send)
		}
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range clients {
				close(c.send)
			}
			h.setCount(0)
			return

		case c := <-h.register:
			clients[c] = struct{}{}
			h.setCount(len(clients))
			data, version := h.snapshot()
			deliver(c, data, version)
			h.log.Info("client connected", "total", len(clients))

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.setCount(len(clients))
				h.log.Info("client disconnected", "total", len(clients))
			}

		case <-h.notify:
			data, version := h.snapshot()
			for c := range clients {
				deliver(c, data, version)
			}
			h.setCount(len(clients))
		}
	}
}

func (h *Hub) snapshot() ([]byte, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.version
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades the request to a WebSocket and registers the client.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, 16)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
