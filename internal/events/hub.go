// Package events pushes cellar change notifications to websocket clients.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/erazemk/klet/internal/cellar"
)

// broadcastBuffer bounds how many events may queue before Publish drops.
const broadcastBuffer = 64

// Hub maintains the set of connected clients and fans events out to them.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu sync.RWMutex
}

var _ cellar.Notifier = (*Hub)(nil)

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx is
// cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
			slog.Debug("event subscriber connected", "client", c.id)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
				slog.Debug("event subscriber disconnected", "client", c.id)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; it can reconnect and refetch.
					close(c.send)
					delete(h.clients, id)
					slog.Warn("dropping slow event subscriber", "client", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues e for every connected client. It never blocks: when the
// queue is full the event is dropped.
func (h *Hub) Publish(e cellar.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		slog.Error("encoding event", "type", e.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("event queue full, dropping event", "type", e.Type)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
