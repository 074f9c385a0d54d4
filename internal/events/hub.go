package events

import (
	"context"
	"sync"

	"github.com/seenimoa/pulsewatch/internal/metrics"
)

// ════════════════════════════════════════════════════════════════════
// WebSocket hub
// ════════════════════════════════════════════════════════════════════

// Client is one subscriber. The transport reads Send until it is closed.
type Client struct {
	send chan Event
}

// Send returns the client's outbound queue. It is closed when the hub
// drops the client.
func (c *Client) Send() <-chan Event { return c.send }

// Hub tracks subscribers and broadcasts events to them. A client whose
// queue is full is disconnected rather than slowing the others.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	queueSize  int
}

// NewHub creates a hub. Run must be started before clients register.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		queueSize:  64,
	}
}

// Run is the hub event loop. It returns when ctx is done, closing every
// client queue.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.WSConnections.Inc()
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				h.drop(c)
			}
			h.mu.Unlock()
		case ev := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes c; h.mu must be held.
func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	metrics.WSConnections.Dec()
}

// Register adds a new client and returns it. It returns nil once the hub
// has stopped.
func (h *Hub) Register() *Client {
	c := &Client{send: make(chan Event, h.queueSize)}
	select {
	case h.register <- c:
		return c
	case <-h.done:
		return nil
	}
}

// Unregister removes c. It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues ev for broadcast. Events are dropped when the broadcast
// queue is full.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	select {
	case h.broadcast <- ev:
		record("websocket", nil)
	default:
		metrics.EventsPublished.WithLabelValues("websocket", "dropped").Inc()
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
