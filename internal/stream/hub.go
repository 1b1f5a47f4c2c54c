// Package stream pushes customer-rate snapshots to trading screens over websockets.
package stream

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"fx-forward-desk/internal/observability"
)

// Hub maintains active WebSocket clients and broadcasts messages
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound snapshots
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Last broadcast, replayed to new clients
	last []byte

	// Closed when Run returns
	done chan struct{}

	count   atomic.Int64
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewHub creates a new Hub
func NewHub(logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger.Named("hub"),
		metrics:    metrics,
	}
}

// Run starts the hub event loop
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.last != nil {
				select {
				case client.send <- h.last:
				default:
				}
			}
			h.changed()
			h.logger.Debug("client registered", zap.String("client", client.id), zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.changed()
				h.logger.Debug("client unregistered", zap.String("client", client.id), zap.Int("total", len(h.clients)))
			}

		case message := <-h.broadcast:
			h.last = message
			h.metrics.WSBroadcasts.Inc()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, disconnect
					close(client.send)
					delete(h.clients, client)
					h.metrics.WSDroppedSlow.Inc()
					h.logger.Info("client dropped, send buffer full", zap.String("client", client.id))
				}
			}
			h.changed()

		case <-ctx.Done():
			h.logger.Info("shutting down hub")
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.changed()
			return
		}
	}
}

func (h *Hub) changed() {
	h.count.Store(int64(len(h.clients)))
	h.metrics.WSClients.Set(float64(len(h.clients)))
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped, since a newer snapshot follows.
func (h *Hub) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warn("broadcast queue full, snapshot dropped")
		return false
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
