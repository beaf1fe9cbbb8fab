package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection for one actor (a donor or
// a hospital, identified by record id).
type Client struct {
	ActorID string
	Send    chan []byte
	Hub     *Hub
	mu      sync.Mutex
	closed  bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
}

// Hub fans store-change and notification events out to connected dashboards.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// actorID -> clients (one actor can have several open tabs)
	byActor map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byActor: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	h.clients[c] = struct{}{}
	if c.ActorID != "" {
		if h.byActor[c.ActorID] == nil {
			h.byActor[c.ActorID] = make(map[*Client]struct{})
		}
		h.byActor[c.ActorID][c] = struct{}{}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byActor[c.ActorID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byActor, c.ActorID)
		}
	}
}

// BroadcastToActor delivers to every connection of one donor or hospital.
// Slow clients are skipped rather than blocking the caller.
func (h *Hub) BroadcastToActor(actorID string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	m := h.byActor[actorID]
	if m == nil {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *Hub) BroadcastAll(payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
