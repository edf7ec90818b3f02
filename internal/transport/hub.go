package transport

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/sketchdash/sketchdash-server/internal/game"
)

// Hub fans events out to the websocket clients of each room. It implements
// game.Emitter; the engine never touches a connection directly.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connID -> client
	rooms   map[string]map[string]*Client // roomID -> connID -> client
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.id)
	if c.roomID != "" {
		h.detachLocked(c)
	}
}

// Subscribe places the connection in a room's fan-out set. A connection
// belongs to at most one room.
func (h *Hub) Subscribe(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if c.roomID != "" {
		h.detachLocked(c)
	}
	c.roomID = roomID
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][connID] = c
}

func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[connID]; ok {
		h.detachLocked(c)
	}
}

func (h *Hub) detachLocked(c *Client) {
	if set, ok := h.rooms[c.roomID]; ok {
		delete(set, c.id)
		if len(set) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	c.roomID = ""
}

func (h *Hub) Broadcast(roomID string, ev game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[roomID] {
		c.send(ev)
	}
}

func (h *Hub) BroadcastExcept(roomID, exceptConnID string, ev game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.rooms[roomID] {
		if id == exceptConnID {
			continue
		}
		c.send(ev)
	}
}

func (h *Hub) Unicast(connID string, ev game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[connID]; ok {
		c.send(ev)
	}
}

// Project asks the callback for each recipient's view of one semantic event.
// Returning false sends that recipient nothing.
func (h *Hub) Project(roomID string, project func(connID string) (game.Event, bool)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.rooms[roomID] {
		if ev, ok := project(id); ok {
			c.send(ev)
		}
	}
}
