package ws

import "sync"

// Envelope is the wire frame for every event in either direction.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

const sendBuffer = 32

// client is one joined connection. Writes go through the send channel so a
// single writer goroutine owns the underlying connection.
type client struct {
	identity string
	send     chan Envelope

	closeOnce sync.Once
}

func newClient(identity string) *client {
	return &client{
		identity: identity,
		send:     make(chan Envelope, sendBuffer),
	}
}

// deliver queues an envelope without blocking. A client that cannot drain
// its buffer loses frames rather than stalling the room.
func (c *client) deliver(env Envelope) {
	select {
	case c.send <- env:
	default:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub tracks which clients are joined to which room and fans events out to
// them. Removal closes the client's send channel, which ends its writer;
// nothing else in the room is affected.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]struct{})}
}

func (h *Hub) add(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[roomID]
	if !ok {
		clients = make(map[*client]struct{})
		h.rooms[roomID] = clients
	}
	clients[c] = struct{}{}
}

func (h *Hub) remove(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, joined := clients[c]; !joined {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
	c.close()
}

// broadcast queues the envelope for every joined client in the room except
// the ones listed in skip.
func (h *Hub) broadcast(roomID string, env Envelope, skip ...*client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if containsClient(skip, c) {
			continue
		}
		c.deliver(env)
	}
}

// sendTo queues the envelope for every joined connection with the given
// identity (the same participant may hold several tabs).
func (h *Hub) sendTo(roomID, identity string, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if c.identity == identity {
			c.deliver(env)
		}
	}
}

func containsClient(list []*client, c *client) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}
