package api

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// conn is the part of a websocket connection the hub writes to.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client is one websocket connection of a user.
type client struct {
	id     string
	userID string
	conn   conn
}

type push struct {
	userID  string
	payload any
}

// Hub delivers notifications to the websocket connections of their
// recipients. A user may hold several connections.
type Hub struct {
	users      map[string]map[string]*client
	register   chan *client
	unregister chan *client
	pushes     chan push
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		pushes:     make(chan push, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and pushes until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case p := <-h.pushes:
			h.deliver(p)
		}
	}
}

// Wait blocks until Run has returned.
func (h *Hub) Wait() {
	<-h.done
}

// attach registers c. It reports false once the hub has stopped.
func (h *Hub) attach(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Push queues payload for every connection of userID. A full queue drops
// the push; clients reload their inbox on reconnect.
func (h *Hub) Push(userID string, payload any) {
	select {
	case h.pushes <- push{userID: userID, payload: payload}:
	default:
		log.Printf("[hub] Warning: push queue full, notification for %s dropped", userID)
	}
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[string]*client)
	}
	h.users[c.userID][c.id] = c
	log.Printf("[hub] Client %s of %s registered", c.id, c.userID)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.users[c.userID]
	if !ok {
		return
	}
	delete(conns, c.id)
	if len(conns) == 0 {
		delete(h.users, c.userID)
	}
	log.Printf("[hub] Client %s of %s unregistered", c.id, c.userID)
}

func (h *Hub) deliver(p push) {
	data, err := json.Marshal(p.payload)
	if err != nil {
		log.Printf("[hub] Failed to marshal push: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.users[p.userID] {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[hub] Failed to send to client %s: %v", c.id, err)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.users {
		for _, c := range conns {
			_ = c.conn.Close()
		}
	}
	h.users = make(map[string]map[string]*client)
}
