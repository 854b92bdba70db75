package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

const clientBuffer = 32

// Client is one live push connection. Messages are read from Messages until the
// hub closes it.
type Client struct {
	ID     string
	UserID int64
	send   chan []byte
}

func (c *Client) Messages() <-chan []byte { return c.send }

// Hub maps a user to the set of their live clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID int64) *Client {
	c := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[userID] = set
	}
	set[c] = struct{}{}
	return c
}

// Unregister removes c and closes its channel. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.send)
}

// Send hands data to one client without blocking. It reports false when the
// client is gone or its buffer is full.
func (h *Hub) Send(c *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.UserID][c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Publish marshals msg once and hands it to every client of userID.
func (h *Hub) Publish(_ context.Context, userID int64, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}
	h.Deliver(userID, data)
	return nil
}

// Deliver sends a pre-encoded frame without blocking. Clients whose buffer is full
// are dropped. Returns the number of clients that accepted the frame.
func (h *Hub) Deliver(userID int64, data []byte) int {
	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("push: dropping slow client user_id=%d client_id=%s", c.UserID, c.ID)
		h.Unregister(c)
	}
	return delivered
}

// Online reports how many clients userID has.
func (h *Hub) Online(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}
