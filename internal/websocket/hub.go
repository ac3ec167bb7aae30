package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() uuid.UUID
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by user.
// It is safe for concurrent use.
type Hub struct {
	// users maps user ID to a map of client ID to client
	users map[uuid.UUID]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users: make(map[uuid.UUID]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its user
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clientID := client.ID()

	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}

	h.users[userID][clientID] = client

	log.Debug().
		Str("user_id", userID.String()).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clientID := client.ID()

	if clients, ok := h.users[userID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty user maps
			if len(clients) == 0 {
				delete(h.users, userID)
			}

			log.Debug().
				Str("user_id", userID.String()).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients belonging to a specific user
func (h *Hub) Broadcast(userID uuid.UUID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.users[userID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	// Send to each client asynchronously
	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("user_id", userID.String()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients connected for a user
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.users[userID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.users {
		total += len(clients)
	}
	return total
}
