package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"playerscout/internal/search"
	"playerscout/internal/view"

	"github.com/gin-gonic/gin"
)

// EventSearch is the SSE event name for workflow transitions
const EventSearch = "search"

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan Event
}

// Event is one workflow transition pushed to the browser
type Event struct {
	SessionID string          `json:"session_id"`
	EventType string          `json:"event_type"`
	Snapshot  search.Snapshot `json:"snapshot"`
	View      view.PlayerView `json:"view"`
	Timestamp time.Time       `json:"timestamp"`
}

// SnapshotSource supplies the current state of a session to newly connected clients
type SnapshotSource interface {
	Current(sessionID string) (Event, bool)
}

// SSEHub fans workflow transitions out to the browsers watching each session
type SSEHub struct {
	clients    map[string]map[chan Event]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan Event
	done       chan struct{}
	closeOnce  sync.Once

	// PingInterval is how often an idle stream gets a keep-alive
	PingInterval time.Duration
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:      make(map[string]map[chan Event]bool),
		register:     make(chan SSEClient),
		unregister:   make(chan SSEClient, 10),
		broadcast:    make(chan Event, 100),
		done:         make(chan struct{}),
		PingInterval: 30 * time.Second,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan Event]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			log.Printf("[SSE] Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				delete(clients, client.Channel)
				log.Printf("[SSE] Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			if clients, exists := h.clients[event.SessionID]; exists {
				for clientChan := range clients {
					select {
					case clientChan <- event:
					default:
						log.Printf("[SSE] Client channel full for session %s, skipping event",
							event.SessionID)
					}
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Close stops the hub loop. Open streams end when their requests do.
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Broadcast sends an event to all clients listening to a session
func (h *SSEHub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping %s event for session %s", event.EventType, event.SessionID)
	}
}

// Subscribe registers a client channel for a session. Events broadcast after
// it returns reach the channel.
func (h *SSEHub) Subscribe(ctx context.Context, sessionID string) (chan Event, error) {
	ch := make(chan Event, 16)
	select {
	case h.register <- SSEClient{SessionID: sessionID, Channel: ch}:
		return ch, nil
	case <-h.done:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe removes a client channel
func (h *SSEHub) Unsubscribe(sessionID string, ch chan Event) {
	select {
	case h.unregister <- SSEClient{SessionID: sessionID, Channel: ch}:
	case <-h.done:
	}
}

// HandleSSE streams a session's transitions, starting with its current state
func (h *SSEHub) HandleSSE(source SnapshotSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id parameter required"})
			return
		}

		ctx := c.Request.Context()
		clientChan, err := h.Subscribe(ctx, sessionID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SSE hub registration failed"})
			return
		}
		defer h.Unsubscribe(sessionID, clientChan)

		// read after subscribing so no transition falls between the two
		initial, ok := source.Current(sessionID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		h.send(c, initial)

		ping := time.NewTicker(h.PingInterval)
		defer ping.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case event := <-clientChan:
				h.send(c, event)
				return true

			case <-ping.C:
				c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
				return true

			case <-h.done:
				return false

			case <-ctx.Done():
				return false
			}
		})
	}
}

func (h *SSEHub) send(c *gin.Context, event Event) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("[SSE] Failed to marshal event: %v", err)
		return
	}
	c.SSEvent(event.EventType, string(eventJSON))
	c.Writer.Flush()
}

// GetActiveSessions returns sessions with active SSE clients
func (h *SSEHub) GetActiveSessions() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of active clients for a session
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if clients, exists := h.clients[sessionID]; exists {
		return len(clients)
	}
	return 0
}
