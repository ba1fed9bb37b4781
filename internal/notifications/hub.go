package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps user IDs to their open connections.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID uint, role models.Role, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID, role)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// Unregister removes a connection and closes its send buffer.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// SendToUser queues message on every connection of userID.
func (h *Hub) SendToUser(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.TrySend(message)
	}
}

// SendToAudience queues message on every connection whose role may see a
// notification addressed to audience.
func (h *Hub) SendToAudience(audience string, message []byte) {
	probe := models.PlatformNotification{Audience: audience, IsActive: true}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			if probe.VisibleTo(c.Role) {
				c.TrySend(message)
			}
		}
	}
}

// Dispatch routes one pub/sub message to the matching connections.
func (h *Hub) Dispatch(channel, payload string) {
	if channel == BroadcastChannel {
		var env struct {
			Audience string `json:"audience"`
		}
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			middleware.Logger.Warn("dropping malformed broadcast", slog.String("error", err.Error()))
			return
		}
		h.SendToAudience(env.Audience, []byte(payload))
		return
	}

	var userID uint
	if !strings.HasPrefix(channel, "notifications:user:") {
		middleware.Logger.Warn("invalid notification channel", slog.String("channel", channel))
		return
	}
	if _, err := fmt.Sscanf(channel, "notifications:user:%d", &userID); err != nil {
		middleware.Logger.Warn("invalid notification channel", slog.String("channel", channel))
		return
	}
	h.SendToUser(userID, []byte(payload))
}

// StartWiring subscribes the hub to the notifier's channels.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.Dispatch)
}

// Shutdown closes every send buffer; each WritePump then writes a close
// frame and closes its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.WebSocketConnectionsTotal.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
