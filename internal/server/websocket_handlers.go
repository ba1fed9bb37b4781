package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventConnected is the first event a new socket receives. Its payload is
// the announcements currently visible to the user.
const EventConnected = "connected"

// WebsocketHandler handles GET /api/ws. The socket is receive-only for the
// client: platform announcements and application status changes are pushed
// through the hub.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(s.serveNotifications)
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if s.hub == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewUnavailableError("Live notifications are unavailable"))
		}
		return upgrade(c)
	}
}

func (s *Server) serveNotifications(conn *websocket.Conn) {
	user, _ := conn.Locals("user").(*models.User)
	if user == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
		_ = conn.Close()
		return
	}

	client, err := s.hub.Register(user.ID, user.Role, conn)
	if err != nil {
		middleware.Logger.Warn("WebSocket registration rejected",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
		_ = conn.Close()
		return
	}

	middleware.Logger.Debug("WebSocket connected", slog.Uint64("user_id", uint64(user.ID)))
	if welcome := s.connectedEvent(user); welcome != nil {
		client.TrySend(welcome)
	}

	go client.WritePump()
	client.ReadPump()
}

// connectedEvent snapshots the announcements visible to user so a client
// that reconnects does not miss ones published while it was away.
func (s *Server) connectedEvent(user *models.User) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	active, err := s.adminService.Notifications(ctx, true, user.Role)
	if err != nil {
		middleware.Logger.Warn("Failed to load notifications for websocket",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
		active = nil
	}
	if active == nil {
		active = []models.PlatformNotification{}
	}

	data, err := json.Marshal(notifications.Event{Type: EventConnected, Payload: active})
	if err != nil {
		return nil
	}
	return data
}
