package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizrwanda/internal/config"
	"bizrwanda/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthRequired_WSTicket(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	// Setup Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	mockRepo := new(MockUserRepository)
	for _, id := range []uint{123, 456, 789} {
		mockRepo.On("GetByID", mock.Anything, id).Return(&models.User{ID: id, Role: models.RoleJobSeeker}, nil)
	}

	// Setup Server with in-process ticket cache
	s := &Server{
		config:          &config.Config{JWTSecret: testSecret},
		redis:           rdb,
		userRepo:        mockRepo,
		consumedTickets: make(map[string]consumedTicketEntry),
	}

	app := fiber.New()

	// Define a WS route and a regular route both using AuthRequired
	app.Get("/api/ws/test", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":   c.Locals("userID"),
			"wsTicket": c.Locals("wsTicket"),
		})
	})

	app.Get("/api/other", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals("userID"),
		})
	})

	ctx := context.Background()

	t.Run("WS Path - Ticket consumed from Redis but cached in-process", func(t *testing.T) {
		ticket := "ws-test-ticket-1"
		key := fmt.Sprintf("ws_ticket:%s", ticket)

		err := rdb.Set(ctx, key, "123", time.Minute).Err()
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// GETDEL removes the ticket from Redis on first use
		exists, err := rdb.Exists(ctx, key).Result()
		assert.NoError(t, err)
		assert.Equal(t, int64(0), exists, "Ticket should be consumed from Redis via GETDEL")

		s.consumedTicketsMu.Lock()
		_, inCache := s.consumedTickets[ticket]
		s.consumedTicketsMu.Unlock()
		assert.True(t, inCache, "Ticket should be cached in-process after GETDEL")

		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, float64(123), body["userID"])
		assert.Equal(t, ticket, body["wsTicket"])
		_ = resp.Body.Close()
	})

	t.Run("WS Path - Second pass uses in-process cache", func(t *testing.T) {
		ticket := "ws-test-ticket-2"
		key := fmt.Sprintf("ws_ticket:%s", ticket)

		err := rdb.Set(ctx, key, "789", time.Minute).Err()
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		req2 := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp2, err := app.Test(req2)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp2.StatusCode, "Second pass should succeed via in-process cache")

		var body map[string]interface{}
		_ = json.NewDecoder(resp2.Body).Decode(&body)
		assert.Equal(t, float64(789), body["userID"])
		_ = resp2.Body.Close()
	})

	t.Run("Non-WS Path - Ticket is not a credential", func(t *testing.T) {
		ticket := "other-test-ticket-1"
		key := fmt.Sprintf("ws_ticket:%s", ticket)

		err := rdb.Set(ctx, key, "456", time.Minute).Err()
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/other?ticket="+ticket, nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()

		// Untouched, so it can still be redeemed on the websocket route
		exists, err := rdb.Exists(ctx, key).Result()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("Invalid Ticket - WS Path returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket=invalid", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestServer_ConsumeTicket(t *testing.T) {
	s := &Server{
		consumedTickets: make(map[string]consumedTicketEntry),
	}
	ctx := context.Background()

	t.Run("Cached ticket within grace is accepted without Redis", func(t *testing.T) {
		s.consumedTicketsMu.Lock()
		s.consumedTickets["fresh"] = consumedTicketEntry{userID: 5, consumeAt: time.Now()}
		s.consumedTicketsMu.Unlock()

		userID, ok := s.consumeTicket(ctx, "fresh")
		assert.True(t, ok)
		assert.Equal(t, uint(5), userID)
	})

	t.Run("Cached ticket past grace is evicted", func(t *testing.T) {
		s.consumedTicketsMu.Lock()
		s.consumedTickets["stale"] = consumedTicketEntry{userID: 5, consumeAt: time.Now().Add(-2 * wsTicketGrace)}
		s.consumedTicketsMu.Unlock()

		_, ok := s.consumeTicket(ctx, "stale")
		assert.False(t, ok)

		s.consumedTicketsMu.Lock()
		_, exists := s.consumedTickets["stale"]
		s.consumedTicketsMu.Unlock()
		assert.False(t, exists, "Stale ticket should be evicted from in-process cache")
	})

	t.Run("Unknown ticket without Redis", func(t *testing.T) {
		_, ok := s.consumeTicket(ctx, "never-issued")
		assert.False(t, ok)
	})
}
