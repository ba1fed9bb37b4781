package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	wsTicketTTL   = 30 * time.Second
	wsTicketGrace = 10 * time.Second
)

type consumedTicketEntry struct {
	userID    uint
	consumeAt time.Time
}

func wsTicketKey(ticket string) string {
	return fmt.Sprintf("ws_ticket:%s", ticket)
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// consumeTicket redeems a websocket ticket. Redis deletes it atomically on
// first use; repeat passes within wsTicketGrace are served from memory.
func (s *Server) consumeTicket(ctx context.Context, ticket string) (uint, bool) {
	now := time.Now()

	s.consumedTicketsMu.Lock()
	for t, entry := range s.consumedTickets {
		if now.Sub(entry.consumeAt) > wsTicketGrace {
			delete(s.consumedTickets, t)
		}
	}
	if entry, ok := s.consumedTickets[ticket]; ok {
		s.consumedTicketsMu.Unlock()
		return entry.userID, true
	}
	s.consumedTicketsMu.Unlock()

	if s.redis == nil {
		return 0, false
	}
	raw, err := s.redis.GetDel(ctx, wsTicketKey(ticket)).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || userID == 0 {
		return 0, false
	}

	s.consumedTicketsMu.Lock()
	s.consumedTickets[ticket] = consumedTicketEntry{userID: uint(userID), consumeAt: now}
	s.consumedTicketsMu.Unlock()
	return uint(userID), true
}

func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if jti == "" || s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, blacklistKey(jti)).Result()
	return err == nil && n > 0
}

// AuthRequired returns the authentication middleware. It accepts a bearer
// token, a ?token= query parameter outside /api/ws, or a single-use ticket on
// /api/ws, and attaches the signed-in user to the request.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws")

		var userID uint
		if ticket := c.Query("ticket"); ticket != "" && isWSPath {
			id, ok := s.consumeTicket(c.UserContext(), ticket)
			if !ok {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
			userID = id
			c.Locals("wsTicket", ticket)
		} else {
			tokenString := middleware.BearerToken(c)
			// Reject token in query param for WS routes (must use ticket)
			if tokenString == "" && !isWSPath {
				tokenString = c.Query("token")
			}

			claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
			if err != nil {
				msg := "Invalid or expired token"
				if errors.Is(err, middleware.ErrMissingToken) {
					msg = "Authorization required"
				}
				return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
			}
			if s.isRevoked(c.UserContext(), claims.JTI) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
			userID = claims.UserID
			c.Locals("tokenClaims", claims)
		}

		user, err := s.userRepo.GetByID(c.UserContext(), userID)
		if err != nil {
			if models.IsNotFound(err) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists"))
			}
			return respondError(c, err)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

// requireRole builds a guard admitting only the given roles. It must run
// after AuthRequired.
func requireRole(message string, roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError(message))
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
func (s *Server) AdminRequired() fiber.Handler {
	return requireRole("Admin access required", models.RoleAdmin)
}

// EmployerRequired admits employers and admins.
func (s *Server) EmployerRequired() fiber.Handler {
	return requireRole("Employer access required", models.RoleEmployer, models.RoleAdmin)
}

// JobSeekerRequired admits job seekers only.
func (s *Server) JobSeekerRequired() fiber.Handler {
	return requireRole("Only job seekers can do this", models.RoleJobSeeker)
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func currentActor(c *fiber.Ctx) service.Actor {
	user := currentUser(c)
	if user == nil {
		return service.Actor{}
	}
	return service.ActorFromUser(user)
}

// storeWSTicket records a single-use ticket for userID.
func (s *Server) storeWSTicket(ctx context.Context, ticket string, userID uint) error {
	return s.redis.Set(ctx, wsTicketKey(ticket), strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err()
}

// optionalUser resolves the bearer token on a public route. Anonymous,
// invalid and revoked tokens all yield nil.
func (s *Server) optionalUser(c *fiber.Ctx) *models.User {
	if user := currentUser(c); user != nil {
		return user
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, middleware.BearerToken(c))
	if err != nil || s.isRevoked(c.UserContext(), claims.JTI) {
		return nil
	}
	user, err := s.userRepo.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
