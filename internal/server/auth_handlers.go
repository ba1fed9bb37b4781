package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"bizrwanda/internal/identity"
	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"
	"bizrwanda/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	tokenTTL      = 7 * 24 * time.Hour
	oauthStateTTL = 10 * time.Minute
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary User registration
// @Description Create a job seeker or employer account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,fullName=string,role=string} true "Registration request"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email and password and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(authResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout. The token's jti is blacklisted until
// it would have expired anyway.
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("tokenClaims").(*middleware.TokenClaims)
	if claims != nil && claims.JTI != "" && s.redis != nil {
		ttl := time.Until(claims.ExpiresAt)
		if ttl > 0 {
			if err := s.redis.Set(c.UserContext(), blacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "Failed to blacklist token",
					slog.String("error", err.Error()))
			}
		}
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.authService.Me(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set headers on
// a websocket upgrade, so they trade their bearer token for a short-lived
// single-use ticket passed as ?ticket=.
// @Summary Issue websocket ticket
// @Tags realtime
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{ticket=string,expiresIn=int}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUnavailableError("Live notifications are unavailable"))
	}
	ticket := uuid.NewString()
	if err := s.storeWSTicket(c.UserContext(), ticket, currentUser(c).ID); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":    ticket,
		"expiresIn": int(wsTicketTTL.Seconds()),
	})
}

// FirebaseSync handles POST /api/auth/firebase-sync. It verifies a Firebase
// ID token, links or creates the matching account and returns an API token.
// @Summary Firebase sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{idToken=string,role=string} true "Firebase ID token"
// @Success 200 {object} authResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /auth/firebase-sync [post]
func (s *Server) FirebaseSync(c *fiber.Ctx) error {
	if s.firebase == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUnavailableError("Firebase sign-in is not configured"))
	}

	var req struct {
		IDToken string `json:"idToken"`
		Role    string `json:"role"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	if req.IDToken == "" {
		req.IDToken = middleware.BearerToken(c)
	}
	if req.IDToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("idToken is required"))
	}

	id, err := s.firebase.Verify(c.UserContext(), req.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid Firebase token"))
		}
		return respondError(c, models.NewInternalError(err))
	}

	user, err := s.authService.SyncFirebase(c.UserContext(), id, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(authResponse{Token: token, User: user})
}

func oauthStateKey(state string) string {
	return "oauth_state:" + state
}

// OAuthRedirect starts the authorization code flow for the named provider.
func (s *Server) OAuthRedirect(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider := s.oauth[name]
		if provider == nil || !provider.Configured() {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewUnavailableError(name+" sign-in is not configured"))
		}
		if s.redis == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewUnavailableError("Social sign-in is unavailable"))
		}

		state := uuid.NewString()
		if err := s.redis.Set(c.UserContext(), oauthStateKey(state), name, oauthStateTTL).Err(); err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		return c.Redirect(provider.AuthURL(state), fiber.StatusTemporaryRedirect)
	}
}

// OAuthCallback completes the flow and hands the API token to the frontend
// in the URL fragment. Failures land on the login page.
func (s *Server) OAuthCallback(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fail := func(reason string, err error) error {
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "OAuth sign-in failed",
					slog.String("provider", name),
					slog.String("reason", reason),
					slog.String("error", err.Error()),
				)
			}
			return c.Redirect(s.frontendURL("/login?error="+url.QueryEscape(reason)), fiber.StatusFound)
		}

		if errParam := c.Query("error"); errParam != "" {
			return fail(errParam, nil)
		}

		provider := s.oauth[name]
		if provider == nil || !provider.Configured() || s.redis == nil {
			return fail("provider_unavailable", nil)
		}

		state := c.Query("state")
		if state == "" {
			return fail("invalid_state", nil)
		}
		stored, err := s.redis.GetDel(c.UserContext(), oauthStateKey(state)).Result()
		if err != nil || stored != name {
			return fail("invalid_state", err)
		}

		id, err := provider.Exchange(c.UserContext(), c.Query("code"))
		if err != nil {
			return fail("exchange_failed", err)
		}
		user, err := s.authService.UpsertOAuthUser(c.UserContext(), id)
		if err != nil {
			return fail("account_error", err)
		}
		token, err := s.generateToken(user.ID)
		if err != nil {
			return fail("token_error", err)
		}
		return c.Redirect(s.frontendURL("/auth/callback#token="+url.QueryEscape(token)), fiber.StatusFound)
	}
}

func (s *Server) frontendURL(path string) string {
	base := s.config.FrontendURL
	if base == "" {
		base = "http://localhost:5173"
	}
	return base + path
}

// generateToken creates a JWT for the given user ID
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	return middleware.IssueToken(s.config.JWTSecret, userID, s.generateJTI(), tokenTTL)
}

// generateJTI creates a unique JWT ID so single tokens can be revoked
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
