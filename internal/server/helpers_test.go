package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizrwanda/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gormDB, mock
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"companyId", "company ID"},
		{"featuredSectionId", "featured section ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parseID ---

func TestParseID_ValidID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(42), body["id"])
}

func TestParseID_Rejects(t *testing.T) {
	tests := []struct {
		param       string
		path        string
		expectedMsg string
	}{
		{"id", "/items/abc", "Invalid ID"},
		{"id", "/items/0", "Invalid ID"},
		{"id", "/items/-3", "Invalid ID"},
		{"userId", "/items/abc", "Invalid user ID"},
		{"companyId", "/items/abc", "Invalid company ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param+tt.path, func(t *testing.T) {
			app := fiber.New()
			s := &Server{}
			app.Get("/items/:"+tt.param, func(c *fiber.Ctx) error {
				if _, err := s.parseID(c, tt.param); err != nil {
					return nil
				}
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedMsg, body.Error)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}
}

// --- respondError ---

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", models.NewNotFoundError("Listing", 9), http.StatusNotFound, "Listing with ID 9 not found"},
		{"forbidden", models.NewForbiddenError("nope"), http.StatusForbidden, "nope"},
		{"conflict", models.NewConflictError("twice"), http.StatusConflict, "twice"},
		{"internal", models.NewInternalError(errors.New("db down")), http.StatusInternalServerError, "Internal server error"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Error)
			assert.Empty(t, body.Details, "server errors must not leak details")
		})
	}
}

// --- role guards ---

func withUser(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("userID", user.ID)
			c.Locals("user", user)
		}
		return c.Next()
	}
}

func TestRoleGuards(t *testing.T) {
	s := &Server{}
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	employer := &models.User{ID: 2, Role: models.RoleEmployer}
	seeker := &models.User{ID: 3, Role: models.RoleJobSeeker}

	tests := []struct {
		name    string
		guard   fiber.Handler
		user    *models.User
		status  int
		message string
	}{
		{"admin allowed", s.AdminRequired(), admin, http.StatusOK, ""},
		{"employer is not admin", s.AdminRequired(), employer, http.StatusForbidden, "Admin access required"},
		{"employer allowed", s.EmployerRequired(), employer, http.StatusOK, ""},
		{"admin may act as employer", s.EmployerRequired(), admin, http.StatusOK, ""},
		{"seeker is not employer", s.EmployerRequired(), seeker, http.StatusForbidden, "Employer access required"},
		{"seeker allowed", s.JobSeekerRequired(), seeker, http.StatusOK, ""},
		{"employer cannot apply", s.JobSeekerRequired(), employer, http.StatusForbidden, "Only job seekers can do this"},
		{"anonymous", s.AdminRequired(), nil, http.StatusUnauthorized, "Authorization required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/guarded", withUser(tt.user), tt.guard, func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"ok": true})
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.message != "" {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.message, body.Error)
			}
		})
	}
}

// --- readiness ---

func TestReadinessCheck(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		s := &Server{db: gormDB}
		mock.ExpectPing()

		app := fiber.New()
		app.Get("/health/ready", s.ReadinessCheck)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "unavailable", checks["redis"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database down", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		s := &Server{db: gormDB}
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		app := fiber.New()
		app.Get("/health/ready", s.ReadinessCheck)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
