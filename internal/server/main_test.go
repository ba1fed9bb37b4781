package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizrwanda/internal/config"
	"bizrwanda/internal/database"
	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret   = "test-secret-key-12345678901234567890123456789012"
	testPassword = "Kigali#Market2026"
)

// testEnv is a fully wired server on in-memory SQLite and miniredis.
type testEnv struct {
	t     *testing.T
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	mr    *miniredis.Miniredis
	redis *redis.Client
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:   testSecret,
		Env:         "test",
		FrontendURL: "http://app.test",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := newTestDB(t)
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{t: t, srv: srv, app: srv.App(), db: db, mr: mr, redis: rdb}
}

// createUser stores an account directly and returns it with a signed token.
func (e *testEnv) createUser(email string, role models.Role) (*models.User, string) {
	e.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(e.t, err)
	user := &models.User{
		Email:        email,
		FullName:     "Test User",
		Role:         role,
		Password:     string(hash),
		AuthProvider: models.AuthProviderLocal,
	}
	require.NoError(e.t, repository.NewUserRepository(e.db).Create(context.Background(), user))

	token, err := e.srv.generateToken(user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) do(method, path, token string, body interface{}) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
