// Package bootstrap wires the process-wide runtime shared by the server and
// the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bizrwanda/internal/cache"
	"bizrwanda/internal/config"
	"bizrwanda/internal/database"
	"bizrwanda/internal/middleware"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/seed"
	"bizrwanda/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDefaults loads the category catalog and landing page sections.
	SeedDefaults bool
}

// InitRuntime connects to DB and Redis and optionally loads reference data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedDefaults {
		if err := seed.Defaults(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed reference data: %w", err)
		}
	}

	return db, r, nil
}

func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if cfg.IsProduction() || !cfg.DevBootstrapAdmin {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@bizrwanda.local"
	}
	if cfg.DevAdminPassword == "" {
		return fmt.Errorf("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	auth := service.NewAuthService(repository.NewUserRepository(db))
	user, created, err := auth.EnsureAdmin(ctx, email, cfg.DevAdminPassword)
	if err != nil {
		return err
	}

	middleware.Logger.Info("Development admin ensured",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("email", user.Email),
		slog.Bool("created", created),
	)
	return nil
}
