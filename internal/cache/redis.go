// Package cache holds the process-wide Redis client and the cache-aside
// helpers repositories read through. Every helper is a no-op without Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bizrwanda/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds failed commands into the redis_errors_total metric.
// redis.Nil is a miss, not a failure.
type errorCounter struct{}

func (errorCounter) count(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(name).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.count(cmd.Name(), err)
		return err
	}
}

func (h errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		h.count("pipeline", err)
		return err
	}
}

// Options turns REDIS_URL into client options. Both a bare host:port and a
// redis:// or rediss:// URL are accepted.
func Options(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("empty redis address")
	}
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return opts, nil
}

// Connect dials Redis and pings it once.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := Options(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	c.AddHook(errorCounter{})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return c, nil
}

// InitRedis connects the package client. When Redis is unreachable the
// process keeps running without a cache, tickets or live push.
func InitRedis(addr string) {
	c, err := Connect(context.Background(), addr)
	if err != nil {
		observability.GlobalLogger.Warn("Redis unavailable, continuing without it", slog.String("error", err.Error()))
		client = nil
		return
	}
	client = c
	observability.GlobalLogger.Info("Redis connected", slog.String("addr", c.Options().Addr))
}

// SetClient replaces the package client. Tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorCounter{})
	}
	client = c
}

// GetClient returns the package client, or nil when Redis is disabled.
func GetClient() *redis.Client {
	return client
}
