// Package notifications delivers live events to connected browsers: platform
// announcements to everyone in their audience and application updates to
// individual users. Events travel over Redis pub/sub so every API instance
// can push to the sockets it holds.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// BroadcastChannel carries platform notifications.
	BroadcastChannel   = "notifications:broadcast"
	userChannelPattern = "notifications:user:*"

	// EventPlatformNotification is the event type of a platform announcement.
	EventPlatformNotification = "platform_notification"
)

// Event is the JSON envelope written to sockets.
type Event struct {
	Type string `json:"type"`
	// Audience limits a broadcast to one role; empty or "all" reaches everyone.
	Audience string      `json:"audience,omitempty"`
	Payload  interface{} `json:"payload"`
}

// UserChannel returns the pub/sub channel for one user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Notifier publishes events into Redis channels. A Notifier without a Redis
// client is a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a raw payload to every connected client.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// BroadcastPlatform publishes a platform notification to its audience.
func (n *Notifier) BroadcastPlatform(ctx context.Context, pn *models.PlatformNotification) error {
	data, err := json.Marshal(Event{Type: EventPlatformNotification, Audience: pn.Audience, Payload: pn})
	if err != nil {
		return fmt.Errorf("marshal platform notification: %w", err)
	}
	return n.PublishBroadcast(ctx, string(data))
}

// NotifyUser publishes a typed event to one user.
func (n *Notifier) NotifyUser(ctx context.Context, userID uint, event string, payload interface{}) error {
	data, err := json.Marshal(Event{Type: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	return n.PublishUser(ctx, userID, string(data))
}

// StartPatternSubscriber subscribes to the broadcast channel and every user
// channel, calling onMessage for each message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern, BroadcastChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
