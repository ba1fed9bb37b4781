// Package service holds the marketplace business rules that sit between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"time"

	"bizrwanda/internal/models"
)

// Actor is the authenticated caller an operation runs on behalf of.
type Actor struct {
	UserID uint
	Role   models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanPost reports whether the actor may submit listings and company profiles.
func (a Actor) CanPost() bool {
	return a.Role == models.RoleEmployer || a.Role == models.RoleAdmin
}

// ActorFromUser builds the Actor for a loaded user.
func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// Broadcaster pushes live events to connected clients. The notifications
// package provides the Redis-backed implementation.
type Broadcaster interface {
	BroadcastPlatform(ctx context.Context, n *models.PlatformNotification) error
	NotifyUser(ctx context.Context, userID uint, event string, payload interface{}) error
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastPlatform(context.Context, *models.PlatformNotification) error {
	return nil
}

func (noopBroadcaster) NotifyUser(context.Context, uint, string, interface{}) error { return nil }
