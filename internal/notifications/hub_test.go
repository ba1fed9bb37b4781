package notifications

import (
	"context"
	"testing"

	"bizrwanda/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				return out
			}
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestHub_RegisterLimits(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, models.RoleJobSeeker, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, models.RoleJobSeeker, nil)
	assert.ErrorIs(t, err, ErrUserFull)
	assert.Equal(t, maxConnsPerUser, hub.Count())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, models.RoleEmployer, nil)
	require.NoError(t, err)

	hub.Unregister(c)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.Count())

	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestHub_DispatchUserChannel(t *testing.T) {
	hub := NewHub()
	a, _ := hub.Register(1, models.RoleJobSeeker, nil)
	b, _ := hub.Register(2, models.RoleJobSeeker, nil)

	hub.Dispatch(UserChannel(1), `{"type":"application_status"}`)

	assert.Equal(t, []string{`{"type":"application_status"}`}, drain(a))
	assert.Empty(t, drain(b))
}

func TestHub_DispatchBroadcastHonoursAudience(t *testing.T) {
	hub := NewHub()
	seeker, _ := hub.Register(1, models.RoleJobSeeker, nil)
	emp, _ := hub.Register(2, models.RoleEmployer, nil)
	adm, _ := hub.Register(3, models.RoleAdmin, nil)

	hub.Dispatch(BroadcastChannel, `{"type":"platform_notification","audience":"employer","payload":{}}`)
	assert.Empty(t, drain(seeker))
	assert.Len(t, drain(emp), 1)
	assert.Len(t, drain(adm), 1)

	hub.Dispatch(BroadcastChannel, `{"type":"platform_notification","payload":{}}`)
	assert.Len(t, drain(seeker), 1)
	assert.Len(t, drain(emp), 1)
}

func TestHub_DispatchIgnoresBadInput(t *testing.T) {
	hub := NewHub()
	c, _ := hub.Register(1, models.RoleJobSeeker, nil)

	hub.Dispatch(BroadcastChannel, "not json")
	hub.Dispatch("notifications:user:abc", "x")
	hub.Dispatch("other:channel", "x")
	assert.Empty(t, drain(c))
}

func TestHub_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, _ := hub.Register(1, models.RoleJobSeeker, nil)
	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	c, _ := hub.Register(1, models.RoleJobSeeker, nil)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count())

	c.TrySend([]byte("late"))
	hub.Unregister(c)

	_, err := hub.Register(2, models.RoleJobSeeker, nil)
	assert.ErrorIs(t, err, ErrServerFull)
}
