package gallery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsCreateAndGet(t *testing.T) {
	sessions := NewSessions(newCatalog(t), SessionOptions{PageSize: 6, CleanupInterval: -1})
	defer sessions.Close()

	id, ctl, err := sessions.Create()
	require.NoError(t, err)
	assert.Len(t, id, 24)

	got, ok := sessions.Get(id)
	require.True(t, ok)
	assert.Same(t, ctl, got)

	state, err := got.Apply(context.Background(), Intent{})
	require.NoError(t, err)
	assert.Len(t, state.Items, 6)

	other, _, err := sessions.Create()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, sessions.Len())

	_, ok = sessions.Get("unknown")
	assert.False(t, ok)
	_, ok = sessions.Get("")
	assert.False(t, ok)
}

func TestSessionsDeleteClosesController(t *testing.T) {
	sessions := NewSessions(newCatalog(t), SessionOptions{CleanupInterval: -1})
	defer sessions.Close()

	id, ctl, err := sessions.Create()
	require.NoError(t, err)

	sessions.Delete(id)

	_, ok := sessions.Get(id)
	assert.False(t, ok)
	_, err = ctl.Apply(context.Background(), Intent{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionsExpireAfterTTL(t *testing.T) {
	sessions := NewSessions(newCatalog(t), SessionOptions{TTL: 20 * time.Millisecond, CleanupInterval: -1})
	defer sessions.Close()

	id, ctl, err := sessions.Create()
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, ok := sessions.Get(id)
	assert.False(t, ok, "an expired session must not be re-armed")

	sessions.Close()
	assert.Zero(t, sessions.Len())
	_, err = ctl.Apply(context.Background(), Intent{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSessionsGetDropsClosedController(t *testing.T) {
	sessions := NewSessions(newCatalog(t), SessionOptions{CleanupInterval: -1})
	defer sessions.Close()

	id, ctl, err := sessions.Create()
	require.NoError(t, err)

	// closed while its entry is still registered
	ctl.Close()

	_, ok := sessions.Get(id)
	assert.False(t, ok)
	assert.Zero(t, sessions.Len())
	_, ok = sessions.Get(id)
	assert.False(t, ok, "a dropped session must stay gone")
}

func TestSessionsCloseClosesAll(t *testing.T) {
	sessions := NewSessions(newCatalog(t), SessionOptions{CleanupInterval: -1})

	var controllers []*Controller
	for i := 0; i < 3; i++ {
		_, ctl, err := sessions.Create()
		require.NoError(t, err)
		controllers = append(controllers, ctl)
	}

	sessions.Close()

	assert.Zero(t, sessions.Len())
	for _, ctl := range controllers {
		_, err := ctl.LoadMore(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
	}
	assert.Equal(t, DefaultSessionTTL, sessions.TTL())
}
