package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/builder/internal/models"
)

func TestKey(t *testing.T) {
	k := Key("token")
	assert.Len(t, k, 64)
	assert.Equal(t, k, Key("token"))
	assert.NotEqual(t, k, Key("other"))
	assert.NotContains(t, k, "token")
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := New("tok", models.User{ID: "1"})
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func testStore(t *testing.T, store Store, expire func(time.Duration)) {
	t.Helper()
	ctx := context.Background()
	s := New("tok", models.User{ID: "7", Email: "a@b.c", Name: "Ada"})

	_, err := store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, s, time.Minute))
	got, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.User, got.User)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, store.Clear(ctx, s.ID))
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, s, time.Minute))
	expire(2 * time.Minute)
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound, "expired sessions are gone")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	m.now = func() time.Time { return now }
	testStore(t, m, func(d time.Duration) { now = now.Add(d) })
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	testStore(t, NewRedisStore(client), mr.FastForward)
}
