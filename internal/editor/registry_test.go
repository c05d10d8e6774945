package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/builder/internal/draft"
)

func TestRegistryOwnership(t *testing.T) {
	reg := NewRegistry(0, nil)
	store := draft.New(nil)
	id := reg.Open("alice", store)

	got, err := reg.Get("alice", id)
	require.NoError(t, err)
	assert.Same(t, store, got)

	_, err = reg.Get("bob", id)
	assert.ErrorIs(t, err, ErrDraftNotFound, "drafts are private to their session")
	assert.ErrorIs(t, reg.Close("bob", id), ErrDraftNotFound)

	require.NoError(t, reg.Close("alice", id))
	assert.True(t, store.Discarded())
	_, err = reg.Get("alice", id)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestRegistryDiscardOwner(t *testing.T) {
	reg := NewRegistry(0, nil)
	a1, a2, b := draft.New(nil), draft.New(nil), draft.New(nil)
	reg.Open("alice", a1)
	reg.Open("alice", a2)
	reg.Open("bob", b)

	assert.Equal(t, 2, reg.DiscardOwner("alice"))
	assert.True(t, a1.Discarded())
	assert.True(t, a2.Discarded())
	assert.False(t, b.Discarded())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistrySweepsIdleDrafts(t *testing.T) {
	reg := NewRegistry(time.Hour, nil)
	now := time.Now()
	reg.now = func() time.Time { return now }

	idle := draft.New(nil)
	busy := draft.New(nil)
	idleID := reg.Open("alice", idle)
	busyID := reg.Open("alice", busy)

	now = now.Add(50 * time.Minute)
	_, err := reg.Get("alice", busyID)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	reg.Open("bob", draft.New(nil))

	assert.True(t, idle.Discarded())
	assert.False(t, busy.Discarded(), "touched drafts survive the sweep")
	_, err = reg.Get("alice", idleID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.Equal(t, 2, reg.Len())
}
