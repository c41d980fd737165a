package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyEnabled(t *testing.T) {
	assert.False(t, Policy{}.Enabled())
	assert.True(t, Policy{MaxAge: time.Second}.Enabled())
}

func TestMemoryStore_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	_, ok, err := store.Get(ctx, "stats")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "stats", []byte(`{"a":1}`), 30*time.Second))
	val, ok, err := store.Get(ctx, "stats")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(val))

	now = now.Add(30 * time.Second)
	_, ok, err = store.Get(ctx, "stats")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire at its ttl")
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
