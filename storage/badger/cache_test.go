package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/rankfuse/core"
)

func TestCachePutGet(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	key := core.IDFromContent("embeddinggemma\x00employee training period")
	vector := []float32{0.1, -0.5, 0.9}

	require.NoError(t, cache.Put(ctx, key, vector))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vector, got)
}

func TestCacheGetMissing(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get(context.Background(), core.ID(12345))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachePutOverwrites(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	key := core.ID(7)

	require.NoError(t, cache.Put(ctx, key, []float32{1, 2, 3}))
	require.NoError(t, cache.Put(ctx, key, []float32{4, 5, 6}))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{4, 5, 6}, got)
}

func TestCacheDistinctKeys(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, core.ID(1), []float32{1}))
	require.NoError(t, cache.Put(ctx, core.ID(2), []float32{2}))

	got, ok, err := cache.Get(ctx, core.ID(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{1}, got)
}
