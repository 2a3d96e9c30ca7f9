package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaCacheTakeConsumes(t *testing.T) {
	cache := NewMediaCache(8, time.Minute)

	key := cache.Put([]string{"file-1", "text:note"})
	require.NotEmpty(t, key)

	refs, ok := cache.Take(key)
	require.True(t, ok)
	assert.Equal(t, []string{"file-1", "text:note"}, refs)

	// Second take of the same key fails: one staged edit, one application.
	_, ok = cache.Take(key)
	assert.False(t, ok)
}

func TestMediaCacheUnknownKey(t *testing.T) {
	cache := NewMediaCache(8, time.Minute)

	_, ok := cache.Take("no-such-key")
	assert.False(t, ok)
}

func TestMediaCacheDistinctKeys(t *testing.T) {
	cache := NewMediaCache(8, time.Minute)

	k1 := cache.Put([]string{"a"})
	k2 := cache.Put([]string{"b"})
	assert.NotEqual(t, k1, k2)

	refs, ok := cache.Take(k2)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, refs)

	refs, ok = cache.Take(k1)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, refs)
}

func TestMediaCacheTTL(t *testing.T) {
	cache := NewMediaCache(8, 10*time.Millisecond)

	key := cache.Put([]string{"a"})
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Take(key)
	assert.False(t, ok)
}
