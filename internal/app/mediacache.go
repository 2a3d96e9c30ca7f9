package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MediaCache stages attachment references between a quick-edit command and
// the deferred task-selection callback. Entries carry a TTL and the cache is
// size-bounded, so staged files for a button nobody presses cannot pile up.
type MediaCache struct {
	lru *expirable.LRU[string, []string]
}

func NewMediaCache(size int, ttl time.Duration) *MediaCache {
	return &MediaCache{
		lru: expirable.NewLRU[string, []string](size, nil, ttl),
	}
}

// Put stages refs and returns the opaque key to embed in a callback payload.
func (c *MediaCache) Put(refs []string) string {
	key := uuid.NewString()
	c.lru.Add(key, refs)
	return key
}

// Take returns the staged refs and drops the entry; a pending operation is
// consumed exactly once.
func (c *MediaCache) Take(key string) ([]string, bool) {
	refs, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	c.lru.Remove(key)
	return refs, true
}
