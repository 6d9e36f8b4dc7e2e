// Package cache provides a size and TTL bounded cache for generation
// results. Values are story ids, keyed by a fingerprint of the generation
// request, so an identical prompt within the TTL window replays the stored
// story instead of spending provider quota again. Staleness is tolerated:
// callers must re-check that the story still exists and fall through to
// regeneration when it does not.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Results is an in-memory LRU holding generation outcomes. Capacity bounds
// memory; the TTL bounds how long a prompt keeps replaying the same story.
type Results struct {
	cache *lru.Cache
	ttl   time.Duration
	mu    sync.RWMutex
}

type resultEntry struct {
	storyID   int64
	expiresAt time.Time
}

// NewResults creates a cache with the given capacity. ttl <= 0 disables
// expiry, leaving only LRU eviction.
func NewResults(maxSize int, ttl time.Duration) (*Results, error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &Results{cache: c, ttl: ttl}, nil
}

// Get returns the cached story id for key. Expired entries are dropped and
// reported as misses.
func (c *Results) Get(key string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, found := c.cache.Get(key)
	if !found {
		return 0, false
	}
	entry := val.(resultEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return 0, false
	}
	return entry.storyID, true
}

// Set records the story id for key.
func (c *Results) Set(key string, storyID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := resultEntry{storyID: storyID}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.cache.Add(key, entry)
}

// Remove drops the entry for key. Used when a cached story turns out to be
// deleted.
func (c *Results) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(key)
}

// Len reports the number of live entries, expired or not.
func (c *Results) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Len()
}

// Key fingerprints the request parts into a fixed-size hex string. Parts are
// separated by a NUL byte so ("ab","c") and ("a","bc") never collide.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
