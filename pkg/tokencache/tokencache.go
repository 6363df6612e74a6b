// Package tokencache holds vendor auth tokens with a TTL. One Cache instance
// is shared by all vendor adapters in a process; entries are keyed by vendor
// identifier, so cardinality stays bounded by the number of vendors.
package tokencache

import (
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// Cache is a thread-safe token store with lazy TTL expiry. Stale entries are
// never purged in the background; they are masked on read and overwritten by
// the next Set for the same key.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

// Set stores a token under key, valid for ttl from now. The two-field entry
// is replaced atomically under the lock.
func (c *Cache) Set(key, token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the token for key. The second return is false when no entry
// exists or the entry has expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.token, true
}
