package secrets

import (
	"sync"
	"time"
)

// secretCache is a small TTL cache so hot callback paths do not hit the
// secret backend on every request.
type secretCache struct {
	mu        sync.RWMutex
	value     string
	expiresAt time.Time
	ttl       time.Duration
}

func newSecretCache(ttl time.Duration) *secretCache {
	return &secretCache{ttl: ttl}
}

func (c *secretCache) get() (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == "" || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.value, true
}

func (c *secretCache) set(value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.expiresAt = time.Now().Add(c.ttl)
}
