package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache implements Cache using an in-memory map with TTL. A zero TTL
// keeps entries until they are deleted.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	value      []byte
	expireTime time.Time
}

// NewMemoryCache creates a new memory cache with TTL support
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *MemoryCache) Take(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if ok && (c.ttl <= 0 || c.now().Before(entry.expireTime)) {
		return entry.value, nil
	}

	value, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.data[key] = &cacheEntry{
		value:      value,
		expireTime: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return value, nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
