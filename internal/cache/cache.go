package cache

import "context"

// Cache is a cache interface for []byte data
type Cache interface {
	// Take tries to get value from cache by key.
	// If cache miss, calls loader function to load data, cache it, and return.
	Take(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error)
	// Delete drops key from the cache.
	Delete(ctx context.Context, key string) error
}

// NoOpCache is a cache implementation that always calls the loader (no caching)
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Take always calls the loader (no caching)
func (c *NoOpCache) Take(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error) {
	return loader()
}

func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}
