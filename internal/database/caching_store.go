package database

import (
	"context"
	"log/slog"

	"mongoutils/internal/cache"
	"mongoutils/internal/document"

	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a DocumentStore and caches single-document reads.
type CachingStore struct {
	store  DocumentStore
	cache  cache.Cache
	flight singleflight.Group
}

// NewCachingStore creates a new CachingStore.
func NewCachingStore(store DocumentStore, c cache.Cache) *CachingStore {
	return &CachingStore{
		store: store,
		cache: c,
	}
}

func cacheKey(collection string, id any) string {
	return collection + "/" + document.FormatID(id)
}

// Get retrieves a document by ID, checking the cache first. Concurrent
// misses for the same key share one load, which keeps running when the
// caller that started it goes away.
func (c *CachingStore) Get(ctx context.Context, collection string, id any) (*document.Document, error) {
	key := cacheKey(collection, id)
	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		return c.cache.Take(loadCtx, key, func() ([]byte, error) {
			doc, err := c.store.Get(loadCtx, collection, id)
			if err != nil {
				return nil, err
			}
			return doc.MarshalExtJSON()
		})
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return document.UnmarshalExtJSON(collection, res.Val.([]byte))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Find is not cached; projections make cached entries partial.
func (c *CachingStore) Find(ctx context.Context, collection string, ids []any, fields []string) ([]*document.Document, error) {
	return c.store.Find(ctx, collection, ids, fields)
}

func (c *CachingStore) List(ctx context.Context, collection string, offset, limit int) ([]*document.Document, error) {
	return c.store.List(ctx, collection, offset, limit)
}

// Save writes through and invalidates the cached copy.
func (c *CachingStore) Save(ctx context.Context, doc *document.Document) error {
	if err := c.store.Save(ctx, doc); err != nil {
		return err
	}
	c.invalidate(ctx, doc)
	return nil
}

// Remove deletes through and then invalidates the cached copy, whether or
// not the delete succeeded.
func (c *CachingStore) Remove(ctx context.Context, doc *document.Document) error {
	err := c.store.Remove(ctx, doc)
	c.invalidate(ctx, doc)
	return err
}

func (c *CachingStore) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *CachingStore) invalidate(ctx context.Context, doc *document.Document) {
	key := cacheKey(doc.Collection, doc.ID())
	if err := c.cache.Delete(ctx, key); err != nil {
		slog.Warn("CachingStore: Failed to invalidate cache entry", "key", key, "error", err)
	}
}
