package database

import (
	"context"
	"errors"

	"mongoutils/internal/persist"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentStore is a persist.Store that owns a connection.
type DocumentStore interface {
	persist.Store
	Close(ctx context.Context) error
}

var (
	_ DocumentStore = (*MongoStore)(nil)
	_ DocumentStore = (*FileStore)(nil)
	_ DocumentStore = (*CachingStore)(nil)
)
