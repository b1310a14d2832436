package persist

import (
	"context"

	"mongoutils/internal/document"
	"mongoutils/internal/future"
)

// Store is the persistence collaborator the adapters drive.
type Store interface {
	Get(ctx context.Context, collection string, id any) (*document.Document, error)
	Find(ctx context.Context, collection string, ids []any, fields []string) ([]*document.Document, error)
	List(ctx context.Context, collection string, offset, limit int) ([]*document.Document, error)
	Save(ctx context.Context, doc *document.Document) error
	Remove(ctx context.Context, doc *document.Document) error
}

// Save persists doc and resolves with it. Store failures are forwarded
// unchanged.
func Save(ctx context.Context, store Store, doc *document.Document) *future.Future[*document.Document] {
	return future.Go(ctx, func(ctx context.Context) (*document.Document, error) {
		if err := store.Save(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

// Remove deletes doc and resolves with it. Store failures are forwarded
// unchanged.
func Remove(ctx context.Context, store Store, doc *document.Document) *future.Future[*document.Document] {
	return future.Go(ctx, func(ctx context.Context) (*document.Document, error) {
		if err := store.Remove(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	})
}
