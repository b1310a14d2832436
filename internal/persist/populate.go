package persist

import (
	"context"
	"fmt"
	"strings"

	"mongoutils/internal/deep"
	"mongoutils/internal/document"
	"mongoutils/internal/future"
)

// PopulateOptions describes one relation to resolve.
type PopulateOptions struct {
	// ObjPath locates the object, or array of objects, holding the
	// reference. Empty means the document itself.
	ObjPath string
	// Path is the field, relative to each object, that holds the reference
	// or array of references.
	Path string
	// Collection is where referenced documents live.
	Collection string
	// Select restricts the fields copied from referenced documents.
	Select []string
}

// PathError reports an object path segment missing from the document.
type PathError struct {
	Segment string
	ObjPath string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %s in %s", e.Segment, e.ObjPath)
}

// Populate returns an adapter that replaces references with the documents
// they point to. Every object found at ObjPath is populated concurrently and
// the returned future resolves with the same document once all lookups are
// done, or rejects with the first failure.
func Populate(store Store, opts PopulateOptions) func(ctx context.Context, doc *document.Document) *future.Future[*document.Document] {
	return func(ctx context.Context, doc *document.Document) *future.Future[*document.Document] {
		if doc == nil {
			return future.Resolved(doc)
		}

		target, err := resolveObjPath(doc, opts.ObjPath)
		if err != nil {
			return future.Rejected[*document.Document](err)
		}

		var pending []*future.Future[struct{}]
		if items, ok := deep.AsSlice(target); ok {
			for _, item := range items {
				if obj, ok := deep.AsMap(item); ok {
					pending = append(pending, populateOne(ctx, store, obj, opts))
				}
			}
		} else if obj, ok := deep.AsMap(target); ok {
			pending = append(pending, populateOne(ctx, store, obj, opts))
		}

		return future.Then(ctx, future.All(ctx, pending...), func([]struct{}) (*document.Document, error) {
			return doc, nil
		})
	}
}

func resolveObjPath(doc *document.Document, objPath string) (any, error) {
	var current any = map[string]any(doc.Fields)
	if objPath == "" {
		return current, nil
	}
	for _, segment := range strings.Split(objPath, ".") {
		next, ok := deep.Get(current, segment)
		if !ok {
			return nil, &PathError{Segment: segment, ObjPath: objPath}
		}
		current = next
	}
	return current, nil
}

func populateOne(ctx context.Context, store Store, obj map[string]any, opts PopulateOptions) *future.Future[struct{}] {
	ref, ok := deep.Get(obj, opts.Path)
	if !ok || ref == nil {
		return future.Resolved(struct{}{})
	}

	return future.Go(ctx, func(ctx context.Context) (struct{}, error) {
		if refs, isList := deep.AsSlice(ref); isList {
			ids := make([]any, 0, len(refs))
			for _, r := range refs {
				if id := refID(r); id != nil {
					ids = append(ids, id)
				}
			}
			found, err := lookup(ctx, store, opts, ids)
			if err != nil {
				return struct{}{}, err
			}
			populated := make([]any, 0, len(ids))
			for _, id := range ids {
				if d, ok := found[document.FormatID(id)]; ok {
					populated = append(populated, d.Fields)
				}
			}
			deep.Set(obj, opts.Path, populated)
			return struct{}{}, nil
		}

		id := refID(ref)
		found, err := lookup(ctx, store, opts, []any{id})
		if err != nil {
			return struct{}{}, err
		}
		if d, ok := found[document.FormatID(id)]; ok {
			deep.Set(obj, opts.Path, d.Fields)
		} else {
			deep.Set(obj, opts.Path, nil)
		}
		return struct{}{}, nil
	})
}

func lookup(ctx context.Context, store Store, opts PopulateOptions, ids []any) (map[string]*document.Document, error) {
	if len(ids) == 0 {
		return map[string]*document.Document{}, nil
	}
	docs, err := store.Find(ctx, opts.Collection, ids, opts.Select)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*document.Document, len(docs))
	for _, d := range docs {
		byID[d.IDString()] = d
	}
	return byID, nil
}

// refID extracts the referenced key, accepting already populated objects.
// Hex strings are looked up as ObjectIDs.
func refID(v any) any {
	if m, ok := deep.AsMap(v); ok {
		v = m[document.IDField]
	}
	if s, ok := v.(string); ok {
		return document.ParseID(s)
	}
	return v
}
