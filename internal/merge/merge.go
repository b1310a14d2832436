package merge

import (
	"strings"

	"mongoutils/internal/deep"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPrivatePrefix marks fields the merge never touches.
const DefaultPrivatePrefix = "_"

// Func applies a prepared merge to a document's field map. It mutates and
// returns the same map; callers needing the previous state must clone it first.
type Func func(doc map[string]any) map[string]any

type options struct {
	privatePrefix string
	classify      func(any) Kind
}

// Option customizes Data.
type Option func(*options)

// WithPrivatePrefix changes the marker that identifies private fields.
func WithPrivatePrefix(prefix string) Option {
	return func(o *options) {
		o.privatePrefix = prefix
	}
}

// WithStrictIdentifiers treats a value as an identifier only when its whole
// string form is 24 lowercase hex characters.
func WithStrictIdentifiers() Option {
	return func(o *options) {
		o.classify = ClassifyStrict
	}
}

// Data prepares a merge of payload into documents under the given policy.
// An empty policy means Replace.
//
// Only the document's top-level keys are examined. Keys starting with the
// private prefix are skipped. For each remaining key the payload value is
// looked up as a dot path:
//
//   - Replace, key absent from the payload: the field is deleted.
//   - present and non-null: atomic values (scalars, dates, arrays,
//     identifier-like values) and every value under Replace are stored with
//     deep.Set; objects under Patch are merged recursively.
//   - Patch and absent, or null under either policy: the field is left
//     alone.
//
// Payload keys that the document does not already hold are ignored.
func Data(payload map[string]any, policy Policy, opts ...Option) Func {
	if policy == "" {
		policy = Replace
	}
	o := options{
		privatePrefix: DefaultPrivatePrefix,
		classify:      Classify,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(doc map[string]any) map[string]any {
		if doc == nil {
			return doc
		}

		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}

		for _, key := range keys {
			if o.privatePrefix != "" && strings.HasPrefix(key, o.privatePrefix) {
				continue
			}

			value, found := deep.Get(payload, key)
			if !found {
				if policy == Replace {
					delete(doc, key)
				}
				continue
			}
			if value == nil {
				continue
			}

			kind := o.classify(value)
			if policy == Replace || kind.Atomic() {
				deep.Set(doc, key, cloneValue(value))
				continue
			}

			target, ok := deep.AsMap(doc[key])
			if !ok {
				doc[key] = cloneValue(value)
				continue
			}
			mergeNested(target, objectOf(value), o.classify)
		}

		return doc
	}
}

// mergeNested copies src into dst key by key, recursing into objects.
func mergeNested(dst, src map[string]any, classify func(any) Kind) {
	for key, value := range src {
		if value == nil || classify(value) != PlainObject {
			dst[key] = cloneValue(value)
			continue
		}

		target, ok := deep.AsMap(dst[key])
		if !ok {
			dst[key] = cloneValue(value)
			continue
		}
		mergeNested(target, objectOf(value), classify)
	}
}

func objectOf(v any) map[string]any {
	if m, ok := deep.AsMap(v); ok {
		return m
	}
	if d, ok := v.(primitive.D); ok {
		return d.Map()
	}
	return map[string]any{}
}

// cloneValue copies maps and generic slices so the document never shares
// structure with the payload it was merged from.
func cloneValue(v any) any {
	switch t := v.(type) {
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = cloneValue(e.Value)
		}
		return out
	}
	if m, ok := deep.AsMap(v); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = cloneValue(val)
		}
		return out
	}
	if s, ok := deep.AsSlice(v); ok {
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = cloneValue(val)
		}
		return out
	}
	return v
}
