package document

import (
	"fmt"
	"time"

	"mongoutils/internal/deep"
	"mongoutils/internal/merge"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the primary key field of every document.
const IDField = "_id"

// Document is a live handle on a stored document.
type Document struct {
	Collection string
	Fields     bson.M
}

// New creates a document bound to collection. Nested BSON documents and
// arrays in fields are normalized to bson.M and []any.
func New(collection string, fields map[string]any) *Document {
	normalized := bson.M{}
	for k, v := range fields {
		normalized[k] = Normalize(v)
	}
	return &Document{
		Collection: collection,
		Fields:     normalized,
	}
}

// ID returns the document's primary key, or nil when it has none yet.
func (d *Document) ID() any {
	if d == nil || d.Fields == nil {
		return nil
	}
	return d.Fields[IDField]
}

// IDString renders the primary key as a string suitable for paths and keys.
func (d *Document) IDString() string {
	return FormatID(d.ID())
}

// EnsureID assigns a fresh ObjectID when the document has no primary key.
func (d *Document) EnsureID() any {
	if d.Fields == nil {
		d.Fields = bson.M{}
	}
	if id, ok := d.Fields[IDField]; ok && id != nil && id != "" {
		return id
	}
	id := primitive.NewObjectID()
	d.Fields[IDField] = id
	return id
}

// Get returns the value at a dot path.
func (d *Document) Get(path string) (any, bool) {
	return deep.Get(map[string]any(d.Fields), path)
}

// Set stores a value at a dot path.
func (d *Document) Set(path string, value any) {
	if d.Fields == nil {
		d.Fields = bson.M{}
	}
	deep.Set(d.Fields, path, value)
}

// Merge applies payload to the document under policy and returns the same
// document.
func (d *Document) Merge(payload map[string]any, policy merge.Policy, opts ...merge.Option) *Document {
	if d == nil {
		return d
	}
	merge.Data(payload, policy, opts...)(d.Fields)
	return d
}

// ToObject returns a deep copy of the fields as plain maps and slices.
func (d *Document) ToObject() map[string]any {
	if d == nil {
		return nil
	}
	out := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		out[k] = plain(v)
	}
	return out
}

// Project returns a copy holding the primary key and the given paths only.
// An empty field list returns a full copy.
func (d *Document) Project(fields []string) *Document {
	if len(fields) == 0 {
		return New(d.Collection, d.ToObject())
	}
	src := d.ToObject()
	out := map[string]any{}
	if id, ok := src[IDField]; ok {
		out[IDField] = id
	}
	for _, f := range fields {
		if v, ok := deep.Get(src, f); ok {
			deep.Set(out, f, v)
		}
	}
	return New(d.Collection, out)
}

// Normalize converts decoder-specific container types to bson.M and []any
// recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := bson.M{}
		for _, e := range t {
			m[e.Key] = Normalize(e.Value)
		}
		return m
	case primitive.M:
		m := bson.M{}
		for k, val := range t {
			m[k] = Normalize(val)
		}
		return m
	case map[string]any:
		m := bson.M{}
		for k, val := range t {
			m[k] = Normalize(val)
		}
		return m
	case primitive.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	}
	return v
}

func normalizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, val := range s {
		out[i] = Normalize(val)
	}
	return out
}

func plain(v any) any {
	if m, ok := deep.AsMap(v); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = plain(val)
		}
		return out
	}
	if d, ok := v.(primitive.D); ok {
		out := make(map[string]any, len(d))
		for _, e := range d {
			out[e.Key] = plain(e.Value)
		}
		return out
	}
	if s, ok := deep.AsSlice(v); ok {
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = plain(val)
		}
		return out
	}
	if dt, ok := v.(primitive.DateTime); ok {
		return dt.Time().UTC()
	}
	return v
}

// ParseID turns a 24-hex string into an ObjectID and leaves anything else
// as a string key.
func ParseID(s string) any {
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

// ParseIDs returns a copy of fields where every 24-hex string, at any depth,
// is an ObjectID. JSON carries references as plain strings.
func ParseIDs(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	return parseIDs(fields).(map[string]any)
}

func parseIDs(v any) any {
	if s, ok := v.(string); ok {
		return ParseID(s)
	}
	if m, ok := deep.AsMap(v); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = parseIDs(val)
		}
		return out
	}
	if s, ok := deep.AsSlice(v); ok {
		out := make([]any, len(s))
		for i, val := range s {
			out[i] = parseIDs(val)
		}
		return out
	}
	return v
}

// FormatID renders a primary key as a string.
func FormatID(id any) string {
	switch t := id.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
