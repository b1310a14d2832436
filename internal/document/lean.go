package document

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Lean returns a conversion from documents to plain maps. With convert set
// to false the conversion passes its input through.
func Lean(convert bool) func(v any) any {
	return func(v any) any {
		if !convert {
			return v
		}
		switch t := v.(type) {
		case *Document:
			return t.ToObject()
		case []*Document:
			return LeanAll(t)
		}
		return v
	}
}

// LeanAll converts every document to a plain map.
func LeanAll(docs []*Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ToObject())
	}
	return out
}

// MarshalExtJSON encodes the document's fields as canonical Extended JSON,
// keeping ObjectIDs and dates typed.
func (d *Document) MarshalExtJSON() ([]byte, error) {
	data, err := bson.MarshalExtJSON(d.Fields, true, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// UnmarshalExtJSON decodes a document written by MarshalExtJSON.
func UnmarshalExtJSON(collection string, data []byte) (*Document, error) {
	var fields bson.M
	if err := bson.UnmarshalExtJSON(data, true, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return New(collection, fields), nil
}
