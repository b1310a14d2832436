package deep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGet(t *testing.T) {
	container := map[string]interface{}{
		"name": "A",
		"meta": map[string]interface{}{
			"labels": bson.M{"team": "core"},
		},
		"items": []interface{}{
			map[string]interface{}{"id": 1},
			"two",
		},
		"doc":  bson.D{{Key: "x", Value: 10}},
		"null": nil,
	}

	tests := []struct {
		path     string
		expected interface{}
		found    bool
	}{
		{"name", "A", true},
		{"meta.labels.team", "core", true},
		{"items.0.id", 1, true},
		{"items.1", "two", true},
		{"items.2", nil, false},
		{"items.x", nil, false},
		{"doc.x", 10, true},
		{"null", nil, true},
		{"missing", nil, false},
		{"name.deeper", nil, false},
		{"meta.missing.team", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, ok := Get(container, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestGet_EmptyPath(t *testing.T) {
	container := map[string]interface{}{"a": 1}
	v, ok := Get(container, "")
	assert.True(t, ok)
	assert.Equal(t, container, v)

	_, ok = Get(nil, "a")
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	t.Run("TopLevel", func(t *testing.T) {
		m := map[string]interface{}{}
		Set(m, "a", 1)
		assert.Equal(t, map[string]interface{}{"a": 1}, m)
	})

	t.Run("CreatesIntermediateMaps", func(t *testing.T) {
		m := map[string]interface{}{}
		Set(m, "a.b.c", true)
		assert.Equal(t, map[string]interface{}{
			"a": map[string]interface{}{
				"b": map[string]interface{}{"c": true},
			},
		}, m)
	})

	t.Run("ReplacesScalarIntermediate", func(t *testing.T) {
		m := map[string]interface{}{"a": "flat"}
		Set(m, "a.b", 1)
		assert.Equal(t, map[string]interface{}{"a": map[string]interface{}{"b": 1}}, m)
	})

	t.Run("KeepsSiblings", func(t *testing.T) {
		m := map[string]interface{}{"a": bson.M{"x": 1}}
		Set(m, "a.y", 2)
		assert.Equal(t, bson.M{"x": 1, "y": 2}, m["a"])
	})

	t.Run("IndexesSlices", func(t *testing.T) {
		m := map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"id": 1},
				"two",
			},
		}
		Set(m, "items.1", "deux")
		Set(m, "items.0.id", 10)

		assert.Equal(t, []interface{}{
			map[string]interface{}{"id": 10},
			"deux",
		}, m["items"])
	})

	t.Run("NilContainer", func(t *testing.T) {
		assert.NotPanics(t, func() { Set(nil, "a", 1) })
	})
}
