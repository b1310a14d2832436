package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestData(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		existing map[string]interface{}
		payload  map[string]interface{}
		expected map[string]interface{}
	}{
		{
			name:   "Patch merges nested object",
			policy: Patch,
			existing: map[string]interface{}{
				"name": "A",
				"meta": map[string]interface{}{"a": 1, "b": 2},
			},
			payload: map[string]interface{}{
				"meta": map[string]interface{}{"b": 3},
			},
			expected: map[string]interface{}{
				"name": "A",
				"meta": map[string]interface{}{"a": 1, "b": 3},
			},
		},
		{
			name:   "Replace unsets omitted fields",
			policy: Replace,
			existing: map[string]interface{}{
				"name": "A",
				"age":  30,
			},
			payload: map[string]interface{}{
				"name": "B",
			},
			expected: map[string]interface{}{
				"name": "B",
			},
		},
		{
			name:   "Replace keeps private fields",
			policy: Replace,
			existing: map[string]interface{}{
				"_id": "abc",
				"tag": "x",
			},
			payload: map[string]interface{}{
				"_id": "zzz",
				"tag": "y",
			},
			expected: map[string]interface{}{
				"_id": "abc",
				"tag": "y",
			},
		},
		{
			name:   "Patch keeps private fields",
			policy: Patch,
			existing: map[string]interface{}{
				"_id": "abc",
				"tag": "x",
			},
			payload: map[string]interface{}{
				"_id": "zzz",
				"tag": "y",
			},
			expected: map[string]interface{}{
				"_id": "abc",
				"tag": "y",
			},
		},
		{
			name:   "Patch leaves omitted and null fields",
			policy: Patch,
			existing: map[string]interface{}{
				"name": "A",
				"age":  30,
			},
			payload: map[string]interface{}{
				"age": nil,
			},
			expected: map[string]interface{}{
				"name": "A",
				"age":  30,
			},
		},
		{
			name:   "Replace leaves explicit null fields",
			policy: Replace,
			existing: map[string]interface{}{
				"name": "A",
				"age":  30,
			},
			payload: map[string]interface{}{
				"name": "B",
				"age":  nil,
			},
			expected: map[string]interface{}{
				"name": "B",
				"age":  30,
			},
		},
		{
			name:   "Replace swaps nested object wholesale",
			policy: Replace,
			existing: map[string]interface{}{
				"meta": map[string]interface{}{"a": 1, "b": 2},
			},
			payload: map[string]interface{}{
				"meta": map[string]interface{}{"b": 3},
			},
			expected: map[string]interface{}{
				"meta": map[string]interface{}{"b": 3},
			},
		},
		{
			name:   "Patch replaces arrays",
			policy: Patch,
			existing: map[string]interface{}{
				"items": []interface{}{1, 2, 3},
			},
			payload: map[string]interface{}{
				"items": []interface{}{4},
			},
			expected: map[string]interface{}{
				"items": []interface{}{4},
			},
		},
		{
			name:   "Replace replaces arrays",
			policy: Replace,
			existing: map[string]interface{}{
				"items": []interface{}{1, 2, 3},
			},
			payload: map[string]interface{}{
				"items": []interface{}{4},
			},
			expected: map[string]interface{}{
				"items": []interface{}{4},
			},
		},
		{
			name:   "Patch replaces arrays inside nested objects",
			policy: Patch,
			existing: map[string]interface{}{
				"meta": map[string]interface{}{"tags": []interface{}{"a", "b"}, "n": 1},
			},
			payload: map[string]interface{}{
				"meta": map[string]interface{}{"tags": []interface{}{"c"}},
			},
			expected: map[string]interface{}{
				"meta": map[string]interface{}{"tags": []interface{}{"c"}, "n": 1},
			},
		},
		{
			name:   "Patch deep nested merge creates missing objects",
			policy: Patch,
			existing: map[string]interface{}{
				"rule": map[string]interface{}{
					"threshold": 0.7,
				},
			},
			payload: map[string]interface{}{
				"rule": map[string]interface{}{
					"labels": map[string]interface{}{"team": "backend"},
				},
			},
			expected: map[string]interface{}{
				"rule": map[string]interface{}{
					"threshold": 0.7,
					"labels":    map[string]interface{}{"team": "backend"},
				},
			},
		},
		{
			name:   "Payload keys unknown to the document are ignored",
			policy: Patch,
			existing: map[string]interface{}{
				"name": "A",
			},
			payload: map[string]interface{}{
				"extra": "value",
			},
			expected: map[string]interface{}{
				"name": "A",
			},
		},
		{
			name:   "Patch overwrites scalar with object",
			policy: Patch,
			existing: map[string]interface{}{
				"meta": "flat",
			},
			payload: map[string]interface{}{
				"meta": map[string]interface{}{"a": 1},
			},
			expected: map[string]interface{}{
				"meta": map[string]interface{}{"a": 1},
			},
		},
		{
			name:   "Patch accepts bson maps",
			policy: Patch,
			existing: map[string]interface{}{
				"meta": bson.M{"a": 1, "b": 2},
			},
			payload: map[string]interface{}{
				"meta": bson.M{"b": 3},
			},
			expected: map[string]interface{}{
				"meta": bson.M{"a": 1, "b": 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Data(tt.payload, tt.policy)(tt.existing)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestData_ReturnsSameMap(t *testing.T) {
	doc := map[string]interface{}{"name": "A"}
	result := Data(map[string]interface{}{"name": "B"}, Patch)(doc)

	doc["marker"] = true
	assert.Equal(t, true, result["marker"])
}

func TestData_NilDocument(t *testing.T) {
	result := Data(map[string]interface{}{"name": "B"}, Replace)(nil)
	assert.Nil(t, result)
}

func TestData_DefaultPolicyIsReplace(t *testing.T) {
	doc := map[string]interface{}{"name": "A", "age": 30}
	Data(map[string]interface{}{"name": "B"}, "")(doc)

	assert.Equal(t, map[string]interface{}{"name": "B"}, doc)
}

func TestData_DatesAreReplaced(t *testing.T) {
	before := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	doc := map[string]interface{}{
		"meta": map[string]interface{}{"seen": before, "n": 1},
		"at":   before,
	}
	payload := map[string]interface{}{
		"meta": map[string]interface{}{"seen": after},
		"at":   after,
	}
	Data(payload, Patch)(doc)

	assert.Equal(t, after, doc["at"])
	assert.Equal(t, map[string]interface{}{"seen": after, "n": 1}, doc["meta"])
}

func TestData_ObjectIDsAreReplaced(t *testing.T) {
	oldID := primitive.NewObjectID()
	newID := primitive.NewObjectID()

	doc := map[string]interface{}{"owner": oldID}
	Data(map[string]interface{}{"owner": newID}, Patch)(doc)

	assert.Equal(t, newID, doc["owner"])
}

func TestData_DeepPathKeys(t *testing.T) {
	// A document key that is itself a path is resolved and written as a path.
	doc := map[string]interface{}{
		"meta.color": "red",
		"meta":       map[string]interface{}{"color": "red", "size": 1},
	}
	payload := map[string]interface{}{
		"meta": map[string]interface{}{"color": "blue"},
	}
	Data(payload, Patch)(doc)

	assert.Equal(t, map[string]interface{}{"color": "blue", "size": 1}, doc["meta"])
}

func TestData_CustomPrivatePrefix(t *testing.T) {
	doc := map[string]interface{}{"$version": 1, "_id": "a", "name": "A"}
	payload := map[string]interface{}{"$version": 2, "_id": "b", "name": "B"}

	Data(payload, Replace, WithPrivatePrefix("$"))(doc)

	assert.Equal(t, 1, doc["$version"])
	assert.Equal(t, "b", doc["_id"])
	assert.Equal(t, "B", doc["name"])
}

func TestData_NestedMergeIgnoresPrivatePrefix(t *testing.T) {
	doc := map[string]interface{}{
		"meta": map[string]interface{}{"_rev": 1},
	}
	payload := map[string]interface{}{
		"meta": map[string]interface{}{"_rev": 2},
	}
	Data(payload, Patch)(doc)

	assert.Equal(t, map[string]interface{}{"_rev": 2}, doc["meta"])
}

func TestData_DoesNotAliasPayload(t *testing.T) {
	nested := map[string]interface{}{"a": 1}
	doc := map[string]interface{}{"meta": "flat"}
	Data(map[string]interface{}{"meta": nested}, Patch)(doc)

	doc["meta"].(map[string]interface{})["a"] = 2
	assert.Equal(t, 1, nested["a"])
}

func TestData_Idempotent(t *testing.T) {
	for _, policy := range []Policy{Replace, Patch} {
		t.Run(policy.String(), func(t *testing.T) {
			payload := map[string]interface{}{
				"name":  "B",
				"meta":  map[string]interface{}{"b": 3, "deep": map[string]interface{}{"x": true}},
				"items": []interface{}{4},
			}
			newDoc := func() map[string]interface{} {
				return map[string]interface{}{
					"_id":   "abc",
					"name":  "A",
					"age":   30,
					"meta":  map[string]interface{}{"a": 1, "b": 2},
					"items": []interface{}{1, 2, 3},
				}
			}

			once := Data(payload, policy)(newDoc())
			twice := Data(payload, policy)(Data(payload, policy)(newDoc()))

			require.NotNil(t, once)
			assert.Equal(t, once, twice)
		})
	}
}

func TestData_IdentifierLikeStringsAreAtomic(t *testing.T) {
	// Substring match: the hex run is embedded in a longer value.
	doc := map[string]interface{}{"ref": map[string]interface{}{"keep": true}}
	payload := map[string]interface{}{"ref": "user:507f1f77bcf86cd799439011"}

	Data(payload, Patch)(doc)
	assert.Equal(t, "user:507f1f77bcf86cd799439011", doc["ref"])
}
