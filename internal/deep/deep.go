package deep

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Get returns the value found at a dot-separated path inside container.
// Maps are walked by key and slices by numeric index. The second return
// value is false when any segment of the path is missing.
func Get(container any, path string) (any, bool) {
	if path == "" {
		return container, container != nil
	}

	current := container
	for _, segment := range strings.Split(path, ".") {
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Set stores value at a dot-separated path inside container, creating
// intermediate maps where they are missing or not maps. Numeric segments
// address elements of existing slices when in range.
func Set(container map[string]any, path string, value any) {
	if container == nil || path == "" {
		return
	}
	setIn(container, strings.Split(path, "."), value)
}

func setIn(m map[string]any, segments []string, value any) {
	key := segments[0]
	if len(segments) == 1 {
		m[key] = value
		return
	}

	next := m[key]
	if list, ok := AsSlice(next); ok && setInSlice(list, segments[1:], value) {
		return
	}

	nested, ok := AsMap(next)
	if !ok {
		nested = map[string]any{}
		m[key] = nested
	}
	setIn(nested, segments[1:], value)
}

func setInSlice(list []any, segments []string, value any) bool {
	idx, err := strconv.Atoi(segments[0])
	if err != nil || idx < 0 || idx >= len(list) {
		return false
	}
	if len(segments) == 1 {
		list[idx] = value
		return true
	}

	if inner, ok := AsSlice(list[idx]); ok && setInSlice(inner, segments[1:], value) {
		return true
	}
	nested, ok := AsMap(list[idx])
	if !ok {
		nested = map[string]any{}
		list[idx] = nested
	}
	setIn(nested, segments[1:], value)
	return true
}

// AsMap returns v as a plain map when it is one of the map shapes produced
// by callers or by the BSON decoder.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case primitive.M:
		return map[string]any(m), m != nil
	}
	return nil, false
}

// AsSlice returns v as a []any when it is a generic array.
func AsSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return []any(s), true
	}
	return nil, false
}

func child(container any, segment string) (any, bool) {
	if m, ok := AsMap(container); ok {
		v, ok := m[segment]
		return v, ok
	}
	if d, ok := container.(primitive.D); ok {
		for _, e := range d {
			if e.Key == segment {
				return e.Value, true
			}
		}
		return nil, false
	}
	if s, ok := AsSlice(container); ok {
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(s) {
			return nil, false
		}
		return s[idx], true
	}
	return nil, false
}
