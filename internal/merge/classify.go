package merge

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"mongoutils/internal/deep"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the shape of a payload value as far as merging is concerned.
type Kind int

const (
	Scalar Kind = iota
	Date
	Array
	IdentifierLike
	PlainObject
)

func (k Kind) String() string {
	switch k {
	case Date:
		return "date"
	case Array:
		return "array"
	case IdentifierLike:
		return "identifier"
	case PlainObject:
		return "object"
	default:
		return "scalar"
	}
}

// Atomic reports whether values of this kind are always swapped wholesale.
func (k Kind) Atomic() bool {
	return k != PlainObject
}

var (
	identifierPattern       = regexp.MustCompile(`[0-9a-f]{24}`)
	strictIdentifierPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)
)

// Classify returns the kind of v. A string form containing 24 lowercase hex
// characters anywhere makes the value identifier-like.
func Classify(v any) Kind {
	return classify(v, identifierPattern)
}

// ClassifyStrict is Classify with identifier detection anchored to the whole
// string form.
func ClassifyStrict(v any) Kind {
	return classify(v, strictIdentifierPattern)
}

func classify(v any, ids *regexp.Regexp) Kind {
	switch t := v.(type) {
	case nil:
		return Scalar
	case time.Time, *time.Time, primitive.DateTime, primitive.Timestamp:
		return Date
	case primitive.ObjectID:
		return IdentifierLike
	case *primitive.ObjectID:
		if t == nil {
			return Scalar
		}
		return IdentifierLike
	case primitive.D:
		return PlainObject
	}

	if _, ok := deep.AsMap(v); ok {
		return PlainObject
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return Array
	case reflect.Map:
		// Maps with non-string keys cannot be merged key by key.
		return Scalar
	}

	if ids.MatchString(fmt.Sprint(v)) {
		return IdentifierLike
	}
	return Scalar
}
