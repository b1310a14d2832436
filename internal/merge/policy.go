package merge

import (
	"fmt"
	"strings"
)

// Policy selects how payload fields combine with existing document fields.
type Policy string

const (
	// Replace overwrites every field present in the payload and unsets the
	// fields the payload omits.
	Replace Policy = "replace"
	// Patch overwrites scalar fields, merges nested objects field by field
	// and leaves omitted fields untouched.
	Patch Policy = "patch"
)

// ParsePolicy maps a policy name to a Policy. The empty string and "put"
// both mean Replace.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "put", string(Replace):
		return Replace, nil
	case string(Patch):
		return Patch, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", name)
	}
}

func (p Policy) String() string {
	if p == "" {
		return string(Replace)
	}
	return string(p)
}
