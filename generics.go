package normalize

import (
	"github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
)

// Generic helpers as top-level functions (methods cannot have type parameters yet)

// ToMap normalizes v and returns the result as a plain mapping. The second
// return is false when v does not normalize to a mapping (scalars, sequences).
func ToMap(n *Normalizer, v any) (map[string]any, bool) {
	m, ok := n.Normalize(v).(map[string]any)
	return m, ok
}

// MapSlice normalizes every element of s, preserving order and length.
// A nil slice stays nil.
func MapSlice[T any](n *Normalizer, s []T) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i := range s {
		out[i] = n.Normalize(s[i])
	}
	return out
}

// MarshalNormalized normalizes v and serializes the result to JSON. This is
// the usual last step before handing materialized entities to an API layer.
func MarshalNormalized(n *Normalizer, v any) ([]byte, error) {
	const op errors.Op = "normalize.MarshalNormalized"
	data, err := json.Marshal(n.Normalize(v))
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	return data, nil
}
