package normalize

import "reflect"

// Meta marks a struct as an ORM-managed record. Any struct carrying a field of
// this type (directly or inside an embedded struct) is treated as an entity and
// reduced to a plain mapping; the field itself is bookkeeping, never output.
//
// Detection is by type identity, so the field may have any name, though models
// conventionally call it Meta.
type Meta struct {
	Table string
}

var metaType = reflect.TypeOf(Meta{})

// association is the structural capability the walker checks on entity fields.
// Only Assoc implements it.
type association interface {
	assocValue() (any, bool)
}

var associationType = reflect.TypeOf((*association)(nil)).Elem()

// Assoc is an association field on an entity: either loaded with a value or
// not loaded. The zero value is not loaded, which matches freshly scanned
// models whose relations were never fetched.
//
// A not-loaded Assoc field is removed (key and value) when its entity is
// normalized. A loaded one is normalized recursively. Placed anywhere other
// than an entity field (top level, inside a plain map or slice) an Assoc is
// passed through untouched like any other opaque value.
type Assoc[T any] struct {
	value  T
	loaded bool
}

// Loaded wraps a fetched association value.
func Loaded[T any](v T) Assoc[T] { return Assoc[T]{value: v, loaded: true} }

// NotLoaded returns the not-loaded sentinel for an association of type T.
func NotLoaded[T any]() Assoc[T] { return Assoc[T]{} }

// IsLoaded reports whether the association was fetched.
func (a Assoc[T]) IsLoaded() bool { return a.loaded }

// Get returns the association value and whether it was loaded.
func (a Assoc[T]) Get() (T, bool) { return a.value, a.loaded }

func (a Assoc[T]) assocValue() (any, bool) {
	if !a.loaded {
		return nil, false
	}
	return a.value, true
}

// CycleRef is emitted in place of a revisited node when the cycle guard is
// enabled. It carries no payload; the output remains a tree.
type CycleRef struct{}
