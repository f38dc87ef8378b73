// Package normalize converts typed, possibly deeply nested entity graphs
// produced by an ORM layer into plain, JSON-compatible nested structures
// (map[string]any, []any and scalars), stripping ORM runtime artifacts while
// preserving all concretely loaded data.
//
// Basic Usage
//
//	n := normalize.New()
//	out := n.Normalize(order) // map[string]any
//
// # Classification Rules
//
// Normalize classifies every node it visits and applies exactly one rule:
//  1. A struct carrying a field of type Meta is an entity: it becomes a plain
//     mapping. The Meta field never appears in the output, and association
//     fields (Assoc) that were not loaded are removed entirely, key included.
//  2. A map with string keys is walked value by value; already-plain data
//     passes through structurally unchanged, so Normalize is idempotent.
//  3. Slices and arrays become []any with order and length preserved. Byte
//     slices and byte arrays are raw data, not sequences.
//  4. Everything else is a scalar and is returned untouched. This includes
//     structs without a Meta field (time.Time, null wrappers, sqlboiler
//     decimals) and any type registered with RegisterOpaque.
//
// Unrecognized or misplaced shapes never cause an error: the walker fails
// open and echoes the value back, leaving the caller with at worst an
// un-normalized fragment inside otherwise plain output.
//
// # Associations
//
// Association fields on entities use the Assoc type, decided where the ORM
// materializes the graph:
//
//	type Order struct {
//	    Meta    normalize.Meta           `json:"-"`
//	    OrderID int                      `json:"orderId"`
//	    Shop    normalize.Assoc[*Shop]   `json:"shop"`
//	    Items   normalize.Assoc[[]*Item] `json:"items"`
//	}
//
// The zero Assoc is not loaded. Loaded associations are normalized
// recursively; not-loaded ones vanish from the output.
//
// # Ignoring Fields
//
// Fields tagged `json:"-"`, `normalize:"ignore"` or `normalize:"-"` are
// excluded from the output, as are unexported fields. Output keys default to
// the json tag name when one is present; WithFieldNameKeys(true) switches to
// Go field names.
//
// # Embedded Structs
//
// Embedded struct fields (including pointer-to-struct) are flattened and
// treated as if they were defined directly in the parent entity. When
// flattening produces a duplicate output key, the first-seen value wins.
//
// # Cycles
//
// By default the walker assumes the loaded portion of the graph is a tree or
// DAG, which holds for materialized ORM results whose backlinks are left not
// loaded. WithCycleGuard(true) enables an identity-based guard that replaces
// a node revisited on the current path with CycleRef{}; NormalizeStrict
// reports such a revisit as an error instead. WithMaxDepth caps traversal
// depth as a last line of defense; nodes at the cap pass through unwalked.
//
// # Thread Safety
//
// A Normalizer is safe for concurrent use. Normalize never mutates its input
// and shares no per-call state; internals use cached field plans and a
// copy-on-write opaque-type registry.
package normalize
