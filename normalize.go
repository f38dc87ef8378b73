package normalize

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/Station-Manager/errors"
)

type Options struct {
	FieldNameKeys bool // when true, output keys use Go field names instead of json tag names
	CycleGuard    bool // when true, track node identity and emit CycleRef on revisit
	MaxDepth      int  // when > 0, nodes at this depth or deeper pass through unwalked (root is 0)
}

type Option func(*Options)

func WithFieldNameKeys(v bool) Option { return func(o *Options) { o.FieldNameKeys = v } }
func WithCycleGuard(v bool) Option    { return func(o *Options) { o.CycleGuard = v } }
func WithMaxDepth(d int) Option       { return func(o *Options) { o.MaxDepth = d } }

// Normalizer converts ORM-materialized entity graphs into plain nested
// mappings, sequences and scalars. See the package documentation for the
// classification rules.
type Normalizer struct {
	opaque    atomic.Value // holds *opaqueRegistry
	planCache sync.Map     // map[reflect.Type]*structPlan
	options   Options
}

// New creates a Normalizer with default options.
func New() *Normalizer { return NewWithOptions() }

// NewWithOptions creates a new Normalizer with provided options.
func NewWithOptions(opts ...Option) *Normalizer {
	n := &Normalizer{}
	optsState := Options{}
	for _, f := range opts {
		f(&optsState)
	}
	n.options = optsState
	n.opaque.Store(defaultOpaqueRegistry())
	return n
}

// Normalize recursively rewrites v into a value built only from plain
// mappings (map[string]any), sequences ([]any) and scalars. Entity metadata
// fields and not-loaded association fields are removed; everything the walker
// does not recognize passes through untouched. The input is never mutated and
// the call is safe for concurrent use.
func (n *Normalizer) Normalize(v any) any {
	st := &walkState{guard: n.options.CycleGuard}
	out, _ := n.walkAny(v, st, 0)
	return out
}

// NormalizeStrict is Normalize with the cycle guard forced on; revisiting a
// node on the current walk path is reported as an error instead of being
// truncated to a CycleRef.
func (n *Normalizer) NormalizeStrict(v any) (any, error) {
	st := &walkState{guard: true, strict: true}
	return n.walkAny(v, st, 0)
}

// walkState is per-call; the visited set tracks the current path only so
// shared (diamond) nodes are expanded at every occurrence.
type walkState struct {
	guard    bool
	strict   bool
	visiting map[uintptr]struct{}
}

func (st *walkState) enter(p uintptr) bool {
	if st.visiting == nil {
		st.visiting = make(map[uintptr]struct{})
	}
	if _, seen := st.visiting[p]; seen {
		return false
	}
	st.visiting[p] = struct{}{}
	return true
}

func (st *walkState) leave(p uintptr) { delete(st.visiting, p) }

func (st *walkState) onCycle() (any, error) {
	if st.strict {
		const op errors.Op = "normalize.NormalizeStrict"
		return nil, errors.New(op).Msg(ErrMsgCycleDetected)
	}
	return CycleRef{}, nil
}

func (n *Normalizer) walkAny(v any, st *walkState, depth int) (any, error) {
	if v == nil {
		return nil, nil
	}
	return n.walkValue(reflect.ValueOf(v), st, depth)
}

// walkValue classifies a single node and recurses. Unrecognized shapes fall
// through to scalar pass-through rather than failing.
func (n *Normalizer) walkValue(rv reflect.Value, st *walkState, depth int) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}
	if max := n.options.MaxDepth; max > 0 && depth >= max {
		return rv.Interface(), nil
	}
	t := rv.Type()
	if n.isOpaque(t) {
		return rv.Interface(), nil
	}
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return n.walkValue(rv.Elem(), st, depth)
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		elem := t.Elem()
		if n.isOpaque(elem) {
			return rv.Interface(), nil
		}
		switch elem.Kind() {
		case reflect.Struct:
			if !n.getOrBuildPlan(elem).isEntity {
				// Pointer to an opaque value object keeps its identity.
				return rv.Interface(), nil
			}
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Interface, reflect.Ptr:
		default:
			return rv.Interface(), nil
		}
		if st.guard {
			p := rv.Pointer()
			if !st.enter(p) {
				return st.onCycle()
			}
			defer st.leave(p)
		}
		return n.walkValue(rv.Elem(), st, depth)
	case reflect.Struct:
		plan := n.getOrBuildPlan(t)
		if !plan.isEntity {
			// Typed record without the metadata marker: opaque value object.
			return rv.Interface(), nil
		}
		return n.walkEntity(rv, plan, st, depth)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return rv.Interface(), nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		if st.guard {
			p := rv.Pointer()
			if !st.enter(p) {
				return st.onCycle()
			}
			defer st.leave(p)
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			nv, err := n.walkValue(iter.Value(), st, depth+1)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = nv
		}
		return out, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			// Raw bytes (types.JSON and friends), not a sequence.
			return rv.Interface(), nil
		}
		if rv.IsNil() {
			return nil, nil
		}
		if st.guard {
			p := rv.Pointer()
			if !st.enter(p) {
				return st.onCycle()
			}
			defer st.leave(p)
		}
		return n.walkSequence(rv, st, depth)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		return n.walkSequence(rv, st, depth)
	default:
		return rv.Interface(), nil
	}
}

func (n *Normalizer) walkSequence(rv reflect.Value, st *walkState, depth int) (any, error) {
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		nv, err := n.walkValue(rv.Index(i), st, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = nv
	}
	return out, nil
}

// walkEntity reduces an entity struct to a plain mapping: the Meta field and
// ignored fields are skipped, not-loaded association fields are dropped with
// their keys, and everything else is normalized recursively. Duplicate output
// keys (possible after embedded-struct flattening) keep the first-seen value.
func (n *Normalizer) walkEntity(rv reflect.Value, plan *structPlan, st *walkState, depth int) (any, error) {
	out := make(map[string]any, len(plan.fields))
	for i := range plan.fields {
		fp := &plan.fields[i]
		if fp.isMeta || fp.ignore {
			continue
		}
		fv, ok := n.safeFieldByIndex(rv, fp.index)
		if !ok || !fv.CanInterface() {
			continue
		}
		key := fp.outputKey(n.options.FieldNameKeys)
		if _, dup := out[key]; dup {
			continue
		}
		if fp.isAssoc {
			if fv.Kind() == reflect.Ptr && fv.IsNil() {
				continue
			}
			val, loaded := fv.Interface().(association).assocValue()
			if !loaded {
				continue
			}
			nv, err := n.walkAny(val, st, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = nv
			continue
		}
		nv, err := n.walkValue(fv, st, depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = nv
	}
	return out, nil
}
