package normalize

import (
	"reflect"
	"time"

	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/ericlagergren/decimal"
)

// opaqueRegistry holds types that must never be walked, swapped atomically
// (copy-on-write) so lookups are lock-free.
type opaqueRegistry struct {
	types map[reflect.Type]struct{}
}

func defaultOpaqueRegistry() *opaqueRegistry {
	reg := &opaqueRegistry{types: make(map[reflect.Type]struct{}, 8)}
	for _, v := range []any{
		time.Time{},
		null.JSON{},
		boilertypes.JSON{},
		boilertypes.Decimal{},
		boilertypes.NullDecimal{},
		decimal.Big{},
	} {
		reg.types[reflect.TypeOf(v)] = struct{}{}
	}
	return reg
}

// RegisterOpaque marks the types of the given example values as opaque
// scalars: Normalize passes values of these types through verbatim instead of
// walking them. Structs without a Meta field are opaque already; registration
// matters for named map, slice or array types that would otherwise be
// classified as mappings or sequences.
func (n *Normalizer) RegisterOpaque(examples ...any) {
	old := n.opaque.Load().(*opaqueRegistry)
	newReg := &opaqueRegistry{types: make(map[reflect.Type]struct{}, len(old.types)+len(examples))}
	for t := range old.types {
		newReg.types[t] = struct{}{}
	}
	for _, e := range examples {
		if e == nil {
			continue
		}
		newReg.types[reflect.TypeOf(e)] = struct{}{}
	}
	n.opaque.Store(newReg)
}

func (n *Normalizer) isOpaque(t reflect.Type) bool {
	reg := n.opaque.Load().(*opaqueRegistry)
	_, ok := reg.types[t]
	return ok
}
