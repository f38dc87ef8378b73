package normalize

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/ericlagergren/decimal"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PricedEntity struct {
	Meta       Meta                    `json:"-"`
	ID         int                     `json:"id"`
	Price      boilertypes.Decimal     `json:"price"`
	Discount   boilertypes.NullDecimal `json:"discount"`
	Note       null.String             `json:"note"`
	Raw        boilertypes.JSON        `json:"raw"`
	CreatedAt  time.Time               `json:"createdAt"`
	ExternalID uuid.UUID               `json:"externalId"`
}

func TestNormalizer_OpaqueValueObjects(t *testing.T) {
	n := New()

	now := time.Now()
	id := uuid.Must(uuid.NewV4())
	price := boilertypes.NewDecimal(decimal.New(100, 0))

	e := &PricedEntity{
		ID:         1,
		Price:      price,
		Discount:   boilertypes.NewNullDecimal(decimal.New(5, 0)),
		Note:       null.StringFrom("gift"),
		Raw:        boilertypes.JSON(`{"a":1}`),
		CreatedAt:  now,
		ExternalID: id,
	}

	out := n.Normalize(e).(map[string]any)

	assert.Equal(t, price, out["price"])
	assert.Equal(t, e.Discount, out["discount"])
	assert.Equal(t, null.StringFrom("gift"), out["note"])
	assert.Equal(t, boilertypes.JSON(`{"a":1}`), out["raw"])
	assert.Equal(t, now, out["createdAt"])
	assert.Equal(t, id, out["externalId"])
}

func TestNormalizer_DecimalIdentity(t *testing.T) {
	n := New()

	big := decimal.New(100, 0)
	out := n.Normalize(big)

	require.IsType(t, &decimal.Big{}, out)
	assert.Same(t, big, out)
}

func TestNormalizer_ByteSliceIsScalar(t *testing.T) {
	n := New()

	b := []byte{0x01, 0x02}
	out, ok := n.Normalize(b).([]byte)
	require.True(t, ok)
	assert.Equal(t, b, out)
}

func TestNormalizer_ByteArrayIsScalar(t *testing.T) {
	n := New()

	// uuid.UUID is [16]byte underneath; it must not explode into a sequence.
	id := uuid.Must(uuid.NewV4())
	out, ok := n.Normalize(id).(uuid.UUID)
	require.True(t, ok)
	assert.Equal(t, id, out)
}

// Named map types normally classify as mappings; RegisterOpaque exempts them.
type Enumeration map[string]int

func TestNormalizer_RegisterOpaque(t *testing.T) {
	n := New()

	e := Enumeration{"a": 1}
	out, ok := n.Normalize(e).(map[string]any)
	require.True(t, ok, "unregistered named map is walked as a mapping")
	assert.Equal(t, map[string]any{"a": 1}, out)

	n.RegisterOpaque(Enumeration{})

	kept, ok := n.Normalize(e).(Enumeration)
	require.True(t, ok, "registered type passes through verbatim")
	assert.Equal(t, e, kept)
}

func TestNormalizer_NonEntityStructIsScalar(t *testing.T) {
	n := New()

	type Coordinates struct {
		Lat float64
		Lon float64
	}

	c := Coordinates{Lat: 1.5, Lon: -3.25}
	out, ok := n.Normalize(c).(Coordinates)
	require.True(t, ok)
	assert.Equal(t, c, out)
}
