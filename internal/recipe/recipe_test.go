package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/overproofed/internal/values"
)

func TestNewWithMixes_AllocatesUniqueSlots(t *testing.T) {
	v := values.New(32)

	a := NewWithMixes(v)
	b := NewWithMixes(v)

	assert.Equal(t, []values.Slot{0, 1, 2, 3, 4, 5}, Slots(a))
	assert.Equal(t, []values.Slot{6, 7, 8, 9, 10, 11}, Slots(b))
}

func TestNewInMix_AllocatesThreeSlots(t *testing.T) {
	v := values.New(8)

	m := NewInMix(v)

	assert.Equal(t, values.Slot(0), m.Weight)
	assert.Equal(t, values.Slot(1), m.Bakers)
	assert.Equal(t, values.Slot(2), m.PercentOfTotal)
	assert.Equal(t, 3, v.Len())
}

func TestNewWithMixes_OverflowUsesSentinel(t *testing.T) {
	v := values.New(4)

	w := NewWithMixes(v)

	assert.True(t, v.Overflowed())
	for _, s := range Slots(w) {
		assert.Equal(t, values.OverflowSlot, s)
	}
}

func TestMinimalRecipe(t *testing.T) {
	v := values.New(64)

	r := MinimalRecipe(v)

	assert.Equal(t, 18, v.Len())
	assert.Empty(t, r.Mixes)
	_, ok := AsWithMixes(r.Dough.Total)
	assert.True(t, ok)
	_, ok = AsInMix(r.Dough.Flour)
	assert.False(t, ok)
}

func TestMinimalMix(t *testing.T) {
	v := values.New(64)

	m := MinimalMix(v)

	assert.Equal(t, 9, v.Len())
	_, ok := AsInMix(m.NonFlour)
	assert.True(t, ok)
}

func TestMixRow_HolesAndBounds(t *testing.T) {
	v := values.New(64)
	rye := NewWithMixes(v)
	water := NewWithMixes(v)
	m := Mix{
		Total:     NewWithMixes(v),
		Flour:     NewWithMixes(v),
		NonFlour:  NewWithMixes(v),
		Flours:    []Item{nil, rye},
		NonFlours: []Item{water},
	}

	_, ok := m.Row(FloursKey(0))
	assert.False(t, ok, "hole is absent")

	got, ok := m.Row(FloursKey(1))
	require.True(t, ok)
	assert.Equal(t, rye, got)

	_, ok = m.Row(FloursKey(2))
	assert.False(t, ok, "past the end is absent")
	_, ok = m.Row(NonFloursKey(-1))
	assert.False(t, ok)

	got, ok = m.Row(KeyTotal)
	require.True(t, ok)
	assert.Equal(t, m.Total, got)
}

func TestMixItems_SkipsHoles(t *testing.T) {
	v := values.New(64)
	rye := NewInMix(v)
	m := MinimalMix(v)
	m.Flours = []Item{nil, rye, nil}

	items := m.Items()

	require.Len(t, items, 4)
	assert.Equal(t, rye, items[3])
	assert.Len(t, m.PresentFlours(), 1)
	assert.Empty(t, m.PresentNonFlours())
}

func TestMixRowKeys_IncludesHolePositions(t *testing.T) {
	m := Mix{Flours: []Item{nil, nil}, NonFlours: []Item{nil}}

	keys := m.RowKeys()

	assert.Equal(t, []RowKey{KeyTotal, KeyFlour, KeyNonFlour, FloursKey(0), FloursKey(1), NonFloursKey(0)}, keys)
	assert.Equal(t, "flours[1]", keys[4].String())
}

func TestAmountsOf(t *testing.T) {
	v := values.New(16)
	w := NewWithMixes(v)
	m := NewInMix(v)

	assert.Equal(t, w.Amounts, AmountsOf(w))
	assert.Equal(t, m.Amounts, AmountsOf(m))
	assert.Panics(t, func() { AmountsOf(nil) })
}

func TestRecipeSlotsAndMixAt(t *testing.T) {
	v := values.New(64)
	r := MinimalRecipe(v)
	r.Mixes = append(r.Mixes, MinimalMix(v))

	assert.Len(t, r.Slots(), 18+9)

	d, ok := r.MixAt(-1)
	require.True(t, ok)
	assert.Equal(t, r.Dough.Total, d.Total)

	_, ok = r.MixAt(0)
	assert.True(t, ok)
	_, ok = r.MixAt(1)
	assert.False(t, ok)
}
