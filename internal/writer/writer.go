// Package writer builds a recipe and its value store one row at a time
// through a cursor, the way an embedding UI drives it.
//
// A Writer starts with a minimal dough. The cursor points at one mix (the
// dough or a sub-mix) and one row of it. Navigation never fails: pointing
// the cursor at a row that does not exist is allowed, and every slot
// accessor then returns values.OverflowSlot. Reads through that slot give
// the store's fallback value, writes through it mark the store overflowed.
package writer

import (
	"fmt"
	"math"

	"github.com/roach88/overproofed/internal/recipe"
	"github.com/roach88/overproofed/internal/solve"
	"github.com/roach88/overproofed/internal/values"
)

// MaxEntries is the largest number of sub-mixes, or of rows in one list,
// a Writer will create. NewMix and NewItem do nothing once it is reached.
const MaxEntries = math.MaxUint16 + 1

// Field names one slot of an item.
type Field int

const (
	FieldWeight Field = iota
	FieldBakers
	FieldWeightInMixes
	FieldWeightLessMixes
	FieldPercentInMixes
	FieldPercentLessMixes
	FieldPercentOfTotal
)

var fieldNames = [...]string{
	FieldWeight:           "weight",
	FieldBakers:           "bakers",
	FieldWeightInMixes:    "weight_in_mixes",
	FieldWeightLessMixes:  "weight_less_mixes",
	FieldPercentInMixes:   "percent_in_mixes",
	FieldPercentLessMixes: "percent_less_mixes",
	FieldPercentOfTotal:   "percent_of_total",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField returns the field with the given name.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Fields lists every field in declaration order.
func Fields() []Field {
	out := make([]Field, len(fieldNames))
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Writer owns a recipe, its value store and a cursor into the recipe.
type Writer struct {
	vals *values.Values
	r    recipe.Recipe

	// mix is -1 for the dough or a sub-mix index.
	mix int
	row recipe.RowKey
}

// New returns a Writer with a minimal dough allocated in a store of the
// given capacity. The cursor is on the dough's total row.
func New(capacity int) *Writer {
	v := values.New(capacity)
	return &Writer{
		vals: v,
		r:    recipe.MinimalRecipe(v),
		mix:  -1,
		row:  recipe.KeyTotal,
	}
}

// Recipe returns the recipe built so far. Row lists are shared with the
// Writer.
func (w *Writer) Recipe() recipe.Recipe {
	return w.r
}

// Values returns the Writer's store.
func (w *Writer) Values() *values.Values {
	return w.vals
}

// Cursor returns the mix (-1 for the dough) and row the cursor points at.
func (w *Writer) Cursor() (mix int, row recipe.RowKey) {
	return w.mix, w.row
}

// Dough moves the cursor to the dough's total row.
func (w *Writer) Dough() {
	w.mix = -1
	w.row = recipe.KeyTotal
}

// NewMix appends a minimal sub-mix and moves the cursor to its total row.
func (w *Writer) NewMix() {
	i := len(w.r.Mixes)
	if i >= MaxEntries {
		return
	}
	w.r.Mixes = append(w.r.Mixes, recipe.MinimalMix(w.vals))
	w.mix = i
	w.row = recipe.KeyTotal
}

// SelectMix moves the cursor to the total row of sub-mix i, which need not
// exist.
func (w *Writer) SelectMix(i int) {
	w.mix = i
	w.row = recipe.KeyTotal
}

// NewItem appends a row to the flour or non-flour list of the mix under
// the cursor and moves the cursor to it. A hole allocates nothing. It does
// nothing if the cursor's mix does not exist or the list is full.
func (w *Writer) NewItem(f ItemFlags) {
	m, ok := w.r.MixAt(w.mix)
	if !ok {
		return
	}

	list := &m.Flours
	key := recipe.FloursKey
	if f.IsNonFlour() {
		list = &m.NonFlours
		key = recipe.NonFloursKey
	}

	i := len(*list)
	if i >= MaxEntries {
		return
	}

	var it recipe.Item
	switch f.Kind() {
	case FlagTotalItem:
		it = recipe.NewWithMixes(w.vals)
	case FlagMixItem:
		it = recipe.NewInMix(w.vals)
	}
	*list = append(*list, it)

	w.row = key(i)
}

// Seek moves the cursor to row key of mix (-1 for the dough).
func (w *Writer) Seek(mix int, key recipe.RowKey) {
	w.mix = mix
	w.row = key
}

// Total moves the cursor to the current mix's total row.
func (w *Writer) Total() { w.row = recipe.KeyTotal }

// Flour moves the cursor to the current mix's flour aggregate.
func (w *Writer) Flour() { w.row = recipe.KeyFlour }

// NonFlour moves the cursor to the current mix's non-flour aggregate.
func (w *Writer) NonFlour() { w.row = recipe.KeyNonFlour }

// SelectFlour moves the cursor to the i-th flour row of the current mix.
func (w *Writer) SelectFlour(i int) { w.row = recipe.FloursKey(i) }

// SelectNonFlour moves the cursor to the i-th non-flour row of the current
// mix.
func (w *Writer) SelectNonFlour(i int) { w.row = recipe.NonFloursKey(i) }

func (w *Writer) item() (recipe.Item, bool) {
	m, ok := w.r.MixAt(w.mix)
	if !ok {
		return nil, false
	}
	return m.Row(w.row)
}

// Slot returns the slot of field f of the row under the cursor, or
// values.OverflowSlot if the row is absent or has no such field.
func (w *Writer) Slot(f Field) values.Slot {
	it, ok := w.item()
	if !ok {
		return values.OverflowSlot
	}

	switch f {
	case FieldWeight:
		return recipe.AmountsOf(it).Weight
	case FieldBakers:
		return recipe.AmountsOf(it).Bakers
	case FieldPercentOfTotal:
		if m, ok := recipe.AsInMix(it); ok {
			return m.PercentOfTotal
		}
		return values.OverflowSlot
	}

	t, ok := recipe.AsWithMixes(it)
	if !ok {
		return values.OverflowSlot
	}
	switch f {
	case FieldWeightInMixes:
		return t.WeightInMixes
	case FieldWeightLessMixes:
		return t.WeightLessMixes
	case FieldPercentInMixes:
		return t.PercentInMixes
	case FieldPercentLessMixes:
		return t.PercentLessMixes
	default:
		return values.OverflowSlot
	}
}

func (w *Writer) Weight() values.Slot           { return w.Slot(FieldWeight) }
func (w *Writer) Bakers() values.Slot           { return w.Slot(FieldBakers) }
func (w *Writer) WeightInMixes() values.Slot    { return w.Slot(FieldWeightInMixes) }
func (w *Writer) WeightLessMixes() values.Slot  { return w.Slot(FieldWeightLessMixes) }
func (w *Writer) PercentInMixes() values.Slot   { return w.Slot(FieldPercentInMixes) }
func (w *Writer) PercentLessMixes() values.Slot { return w.Slot(FieldPercentLessMixes) }
func (w *Writer) PercentOfTotal() values.Slot   { return w.Slot(FieldPercentOfTotal) }

// Get reads slot s.
func (w *Writer) Get(s values.Slot) float64 {
	return w.vals.Get(s)
}

// Set writes x to slot s.
func (w *Writer) Set(s values.Slot, x float64) {
	w.vals.Set(s, x)
}

// Overflowed reports whether the store ran out of capacity.
func (w *Writer) Overflowed() bool {
	return w.vals.Overflowed()
}

// Solve runs one solving pass over the recipe and returns every derived
// value in the order it was derived.
//
// If the store has overflowed Solve returns an *OverflowError and does not
// solve anything.
func (w *Writer) Solve(opts ...solve.Option) ([]solve.Step, error) {
	if n, overflowed := w.vals.OverflowLen(); overflowed {
		return nil, &OverflowError{Len: n, Cap: w.vals.Cap()}
	}
	steps, _ := solve.Solve(w.r, w.vals, opts...)
	return steps, nil
}

// Solver builds a Solver over the current recipe and values without
// running it, for callers that want to step or inspect it.
func (w *Writer) Solver(opts ...solve.Option) (*solve.Solver, error) {
	if n, overflowed := w.vals.OverflowLen(); overflowed {
		return nil, &OverflowError{Len: n, Cap: w.vals.Cap()}
	}
	return solve.New(w.r, w.vals, opts...), nil
}
