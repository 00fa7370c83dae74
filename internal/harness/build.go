package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/overproofed/internal/recipe"
	"github.com/roach88/overproofed/internal/values"
	"github.com/roach88/overproofed/internal/writer"
)

// Built is a scenario's recipe, seeded with its inputs and ready to solve.
type Built struct {
	Writer *writer.Writer

	// rows maps "<mix>.<row>" to the row it names.
	rows map[string]rowRef
	// labels maps slot to "<mix>.<row>.<field>".
	labels map[values.Slot]string
}

type rowRef struct {
	mix int
	key recipe.RowKey
}

// Build creates the scenario's recipe through a writer and seeds every
// input. capacity is used when the scenario does not set its own.
//
// If the store overflows, Build still returns the Built value; solving it
// reports the overflow.
func Build(s *Scenario, capacity int) (*Built, error) {
	if s.Capacity > 0 {
		capacity = s.Capacity
	}

	b := &Built{
		Writer: writer.New(capacity),
		rows:   map[string]rowRef{},
		labels: map[values.Slot]string{},
	}

	if err := b.mix("dough", DoughName, -1, s.Dough); err != nil {
		return nil, err
	}

	flourPos := positions(s.Dough.Flours)
	nonFlourPos := positions(s.Dough.NonFlours)

	for i, m := range s.Mixes {
		field := fmt.Sprintf("mixes[%d]", i)
		b.Writer.NewMix()
		if err := b.mix(field, m.Name, i, m); err != nil {
			return nil, err
		}
		if err := b.items(field+".flours", m.Name, i, m.Flours, flourPos, writer.ItemFlags(0).Flour()); err != nil {
			return nil, err
		}
		if err := b.items(field+".nonflours", m.Name, i, m.NonFlours, nonFlourPos, writer.ItemFlags(0).NonFlour()); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func positions(rows []RowSpec) map[string]int {
	pos := make(map[string]int, len(rows))
	for i, r := range rows {
		pos[r.Name] = i
	}
	return pos
}

// mix registers and seeds the aggregates of the mix under the cursor. For
// the dough it also creates the flour and non-flour rows, which define the
// positions every sub-mix lines up with.
func (b *Built) mix(field, name string, idx int, m MixSpec) error {
	w := b.Writer
	aggregates := []struct {
		row string
		key recipe.RowKey
		in  Inputs
	}{
		{"total", recipe.KeyTotal, m.Total},
		{"flour", recipe.KeyFlour, m.Flour},
		{"nonflour", recipe.KeyNonFlour, m.NonFlour},
	}
	for _, a := range aggregates {
		w.Seek(idx, a.key)
		if err := b.register(field+"."+a.row, name, a.row, idx, a.key, a.in); err != nil {
			return err
		}
	}

	if idx >= 0 {
		return nil
	}

	for i, r := range m.Flours {
		w.Dough()
		w.NewItem(writer.ItemFlags(0).Flour().TotalItem())
		if err := b.register(fmt.Sprintf("%s.flours[%d]", field, i), name, r.Name, idx, recipe.FloursKey(i), r.Set); err != nil {
			return err
		}
	}
	for i, r := range m.NonFlours {
		w.Dough()
		w.NewItem(writer.ItemFlags(0).NonFlour().TotalItem())
		if err := b.register(fmt.Sprintf("%s.nonflours[%d]", field, i), name, r.Name, idx, recipe.NonFloursKey(i), r.Set); err != nil {
			return err
		}
	}
	return nil
}

// items lays out a sub-mix list so that each row sits at the position of
// the dough row with the same name, filling the gaps with holes.
func (b *Built) items(field, mixName string, idx int, rows []RowSpec, dough map[string]int, kind writer.ItemFlags) error {
	byPos := make(map[int]RowSpec, len(rows))
	last := -1
	for i, r := range rows {
		p, ok := dough[r.Name]
		if !ok {
			return &ScenarioError{
				Field:   fmt.Sprintf("%s[%d].name", field, i),
				Message: fmt.Sprintf("no dough row named %q", r.Name),
			}
		}
		byPos[p] = r
		last = max(last, p)
	}

	key := recipe.FloursKey
	if kind.IsNonFlour() {
		key = recipe.NonFloursKey
	}

	w := b.Writer
	for p := 0; p <= last; p++ {
		w.SelectMix(idx)
		r, ok := byPos[p]
		if !ok {
			w.NewItem(kind.Hole())
			continue
		}
		w.NewItem(kind.MixItem())
		if err := b.register(fmt.Sprintf("%s[%d]", field, p), mixName, r.Name, idx, key(p), r.Set); err != nil {
			return err
		}
	}
	return nil
}

// register records the row under the cursor and writes its inputs.
func (b *Built) register(field, mixName, rowName string, idx int, key recipe.RowKey, in Inputs) error {
	w := b.Writer
	addr := mixName + "." + rowName
	b.rows[addr] = rowRef{mix: idx, key: key}

	for _, f := range writer.Fields() {
		if s := w.Slot(f); s != values.OverflowSlot {
			b.labels[s] = addr + "." + f.String()
		}
	}

	names := make([]string, 0, len(in))
	for n := range in {
		names = append(names, n)
	}
	slices.Sort(names)

	for _, n := range names {
		f, ok := writer.ParseField(n)
		if !ok {
			return &ScenarioError{Field: field + "." + n, Message: "unknown field"}
		}
		s := w.Slot(f)
		if s == values.OverflowSlot {
			if w.Overflowed() {
				continue
			}
			return &ScenarioError{Field: field + "." + n, Message: fmt.Sprintf("%s has no %s", addr, n)}
		}
		w.Set(s, in[n])
	}
	return nil
}

// Slot resolves an address such as "starter.water" and a field name.
func (b *Built) Slot(row, field string) (values.Slot, error) {
	ref, ok := b.rows[row]
	if !ok {
		return values.OverflowSlot, fmt.Errorf("unknown row %q", row)
	}
	f, ok := writer.ParseField(field)
	if !ok {
		return values.OverflowSlot, fmt.Errorf("unknown field %q", field)
	}

	b.Writer.Seek(ref.mix, ref.key)
	s := b.Writer.Slot(f)
	if s == values.OverflowSlot {
		return s, fmt.Errorf("%s has no %s", row, field)
	}
	return s, nil
}

// Label returns the "<mix>.<row>.<field>" name of slot s, or a generic
// name for a slot the scenario never created.
func (b *Built) Label(s values.Slot) string {
	if l, ok := b.labels[s]; ok {
		return l
	}
	return fmt.Sprintf("slot%d", s)
}

// Rows lists every registered address in sorted order.
func (b *Built) Rows() []string {
	out := make([]string, 0, len(b.rows))
	for addr := range b.rows {
		out = append(out, addr)
	}
	slices.Sort(out)
	return out
}
