// Package recipe models a hierarchical bread-dough recipe as a tree of mixes
// whose quantities live in a values.Values store.
//
// A Recipe is one dough mix plus zero or more sub-mixes (preferments,
// starters, soakers). Every mix has three aggregate rows (total, flour,
// nonflour) and ordered lists of flour and non-flour ingredient rows. A nil
// entry in a row list is a hole: it keeps later rows aligned by position
// across mixes without being a row itself.
//
// Rows in the dough are WithMixes items, rows in sub-mixes are InMix items.
// Dough rows and sub-mix rows are matched purely by position.
package recipe

import (
	"fmt"

	"github.com/roach88/overproofed/internal/values"
)

// Amounts are the slots every item has.
type Amounts struct {
	Weight values.Slot
	Bakers values.Slot
}

// Item is a sealed interface; only WithMixes and InMix implement it.
type Item interface {
	isItem()
}

// WithMixes is a dough-level row. Part of its weight may come from
// sub-mixes, the rest is added directly to the final dough.
type WithMixes struct {
	Amounts
	// WeightInMixes is the sum of this row's weight across sub-mixes.
	WeightInMixes values.Slot
	// WeightLessMixes is the weight added to the final dough.
	WeightLessMixes values.Slot
	// PercentInMixes is WeightInMixes over Weight.
	PercentInMixes values.Slot
	// PercentLessMixes is WeightLessMixes over Weight.
	PercentLessMixes values.Slot
}

// InMix is a sub-mix row.
type InMix struct {
	Amounts
	// PercentOfTotal is this row's weight in the mix over the matching
	// dough row's weight.
	PercentOfTotal values.Slot
}

func (WithMixes) isItem() {}
func (InMix) isItem()     {}

// AmountsOf returns the slots shared by every item variant.
func AmountsOf(it Item) Amounts {
	switch it := it.(type) {
	case WithMixes:
		return it.Amounts
	case InMix:
		return it.Amounts
	default:
		panic(fmt.Sprintf("recipe: unknown item type %T", it))
	}
}

// AsWithMixes returns it as a dough-level item.
func AsWithMixes(it Item) (WithMixes, bool) {
	w, ok := it.(WithMixes)
	return w, ok
}

// AsInMix returns it as a sub-mix item.
func AsInMix(it Item) (InMix, bool) {
	m, ok := it.(InMix)
	return m, ok
}

// Slots lists every slot of an item, Amounts first.
func Slots(it Item) []values.Slot {
	switch it := it.(type) {
	case WithMixes:
		return []values.Slot{
			it.Weight, it.Bakers,
			it.WeightInMixes, it.WeightLessMixes,
			it.PercentInMixes, it.PercentLessMixes,
		}
	case InMix:
		return []values.Slot{it.Weight, it.Bakers, it.PercentOfTotal}
	default:
		panic(fmt.Sprintf("recipe: unknown item type %T", it))
	}
}

// Mix is one table of a recipe.
type Mix struct {
	Total    Item
	Flour    Item
	NonFlour Item

	// Flours and NonFlours hold ingredient rows; nil entries are holes.
	Flours    []Item
	NonFlours []Item
}

// Recipe is the final dough and the sub-mixes folded into it.
type Recipe struct {
	Dough Mix
	Mixes []Mix
}

// Aggregates returns total, flour and nonflour in that order.
func (m Mix) Aggregates() []Item {
	return []Item{m.Total, m.Flour, m.NonFlour}
}

// Items returns the aggregates followed by every present flour row and then
// every present non-flour row. Holes are skipped.
func (m Mix) Items() []Item {
	items := m.Aggregates()
	items = append(items, present(m.Flours)...)
	items = append(items, present(m.NonFlours)...)
	return items
}

// PresentFlours returns the flour rows without holes.
func (m Mix) PresentFlours() []Item { return present(m.Flours) }

// PresentNonFlours returns the non-flour rows without holes.
func (m Mix) PresentNonFlours() []Item { return present(m.NonFlours) }

func present(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// AllMixes returns the dough followed by every sub-mix.
func (r Recipe) AllMixes() []Mix {
	out := make([]Mix, 0, 1+len(r.Mixes))
	out = append(out, r.Dough)
	return append(out, r.Mixes...)
}

// Slots lists every slot referenced by the recipe, dough first.
func (r Recipe) Slots() []values.Slot {
	var out []values.Slot
	for _, m := range r.AllMixes() {
		for _, it := range m.Items() {
			out = append(out, Slots(it)...)
		}
	}
	return out
}
