package recipe

import "fmt"

// RowKind names which part of a mix a RowKey points at.
type RowKind int

const (
	RowTotal RowKind = iota
	RowFlour
	RowNonFlour
	RowFlours
	RowNonFlours
)

// RowKey addresses one row of a mix by position. Index is only meaningful
// for RowFlours and RowNonFlours.
type RowKey struct {
	Kind  RowKind
	Index int
}

var (
	KeyTotal    = RowKey{Kind: RowTotal}
	KeyFlour    = RowKey{Kind: RowFlour}
	KeyNonFlour = RowKey{Kind: RowNonFlour}
)

// FloursKey addresses the i-th flour row.
func FloursKey(i int) RowKey { return RowKey{Kind: RowFlours, Index: i} }

// NonFloursKey addresses the i-th non-flour row.
func NonFloursKey(i int) RowKey { return RowKey{Kind: RowNonFlours, Index: i} }

func (k RowKey) String() string {
	switch k.Kind {
	case RowTotal:
		return "total"
	case RowFlour:
		return "flour"
	case RowNonFlour:
		return "nonflour"
	case RowFlours:
		return fmt.Sprintf("flours[%d]", k.Index)
	case RowNonFlours:
		return fmt.Sprintf("nonflours[%d]", k.Index)
	default:
		return fmt.Sprintf("row(%d)", int(k.Kind))
	}
}

// Row returns the item at key. Out-of-range positions and holes report false.
func (m Mix) Row(key RowKey) (Item, bool) {
	var it Item
	switch key.Kind {
	case RowTotal:
		it = m.Total
	case RowFlour:
		it = m.Flour
	case RowNonFlour:
		it = m.NonFlour
	case RowFlours:
		it = at(m.Flours, key.Index)
	case RowNonFlours:
		it = at(m.NonFlours, key.Index)
	}
	return it, it != nil
}

// RowKeys lists every row position of the mix: the aggregates, then every
// flour position and every non-flour position, holes included.
func (m Mix) RowKeys() []RowKey {
	keys := []RowKey{KeyTotal, KeyFlour, KeyNonFlour}
	for i := range m.Flours {
		keys = append(keys, FloursKey(i))
	}
	for i := range m.NonFlours {
		keys = append(keys, NonFloursKey(i))
	}
	return keys
}

func at(items []Item, i int) Item {
	if i < 0 || i >= len(items) {
		return nil
	}
	return items[i]
}

// MixAt returns the dough for index -1 and the i-th sub-mix otherwise.
func (r *Recipe) MixAt(i int) (*Mix, bool) {
	if i == -1 {
		return &r.Dough, true
	}
	if i < 0 || i >= len(r.Mixes) {
		return nil, false
	}
	return &r.Mixes[i], true
}
