package writer

import "fmt"

// ItemFlags selects what NewItem appends: which list (flour or non-flour)
// and what kind of row (hole, dough-level row, or sub-mix row).
//
// Bit layout:
//
//	bit 0     0 = flour, 1 = non-flour
//	bits 1-2  00 = hole, 01 = total item, 10 = mix item
//
// The zero value is a flour hole.
type ItemFlags uint8

const (
	IsFlourMask  ItemFlags = 0b001
	ItemKindMask ItemFlags = 0b110

	FlagFlour    ItemFlags = 0b000
	FlagNonFlour ItemFlags = 0b001

	FlagHole      ItemFlags = 0b000
	FlagTotalItem ItemFlags = 0b010
	FlagMixItem   ItemFlags = 0b100
)

// Flour returns f targeting the flour list.
func (f ItemFlags) Flour() ItemFlags { return f&^IsFlourMask | FlagFlour }

// NonFlour returns f targeting the non-flour list.
func (f ItemFlags) NonFlour() ItemFlags { return f&^IsFlourMask | FlagNonFlour }

// Hole returns f appending a hole.
func (f ItemFlags) Hole() ItemFlags { return f&^ItemKindMask | FlagHole }

// TotalItem returns f appending a dough-level row.
func (f ItemFlags) TotalItem() ItemFlags { return f&^ItemKindMask | FlagTotalItem }

// MixItem returns f appending a sub-mix row.
func (f ItemFlags) MixItem() ItemFlags { return f&^ItemKindMask | FlagMixItem }

// IsNonFlour reports whether f targets the non-flour list.
func (f ItemFlags) IsNonFlour() bool { return f&IsFlourMask == FlagNonFlour }

// Kind returns the row-kind bits of f.
func (f ItemFlags) Kind() ItemFlags { return f & ItemKindMask }

func (f ItemFlags) String() string {
	list := "flour"
	if f.IsNonFlour() {
		list = "nonflour"
	}
	switch f.Kind() {
	case FlagHole:
		return list + "/hole"
	case FlagTotalItem:
		return list + "/total-item"
	case FlagMixItem:
		return list + "/mix-item"
	default:
		return fmt.Sprintf("%s/kind(%d)", list, f.Kind()>>1)
	}
}
