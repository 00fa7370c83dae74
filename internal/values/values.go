// Package values provides the flat value store shared by a recipe and its solver.
//
// Every numeric quantity of a recipe (weights, baker's percentages, mix
// ratios) lives in one slot of a Values store and is addressed by a small
// integer Slot. A slot is either unsolved (NaN) or holds its final value.
//
// The store has a fixed capacity chosen at construction. Allocating past it
// never fails: the store records that it overflowed and hands out
// OverflowSlot instead. Reads through an out-of-range slot return a shared
// fallback value (+Inf) and writes land in that same fallback, so callers
// never trap on a recipe that grew too large. Check Overflowed before
// trusting anything computed from the store.
package values

import "math"

// Slot indexes one value in a Values store.
type Slot uint16

// OverflowSlot is handed out by every allocation that does not fit. It is
// never a valid index because MaxCapacity stops one short of it.
const OverflowSlot Slot = math.MaxUint16

// MaxCapacity is the largest usable capacity of a store.
const MaxCapacity = int(OverflowSlot)

// Unsolved is the sentinel stored in slots that have no value yet.
var Unsolved = math.NaN()

// IsUnsolved reports whether v is the unsolved sentinel, or any other NaN.
// Indeterminate arithmetic (0/0, Inf*0) therefore also reads as unsolved.
func IsUnsolved(v float64) bool {
	return math.IsNaN(v)
}

// Values is a growable array of slots with a fixed capacity.
//
// Values is not safe for concurrent use; it has exactly one owner.
type Values struct {
	buf      []float64
	capacity int

	overflowed bool
	overflowAt int
	fallback   float64
}

// New creates an empty store able to hold capacity slots.
// Capacity is clamped to [0, MaxCapacity].
func New(capacity int) *Values {
	capacity = min(max(capacity, 0), MaxCapacity)
	return &Values{
		buf:      make([]float64, 0, capacity),
		capacity: capacity,
		fallback: math.Inf(1),
	}
}

// FromSlice creates a full store whose slots are the given values.
// The store's capacity equals len(vs), so any further allocation overflows.
// Values beyond MaxCapacity are dropped; Len reports how many were kept.
func FromSlice(vs []float64) *Values {
	if len(vs) > MaxCapacity {
		vs = vs[:MaxCapacity]
	}
	buf := make([]float64, len(vs))
	copy(buf, vs)
	return &Values{
		buf:      buf,
		capacity: len(buf),
		fallback: math.Inf(1),
	}
}

// Alloc reserves n contiguous unsolved slots and returns their indexes.
//
// If the slots would not fit, the store is marked as overflowed (recording
// its current length the first time) and n copies of OverflowSlot are
// returned instead.
func (v *Values) Alloc(n int) []Slot {
	n = max(n, 0)
	slots := make([]Slot, n)

	if len(v.buf)+n > v.capacity {
		v.markOverflow(len(v.buf))
		for i := range slots {
			slots[i] = OverflowSlot
		}
		return slots
	}

	start := len(v.buf)
	for i := range slots {
		slots[i] = Slot(start + i)
		v.buf = append(v.buf, Unsolved)
	}
	return slots
}

// AllocOne reserves a single unsolved slot.
func (v *Values) AllocOne() Slot {
	return v.Alloc(1)[0]
}

// Get returns the value at slot s, or the shared fallback if s is out of range.
func (v *Values) Get(s Slot) float64 {
	if int(s) < len(v.buf) {
		return v.buf[s]
	}
	return v.fallback
}

// Lookup returns the value at slot s and whether s is in range.
func (v *Values) Lookup(s Slot) (float64, bool) {
	if int(s) < len(v.buf) {
		return v.buf[s], true
	}
	return 0, false
}

// Set stores x at slot s.
//
// Writing through an out-of-range slot stores x in the shared fallback and
// marks the store as overflowed, recording s as the overflow length if no
// overflow was recorded yet.
func (v *Values) Set(s Slot, x float64) {
	if int(s) < len(v.buf) {
		v.buf[s] = x
		return
	}
	v.markOverflow(int(s))
	v.fallback = x
}

// IsSolved reports whether slot s holds a value.
func (v *Values) IsSolved(s Slot) bool {
	return !IsUnsolved(v.Get(s))
}

// Unsolved returns the subset of slots that are still unsolved, in order.
func (v *Values) Unsolved(slots []Slot) []Slot {
	var out []Slot
	for _, s := range slots {
		if !v.IsSolved(s) {
			out = append(out, s)
		}
	}
	return out
}

// Overflowed reports whether an allocation or write ever ran past capacity.
//
// Merely reading an out-of-range slot does not set it.
func (v *Values) Overflowed() bool {
	return v.overflowed
}

// OverflowLen returns the length recorded by the first overflow.
func (v *Values) OverflowLen() (int, bool) {
	return v.overflowAt, v.overflowed
}

// Len returns the number of allocated slots.
func (v *Values) Len() int {
	return len(v.buf)
}

// Cap returns the store's fixed capacity.
func (v *Values) Cap() int {
	return v.capacity
}

// Snapshot returns a copy of every allocated slot.
func (v *Values) Snapshot() []float64 {
	out := make([]float64, len(v.buf))
	copy(out, v.buf)
	return out
}

// Load overwrites slots by position from vs, as when reloading shared
// values into a freshly rebuilt recipe. Extra entries in vs are ignored and
// the number of slots written is returned.
func (v *Values) Load(vs []float64) int {
	return copy(v.buf, vs)
}

func (v *Values) markOverflow(at int) {
	if v.overflowed {
		return
	}
	v.overflowed = true
	v.overflowAt = at
}
