package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc_ContiguousUnsolved(t *testing.T) {
	v := New(8)

	a := v.Alloc(3)
	b := v.Alloc(2)

	assert.Equal(t, []Slot{0, 1, 2}, a)
	assert.Equal(t, []Slot{3, 4}, b)
	assert.Equal(t, 5, v.Len())
	for _, s := range append(a, b...) {
		assert.True(t, IsUnsolved(v.Get(s)), "slot %d should start unsolved", s)
	}
	assert.False(t, v.Overflowed())
}

func TestAlloc_ExactCapacityDoesNotOverflow(t *testing.T) {
	v := New(4)

	v.Alloc(4)

	assert.False(t, v.Overflowed())
	assert.Equal(t, 4, v.Len())
}

func TestAlloc_OverflowRecordsFirstLength(t *testing.T) {
	const n = 5
	v := New(n)

	for i := 0; i < n; i++ {
		assert.Equal(t, Slot(i), v.AllocOne())
	}
	assert.False(t, v.Overflowed())

	assert.Equal(t, OverflowSlot, v.AllocOne())
	require.True(t, v.Overflowed())

	at, ok := v.OverflowLen()
	require.True(t, ok)
	assert.Equal(t, n, at)

	// Later overflows keep the first record.
	assert.Equal(t, []Slot{OverflowSlot, OverflowSlot, OverflowSlot}, v.Alloc(3))
	at, _ = v.OverflowLen()
	assert.Equal(t, n, at)
	assert.Equal(t, n, v.Len())
}

func TestAlloc_OverflowWhenBatchDoesNotFit(t *testing.T) {
	v := New(4)
	v.Alloc(2)

	got := v.Alloc(3)

	assert.Equal(t, []Slot{OverflowSlot, OverflowSlot, OverflowSlot}, got)
	at, ok := v.OverflowLen()
	assert.True(t, ok)
	assert.Equal(t, 2, at)
	assert.Equal(t, 2, v.Len(), "failed batch must not allocate partially")
}

func TestGet_OutOfRangeReturnsFallback(t *testing.T) {
	v := New(2)
	v.Alloc(2)

	assert.True(t, math.IsInf(v.Get(OverflowSlot), 1))
	assert.True(t, math.IsInf(v.Get(2), 1))
	assert.False(t, v.Overflowed(), "reads never mark overflow")

	_, ok := v.Lookup(2)
	assert.False(t, ok)
}

func TestSet_OutOfRangeWritesFallback(t *testing.T) {
	v := New(2)
	v.Alloc(2)

	assert.NotPanics(t, func() { v.Set(7, 3.5) })

	require.True(t, v.Overflowed())
	at, _ := v.OverflowLen()
	assert.Equal(t, 7, at)

	// The fallback is shared by every out-of-range slot.
	assert.Equal(t, 3.5, v.Get(OverflowSlot))
	assert.Equal(t, 3.5, v.Get(9))
}

func TestSetGet(t *testing.T) {
	v := New(4)
	s := v.AllocOne()

	assert.False(t, v.IsSolved(s))
	v.Set(s, 0.69)
	assert.True(t, v.IsSolved(s))
	assert.Equal(t, 0.69, v.Get(s))
}

func TestIsUnsolved_IndeterminateArithmetic(t *testing.T) {
	zero := 0.0
	assert.True(t, IsUnsolved(Unsolved))
	assert.True(t, IsUnsolved(zero/zero))
	assert.True(t, IsUnsolved(math.Inf(1)*zero))
	assert.False(t, IsUnsolved(math.Inf(-1)))
	assert.False(t, IsUnsolved(0))

	// NaN never equals itself, so equality can never report "solved".
	assert.False(t, Unsolved == Unsolved)
}

func TestFromSlice_IsFull(t *testing.T) {
	v := FromSlice([]float64{1, 2, 3})

	assert.Equal(t, 3, v.Cap())
	assert.Equal(t, 2.0, v.Get(1))
	assert.Equal(t, OverflowSlot, v.AllocOne())
	assert.True(t, v.Overflowed())
}

func TestFromSlice_ClampsToMaxCapacity(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantLen int
	}{
		{"below limit", 3, 3},
		{"at limit", MaxCapacity, MaxCapacity},
		{"above limit", MaxCapacity + 5, MaxCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := make([]float64, tt.n)
			for i := range vs {
				vs[i] = float64(i)
			}
			v := FromSlice(vs)
			assert.Equal(t, tt.wantLen, v.Len())
			assert.Equal(t, tt.wantLen, v.Cap())
			assert.Equal(t, float64(tt.wantLen-1), v.Get(Slot(tt.wantLen-1)))
		})
	}
}

func TestNew_ClampsCapacity(t *testing.T) {
	assert.Equal(t, MaxCapacity, New(1<<20).Cap())
	assert.Equal(t, 0, New(-3).Cap())
}

func TestUnsolvedAndSnapshot(t *testing.T) {
	v := New(4)
	slots := v.Alloc(4)
	v.Set(slots[1], 2)
	v.Set(slots[3], 4)

	assert.Equal(t, []Slot{0, 2}, v.Unsolved(slots))

	snap := v.Snapshot()
	snap[1] = 100
	assert.Equal(t, 2.0, v.Get(1), "snapshot must be a copy")
}

func TestLoad_ByPosition(t *testing.T) {
	v := New(3)
	v.Alloc(3)

	n := v.Load([]float64{1, math.NaN(), 3, 4})

	assert.Equal(t, 3, n)
	assert.Equal(t, 1.0, v.Get(0))
	assert.False(t, v.IsSolved(1))
	assert.Equal(t, 3.0, v.Get(2))
}
