package rules

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/overproofed/internal/values"
)

// Equation is a sealed interface; only Sum, PercentOf and
// TotalFlourBakers100 implement it.
type Equation interface {
	fmt.Stringer
	isEquation()
}

// Sum states Sum = Addends[0] + Addends[1] + ... An empty Addends list
// states Sum = 0.
type Sum struct {
	Sum     values.Slot
	Addends []values.Slot
}

// PercentOf states Product = Pct * Of.
type PercentOf struct {
	Product values.Slot
	Pct     values.Slot
	Of      values.Slot
}

// TotalFlourBakers100 fixes a mix's flour baker's percentage to 100%.
// It is the fallback used when nothing else determines that slot.
type TotalFlourBakers100 struct {
	Slot values.Slot
}

func (Sum) isEquation()                 {}
func (PercentOf) isEquation()           {}
func (TotalFlourBakers100) isEquation() {}

// Slots lists every slot an equation references, in a fixed order:
// Sum then Addends; Product, Pct, Of; the single flour slot.
//
// A slot may appear more than once (a flour row's PercentOf has the flour
// weight as both Product and Of).
func Slots(eq Equation) []values.Slot {
	switch eq := eq.(type) {
	case Sum:
		out := make([]values.Slot, 0, 1+len(eq.Addends))
		out = append(out, eq.Sum)
		return append(out, eq.Addends...)
	case PercentOf:
		return []values.Slot{eq.Product, eq.Pct, eq.Of}
	case TotalFlourBakers100:
		return []values.Slot{eq.Slot}
	default:
		panic(fmt.Sprintf("rules: unknown equation type %T", eq))
	}
}

// SolveFor rearranges eq for slot s and evaluates it against vals.
//
// The result may be unsolved even when every other slot is solved: 0/0 and
// Inf*0 are NaN. Callers treat that as "this equation cannot solve s now"
// and leave s alone. Division of a nonzero value by zero yields ±Inf and is
// an ordinary result. Asking for a slot the equation does not reference
// also returns values.Unsolved.
func SolveFor(eq Equation, s values.Slot, vals *values.Values) float64 {
	get := vals.Get

	switch eq := eq.(type) {
	case Sum:
		if s == eq.Sum {
			var sum float64
			for _, a := range eq.Addends {
				sum += get(a)
			}
			return sum
		}
		if !slices.Contains(eq.Addends, s) {
			return values.Unsolved
		}
		var others float64
		for _, a := range eq.Addends {
			if a != s {
				others += get(a)
			}
		}
		return get(eq.Sum) - others

	case PercentOf:
		switch s {
		case eq.Product:
			return get(eq.Pct) * get(eq.Of)
		case eq.Pct:
			return get(eq.Product) / get(eq.Of)
		case eq.Of:
			return get(eq.Product) / get(eq.Pct)
		}
		return values.Unsolved

	case TotalFlourBakers100:
		if s == eq.Slot {
			return 1.0
		}
		return values.Unsolved

	default:
		panic(fmt.Sprintf("rules: unknown equation type %T", eq))
	}
}

// checkTolerance is the relative tolerance used by Check.
const checkTolerance = 1e-9

// Check reports whether every slot of eq is solved and the values satisfy
// it. It is a diagnostic; the solver never calls it.
func Check(eq Equation, vals *values.Values) bool {
	get := vals.Get

	switch eq := eq.(type) {
	case Sum:
		var sum float64
		for _, a := range eq.Addends {
			sum += get(a)
		}
		return approxEqual(get(eq.Sum), sum)
	case PercentOf:
		return approxEqual(get(eq.Product), get(eq.Pct)*get(eq.Of))
	case TotalFlourBakers100:
		return get(eq.Slot) == 1.0
	default:
		panic(fmt.Sprintf("rules: unknown equation type %T", eq))
	}
}

func approxEqual(a, b float64) bool {
	if values.IsUnsolved(a) || values.IsUnsolved(b) {
		return false
	}
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	scale := max(math.Abs(a), math.Abs(b), 1)
	return math.Abs(a-b) <= checkTolerance*scale
}

// Describe renders eq with the current value of each slot, e.g.
// "sum 6[0] 2[1] 4[2]".
func Describe(eq Equation, vals *values.Values) string {
	var b strings.Builder
	b.WriteString(kindName(eq))
	for _, s := range Slots(eq) {
		fmt.Fprintf(&b, " %g[%d]", vals.Get(s), s)
	}
	return b.String()
}

func kindName(eq Equation) string {
	switch eq.(type) {
	case Sum:
		return "sum"
	case PercentOf:
		return "pct"
	case TotalFlourBakers100:
		return "flr"
	default:
		panic(fmt.Sprintf("rules: unknown equation type %T", eq))
	}
}

func (e Sum) String() string {
	if len(e.Addends) == 0 {
		return fmt.Sprintf("s%d = 0", e.Sum)
	}
	terms := make([]string, len(e.Addends))
	for i, a := range e.Addends {
		terms[i] = fmt.Sprintf("s%d", a)
	}
	return fmt.Sprintf("s%d = %s", e.Sum, strings.Join(terms, " + "))
}

func (e PercentOf) String() string {
	return fmt.Sprintf("s%d = s%d * s%d", e.Product, e.Pct, e.Of)
}

func (e TotalFlourBakers100) String() string {
	return fmt.Sprintf("s%d = 1", e.Slot)
}
