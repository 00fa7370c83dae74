package harness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/overproofed/internal/values"
)

// Number is a slot value that survives JSON encoding: unsolved becomes
// null and infinities become the strings "+Inf" and "-Inf".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case values.IsUnsolved(f):
		return []byte("null"), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n Number) String() string {
	f := float64(n)
	if values.IsUnsolved(f) {
		return "unsolved"
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// Step is one derived value, in solving order.
type Step struct {
	Slot     values.Slot `json:"slot"`
	Label    string      `json:"label"`
	Value    Number      `json:"value"`
	Equation int         `json:"equation"`
	Family   string      `json:"family"`
	Where    string      `json:"where"`
}

// SlotValue is one row of the final value table.
type SlotValue struct {
	Slot  values.Slot `json:"slot"`
	Label string      `json:"label"`
	Value Number      `json:"value"`
}

// Failure is one unmet expectation.
type Failure struct {
	Label    string `json:"label"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", f.Label, f.Expected, f.Actual)
}

// Result is the outcome of running a scenario.
type Result struct {
	Name string `json:"name"`

	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// InputCode is the share code of the store before solving.
	InputCode string `json:"input_code"`

	Steps []Step `json:"steps"`

	// Slots is the final value of every labelled slot, in slot order.
	Slots []SlotValue `json:"slots"`

	// UnsolvedPairs is the number of reverse-index entries left after
	// solving.
	UnsolvedPairs int `json:"unsolved_pairs"`

	// Unsolved labels every slot still unsolved.
	Unsolved []string `json:"unsolved"`

	// Inconsistent describes every fully solved equation whose values do
	// not satisfy it.
	Inconsistent []string `json:"inconsistent"`

	Failures []Failure `json:"failures"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:         name,
		Pass:         true,
		Steps:        []Step{},
		Slots:        []SlotValue{},
		Unsolved:     []string{},
		Inconsistent: []string{},
		Failures:     []Failure{},
	}
}

// AddFailure records an unmet expectation and marks the result as failed.
func (r *Result) AddFailure(f Failure) {
	r.Failures = append(r.Failures, f)
	r.Pass = false
}

// Table renders the final values one slot per line as
// "slot<TAB>label<TAB>value".
func (r *Result) Table() string {
	var b strings.Builder
	for _, s := range r.Slots {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", s.Slot, s.Label, s.Value)
	}
	return b.String()
}
