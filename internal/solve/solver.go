// Package solve propagates known recipe values through the generated
// equations until nothing more can be derived.
//
// The solver is single-pass and local: it only ever evaluates an equation
// that has exactly one unsolved slot left, writes the result, and lets that
// write make further equations ready. It never revises a solved slot and
// never reports an error; whatever is still unsolved when the ready stack
// runs dry is simply left unsolved.
//
// Thread-safety: a Solver and the Values it works against have one owner.
package solve

import (
	"iter"
	"log/slog"

	"github.com/roach88/overproofed/internal/recipe"
	"github.com/roach88/overproofed/internal/rules"
	"github.com/roach88/overproofed/internal/values"
)

// Step is one derived value.
type Step struct {
	Slot  values.Slot
	Value float64
	// Equation is the index of the retained equation that produced the
	// value; see Solver.Fact.
	Equation int
}

// Pair records that Slot is still unsolved in retained equation Equation.
type Pair struct {
	Slot     values.Slot
	Equation int
}

type pending struct {
	fact rules.Fact
	// unsolved counts the equation's unsolved slot references. A slot
	// referenced twice counts twice.
	unsolved int
}

// Solver holds the retained equations of one recipe and the state of a
// solving pass over them.
//
// INVARIANTS:
//   - equations whose references were all solved at construction are
//     discarded; equation indexes refer to the retained list
//   - pairs holds exactly the (slot, equation) references not yet solved
//   - ready is LIFO; an index may be stale by the time it is popped
type Solver struct {
	eqs   []pending
	ready []int
	pairs []Pair

	logger *slog.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger traces each derived value and each abandoned equation at
// Debug level. The default logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// New generates the equations of r and seeds the ready stack from the
// current contents of vals.
//
// Fallback equations are generated first so they sit at the bottom of the
// ready stack: when a slot can be derived either structurally or from a
// fallback, the structural equation wins.
func New(r recipe.Recipe, vals *values.Values, opts ...Option) *Solver {
	s := &Solver{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	for _, fact := range rules.Generate(r) {
		id := len(s.eqs)
		before := len(s.pairs)
		for _, slot := range rules.Slots(fact.Equation) {
			if !vals.IsSolved(slot) {
				s.pairs = append(s.pairs, Pair{Slot: slot, Equation: id})
			}
		}

		unsolved := len(s.pairs) - before
		if unsolved == 1 {
			s.ready = append(s.ready, id)
		}
		if unsolved > 0 {
			s.eqs = append(s.eqs, pending{fact: fact, unsolved: unsolved})
		}
	}

	return s
}

// Len returns the number of retained equations.
func (s *Solver) Len() int {
	return len(s.eqs)
}

// Fact returns retained equation i with its provenance.
func (s *Solver) Fact(i int) (rules.Fact, bool) {
	if i < 0 || i >= len(s.eqs) {
		return rules.Fact{}, false
	}
	return s.eqs[i].fact, true
}

// UnsolvedPairs returns a copy of the (slot, equation) references that are
// still unsolved. After a complete pass an empty result means every slot
// the recipe's equations mention was derived.
func (s *Solver) UnsolvedPairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Step derives the next value, writes it into vals and returns it. It
// reports false once no equation is ready.
//
// An equation whose single remaining slot evaluates to an indeterminate
// result (0/0, Inf*0) is dropped for the rest of the pass; the slot may
// still be reached through another equation.
func (s *Solver) Step(vals *values.Values) (Step, bool) {
	for len(s.ready) > 0 {
		id := s.ready[len(s.ready)-1]
		s.ready = s.ready[:len(s.ready)-1]

		eq := &s.eqs[id]
		if eq.unsolved < 1 {
			// Already finished by another equation sharing its last slot.
			continue
		}

		slot, ok := firstUnsolved(eq.fact.Equation, vals)
		if !ok {
			continue
		}

		v := rules.SolveFor(eq.fact.Equation, slot, vals)
		if values.IsUnsolved(v) {
			s.logger.Debug("equation abandoned",
				"equation", id,
				"slot", slot,
				"family", eq.fact.Family.String(),
				"where", eq.fact.Where(),
				"describe", rules.Describe(eq.fact.Equation, vals),
			)
			continue
		}

		vals.Set(slot, v)
		s.release(slot)

		s.logger.Debug("slot solved",
			"slot", slot,
			"value", v,
			"equation", id,
			"family", eq.fact.Family.String(),
			"where", eq.fact.Where(),
		)

		return Step{Slot: slot, Value: v, Equation: id}, true
	}

	return Step{}, false
}

// release drops every reference to a newly solved slot, queueing each
// equation left with exactly one unsolved reference.
func (s *Solver) release(slot values.Slot) {
	for i := len(s.pairs) - 1; i >= 0; i-- {
		p := s.pairs[i]
		if p.Slot != slot {
			continue
		}

		eq := &s.eqs[p.Equation]
		eq.unsolved--
		if eq.unsolved == 1 {
			s.ready = append(s.ready, p.Equation)
		}

		last := len(s.pairs) - 1
		s.pairs[i] = s.pairs[last]
		s.pairs = s.pairs[:last]
	}
}

func firstUnsolved(eq rules.Equation, vals *values.Values) (values.Slot, bool) {
	for _, slot := range rules.Slots(eq) {
		if !vals.IsSolved(slot) {
			return slot, true
		}
	}
	return 0, false
}

// Steps yields every remaining step of the pass in order.
func (s *Solver) Steps(vals *values.Values) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for {
			st, ok := s.Step(vals)
			if !ok || !yield(st) {
				return
			}
		}
	}
}

// Run steps to exhaustion and returns every derived value in order.
func (s *Solver) Run(vals *values.Values) []Step {
	var steps []Step
	for st := range s.Steps(vals) {
		steps = append(steps, st)
	}
	return steps
}

// Solve builds a Solver for r and runs it to exhaustion against vals.
func Solve(r recipe.Recipe, vals *values.Values, opts ...Option) ([]Step, *Solver) {
	s := New(r, vals, opts...)
	return s.Run(vals), s
}
