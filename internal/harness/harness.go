package harness

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/roach88/overproofed/internal/codec"
	"github.com/roach88/overproofed/internal/rules"
	"github.com/roach88/overproofed/internal/solve"
	"github.com/roach88/overproofed/internal/values"
)

// DefaultCapacity is the store capacity used when neither the scenario nor
// WithCapacity sets one.
const DefaultCapacity = 1024

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	capacity int
	logger   *slog.Logger
}

// WithCapacity sets the store capacity for scenarios that do not set their
// own.
func WithCapacity(n int) Option {
	return func(c *runConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithLogger sets the logger handed to the solver.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run builds, solves and checks a scenario.
//
// An error means the scenario could not be run at all: it addresses a row
// or field that does not exist, or the store overflowed. Unmet
// expectations are reported in Result.Failures instead.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		capacity: DefaultCapacity,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	b, err := Build(s, cfg.capacity)
	if err != nil {
		return nil, err
	}

	expected := make([]values.Slot, len(s.Expect))
	for i, e := range s.Expect {
		slot, err := b.Slot(e.Row, e.Field)
		if err != nil && !b.Writer.Overflowed() {
			return nil, &ScenarioError{Field: fmt.Sprintf("expect[%d]", i), Message: err.Error()}
		}
		expected[i] = slot
	}

	w := b.Writer
	vals := w.Values()

	input, err := codec.EncodeValues(vals)
	if err != nil {
		return nil, err
	}

	solver, err := w.Solver(solve.WithLogger(cfg.logger.With("scenario", s.Name)))
	if err != nil {
		return nil, err
	}

	result := NewResult(s.Name)
	result.InputCode = input

	for step := range solver.Steps(vals) {
		fact, _ := solver.Fact(step.Equation)
		result.Steps = append(result.Steps, Step{
			Slot:     step.Slot,
			Label:    b.Label(step.Slot),
			Value:    Number(step.Value),
			Equation: step.Equation,
			Family:   fact.Family.String(),
			Where:    fact.Where(),
		})
	}
	result.UnsolvedPairs = len(solver.UnsolvedPairs())

	for _, slot := range slices.Sorted(maps.Keys(b.labels)) {
		v := vals.Get(slot)
		result.Slots = append(result.Slots, SlotValue{Slot: slot, Label: b.labels[slot], Value: Number(v)})
		if values.IsUnsolved(v) {
			result.Unsolved = append(result.Unsolved, b.labels[slot])
		}
	}

	for i, f := range rules.Generate(w.Recipe()) {
		if len(vals.Unsolved(rules.Slots(f.Equation))) > 0 {
			continue
		}
		if !rules.Check(f.Equation, vals) {
			result.Inconsistent = append(result.Inconsistent,
				fmt.Sprintf("%d %s %s: %s", i, f.Family, f.Where(), rules.Describe(f.Equation, vals)))
		}
	}

	for i, e := range s.Expect {
		checkExpectation(result, e, vals.Get(expected[i]))
	}
	if s.UnsolvedPairs != nil && *s.UnsolvedPairs != result.UnsolvedPairs {
		result.AddFailure(Failure{
			Label:    "unsolved_pairs",
			Expected: strconv.Itoa(*s.UnsolvedPairs),
			Actual:   strconv.Itoa(result.UnsolvedPairs),
		})
	}
	if s.Inconsistent != nil && *s.Inconsistent != (len(result.Inconsistent) > 0) {
		result.AddFailure(Failure{
			Label:    "inconsistent",
			Expected: strconv.FormatBool(*s.Inconsistent),
			Actual:   strconv.FormatBool(len(result.Inconsistent) > 0),
		})
	}

	cfg.logger.Debug("scenario finished",
		"scenario", s.Name,
		"steps", len(result.Steps),
		"unsolved", len(result.Unsolved),
		"pass", result.Pass)

	return result, nil
}

func checkExpectation(r *Result, e Expectation, got float64) {
	if e.Unsolved {
		if !values.IsUnsolved(got) {
			r.AddFailure(Failure{Label: e.Label(), Expected: "unsolved", Actual: Number(got).String()})
		}
		return
	}

	want := *e.Value
	tol := e.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if values.IsUnsolved(got) || !(math.Abs(got-want) <= tol) {
		r.AddFailure(Failure{
			Label:    e.Label(),
			Expected: fmt.Sprintf("%g ± %g", want, tol),
			Actual:   Number(got).String(),
		})
	}
}
