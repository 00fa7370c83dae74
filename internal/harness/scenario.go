package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/overproofed/internal/writer"
)

// DefaultTolerance is the absolute tolerance of an expectation that does
// not set one.
const DefaultTolerance = 5e-4

// DoughName addresses the dough in expectations and labels.
const DoughName = "dough"

// Scenario describes a recipe to build, the values to seed it with and
// what solving it should produce.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Capacity overrides the value store capacity. Zero uses the caller's
	// default.
	Capacity int `yaml:"capacity,omitempty" json:"capacity,omitempty"`

	Dough MixSpec   `yaml:"dough" json:"dough"`
	Mixes []MixSpec `yaml:"mixes,omitempty" json:"mixes,omitempty"`

	Expect []Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`

	// UnsolvedPairs, if set, is the number of reverse-index entries the
	// solver should have left.
	UnsolvedPairs *int `yaml:"unsolved_pairs,omitempty" json:"unsolved_pairs,omitempty"`

	// Inconsistent, if set, says whether some fully solved equation should
	// fail its check.
	Inconsistent *bool `yaml:"inconsistent,omitempty" json:"inconsistent,omitempty"`
}

// MixSpec describes the dough or one sub-mix.
type MixSpec struct {
	// Name is required for sub-mixes and must be empty for the dough.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Total    Inputs `yaml:"total,omitempty" json:"total,omitempty"`
	Flour    Inputs `yaml:"flour,omitempty" json:"flour,omitempty"`
	NonFlour Inputs `yaml:"nonflour,omitempty" json:"nonflour,omitempty"`

	Flours    []RowSpec `yaml:"flours,omitempty" json:"flours,omitempty"`
	NonFlours []RowSpec `yaml:"nonflours,omitempty" json:"nonflours,omitempty"`
}

// RowSpec is one named flour or non-flour row.
type RowSpec struct {
	Name string `yaml:"name" json:"name"`
	Set  Inputs `yaml:"set,omitempty" json:"set,omitempty"`
}

// Inputs maps field names to the values a row starts with.
type Inputs map[string]float64

// Expectation checks one slot after solving.
type Expectation struct {
	// Row is "<mix>.<row>", e.g. "dough.flour" or "starter.water".
	Row   string `yaml:"row" json:"row"`
	Field string `yaml:"field" json:"field"`

	Value     *float64 `yaml:"value,omitempty" json:"value,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`

	// Unsolved expects the slot to remain unsolved.
	Unsolved bool `yaml:"unsolved,omitempty" json:"unsolved,omitempty"`
}

// Label renders the expectation's address, e.g. "dough.flour.weight".
func (e Expectation) Label() string {
	return e.Row + "." + e.Field
}

// ScenarioError reports an invalid scenario.
type ScenarioError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ScenarioError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

//go:embed schema.cue
var schemaSource string

// LoadScenario reads a scenario file. Files ending in .cue are evaluated as
// CUE; anything else is parsed as YAML, rejecting unknown fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s *Scenario
	if filepath.Ext(path) == ".cue" {
		s, err = ParseCUE(path, data)
	} else {
		s, err = ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseYAML parses and validates a YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := cuecontext.New()
	schema, err := scenarioSchema(ctx)
	if err != nil {
		return nil, err
	}
	v := ctx.Encode(&s)
	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", formatCUEError(err))
	}

	return finish(&s)
}

// ParseCUE evaluates a CUE scenario. filename is used in error positions.
func ParseCUE(filename string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	schema, err := scenarioSchema(ctx)
	if err != nil {
		return nil, err
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", formatCUEError(err))
	}

	var s Scenario
	if err := v.Decode(&s); err != nil {
		return nil, formatCUEError(err)
	}
	return finish(&s)
}

func scenarioSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v.LookupPath(cue.ParsePath("#Scenario")), nil
}

func finish(s *Scenario) (*Scenario, error) {
	normalize(s)
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// normalize puts every name into NFC so that visually identical names
// typed on different systems match.
func normalize(s *Scenario) {
	nfc := func(rows []RowSpec) {
		for i := range rows {
			rows[i].Name = norm.NFC.String(rows[i].Name)
		}
	}
	nfc(s.Dough.Flours)
	nfc(s.Dough.NonFlours)
	for i := range s.Mixes {
		s.Mixes[i].Name = norm.NFC.String(s.Mixes[i].Name)
		nfc(s.Mixes[i].Flours)
		nfc(s.Mixes[i].NonFlours)
	}
	for i := range s.Expect {
		s.Expect[i].Row = norm.NFC.String(s.Expect[i].Row)
	}
}

var aggregateNames = map[string]bool{"total": true, "flour": true, "nonflour": true}

// validateScenario checks what the schema cannot: name uniqueness and
// expectation shape. Row addresses are resolved later, against the built
// recipe.
func validateScenario(s *Scenario) error {
	if s.Dough.Name != "" {
		return &ScenarioError{Field: "dough.name", Message: "the dough cannot be named"}
	}

	if err := validateRows("dough", s.Dough); err != nil {
		return err
	}

	mixNames := map[string]bool{DoughName: true}
	for i, m := range s.Mixes {
		field := fmt.Sprintf("mixes[%d]", i)
		if mixNames[m.Name] {
			return &ScenarioError{Field: field + ".name", Message: fmt.Sprintf("duplicate mix name %q", m.Name)}
		}
		mixNames[m.Name] = true
		if err := validateRows(field, m); err != nil {
			return err
		}
	}

	for i, e := range s.Expect {
		field := fmt.Sprintf("expect[%d]", i)
		if e.Unsolved == (e.Value != nil) {
			return &ScenarioError{Field: field, Message: "exactly one of value or unsolved is required"}
		}
		if _, ok := writer.ParseField(e.Field); !ok {
			return &ScenarioError{Field: field + ".field", Message: fmt.Sprintf("unknown field %q", e.Field)}
		}
		if mix, _, ok := strings.Cut(e.Row, "."); !ok || !mixNames[mix] {
			return &ScenarioError{Field: field + ".row", Message: fmt.Sprintf("unknown mix in %q", e.Row)}
		}
	}
	return nil
}

func validateRows(field string, m MixSpec) error {
	seen := map[string]bool{}
	check := func(list string, rows []RowSpec) error {
		for i, r := range rows {
			f := fmt.Sprintf("%s.%s[%d].name", field, list, i)
			if aggregateNames[r.Name] {
				return &ScenarioError{Field: f, Message: fmt.Sprintf("%q is reserved", r.Name)}
			}
			if seen[r.Name] {
				return &ScenarioError{Field: f, Message: fmt.Sprintf("duplicate row name %q", r.Name)}
			}
			seen[r.Name] = true
		}
		return nil
	}
	if err := check("flours", m.Flours); err != nil {
		return err
	}
	return check("nonflours", m.NonFlours)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &ScenarioError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
