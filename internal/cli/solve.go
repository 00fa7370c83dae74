package cli

import (
	"context"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/overproofed/internal/harness"
	"github.com/roach88/overproofed/internal/store"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Table bool // print the final value table instead of the steps
}

// solveOutput is the JSON payload of the solve command.
type solveOutput struct {
	*harness.Result
	RunID string `json:"run_id,omitempty"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <scenario>",
		Short: "Derive every value a scenario determines",
		Long: `Build the scenario's recipe, set its inputs and run one solving pass.

Each derived value is printed in the order it was found, with the
equation that produced it. With --db the run is appended to the run log.

Exit codes:
  0 - Solved (possibly partially)
  1 - Recipe too large for configured capacity, or run log write failed
  2 - Command error (missing or invalid scenario)

Examples:
  overproofed solve loaf.yaml
  overproofed solve loaf.yaml --table
  overproofed solve loaf.cue --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Table, "table", false, "print every slot's final value instead of the steps")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *SolveOptions, path string) error {
	f := opts.formatter(cmd)

	s, err := loadScenario(f, path)
	if err != nil {
		return err
	}

	result, err := harness.Run(s,
		harness.WithCapacity(opts.settings().Capacity),
		harness.WithLogger(opts.logger()),
	)
	if err != nil {
		return scenarioFailure(f, err)
	}

	runID, err := recordRun(cmd.Context(), opts.RootOptions, f, result)
	if err != nil {
		return err
	}

	if f.JSON() {
		return f.Success(solveOutput{Result: result, RunID: runID})
	}

	if opts.Table {
		for _, sv := range result.Slots {
			f.Printf("%5d  %-36s %s\n", sv.Slot, sv.Label, formatNumber(f, sv.Value))
		}
	} else {
		f.Printf("Solved %s: %d values\n", result.Name, len(result.Steps))
		for i, st := range result.Steps {
			f.Printf("%4d  %-36s %12s  %-18s %s\n", i+1, st.Label, formatNumber(f, st.Value), st.Family, st.Where)
		}
	}
	if len(result.Unsolved) > 0 {
		f.Printf("Unsolved: %d slots\n", len(result.Unsolved))
		for _, label := range result.Unsolved {
			f.Printf("  %s\n", label)
		}
	}
	f.Printf("Share code: %s\n", result.InputCode)
	if runID != "" {
		f.Printf("Run: %s\n", runID)
	}
	return nil
}

// formatNumber renders a value with four decimals in the formatter's
// locale.
func formatNumber(f *OutputFormatter, n harness.Number) string {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return n.String()
	}
	return f.printer().Sprintf("%.4f", v)
}

// recordRun appends result to the run log, if one is configured, and
// returns the new run id.
func recordRun(ctx context.Context, opts *RootOptions, f *OutputFormatter, result *harness.Result) (string, error) {
	st, err := opts.openStore()
	if err != nil {
		return "", f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to open run log", err)
	}
	if st == nil {
		return "", nil
	}
	defer st.Close()

	steps := make([]store.StepRecord, len(result.Steps))
	for i, s := range result.Steps {
		steps[i] = store.StepRecord{
			Slot:     int(s.Slot),
			Label:    s.Label,
			Value:    float64(s.Value),
			Equation: s.Equation,
			Family:   s.Family,
			Where:    s.Where,
		}
	}

	run, err := st.RecordRun(ctx, store.Run{
		Scenario:  result.Name,
		InputCode: result.InputCode,
		Unsolved:  len(result.Unsolved),
		Pass:      result.Pass,
	}, steps)
	if err != nil {
		return "", f.Fail(ExitFailure, ErrCodeWriteFailed, "failed to record run", err)
	}
	opts.logger().Debug("run recorded", "id", run.ID, "scenario", run.Scenario, "steps", run.Steps)
	return run.ID, nil
}
