package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/overproofed/internal/harness"
	"github.com/roach88/overproofed/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	Steps string // run id whose steps to show
}

// historyStep overrides Value so infinities survive JSON encoding.
type historyStep struct {
	store.StepRecord
	Value harness.Number `json:"value"`
}

type historyStepsOutput struct {
	Run   store.Run     `json:"run"`
	Steps []historyStep `json:"steps"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [scenario]",
		Short: "List recorded runs from the run log",
		Long: `List the most recent runs recorded by solve and test, oldest first.
Give a scenario name to list only its runs, or --steps to show the
derivation of one run.

Requires --db (or OVERPROOFED_DB).

Examples:
  overproofed history --db runs.db
  overproofed history funny_pizza --db runs.db --limit 5
  overproofed history --db runs.db --steps 0190d3f2-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario := ""
			if len(args) == 1 {
				scenario = args[0]
			}
			return runHistory(cmd, opts, scenario)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Steps, "steps", "", "show the steps of this run id")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, scenario string) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	if opts.settings().DB == "" {
		return f.Fail(ExitCommandError, ErrCodeNoDatabase, "history needs a run log (--db)", nil)
	}
	st, err := opts.openStore()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to open run log", err)
	}
	defer st.Close()

	if opts.Steps != "" {
		run, err := st.ReadRun(ctx, opts.Steps)
		if errors.Is(err, store.ErrNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.Steps), err)
		}
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeGeneric, "failed to read run", err)
		}
		steps, err := st.ReadSteps(ctx, run.ID)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeGeneric, "failed to read steps", err)
		}

		if f.JSON() {
			out := historyStepsOutput{Run: run, Steps: make([]historyStep, len(steps))}
			for i, s := range steps {
				out.Steps[i] = historyStep{StepRecord: s, Value: harness.Number(s.Value)}
			}
			return f.Success(out)
		}
		f.Printf("%s  %s  %s\n", run.ID, run.Scenario, run.InputCode)
		for _, s := range steps {
			f.Printf("%4d  %-36s %12s  %-18s %s\n", s.Ord+1, s.Label, formatNumber(f, harness.Number(s.Value)), s.Family, s.Where)
		}
		return nil
	}

	runs, err := st.ListRuns(ctx, scenario, opts.Limit)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to list runs", err)
	}

	if f.JSON() {
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		mark := "✓"
		if !r.Pass {
			mark = "✗"
		}
		f.Printf("%s %s  %-24s %3d steps  %3d unsolved\n", mark, r.ID, r.Scenario, r.Steps, r.Unsolved)
	}
	return nil
}
