package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/overproofed/internal/harness"
)

// CheckResult is the payload of the check command.
type CheckResult struct {
	Name         string   `json:"name"`
	Inconsistent []string `json:"inconsistent"`
	Unsolved     []string `json:"unsolved"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <scenario>",
		Short: "Report equations the solved values contradict",
		Long: `Solve the scenario, then evaluate every generated equation whose slots
are all solved. Equations the values do not satisfy are listed; they
mean the inputs over-determine the recipe.

Exit codes:
  0 - No equation is contradicted
  1 - At least one equation is contradicted
  2 - Command error

Examples:
  overproofed check loaf.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, opts *RootOptions, path string) error {
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

	out := CheckResult{Name: result.Name, Inconsistent: result.Inconsistent, Unsolved: result.Unsolved}
	n := len(out.Inconsistent)

	if f.JSON() {
		response := CLIResponse{Status: "ok", Data: out}
		if n > 0 {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    "E_INCONSISTENT",
				Message: fmt.Sprintf("%d equation(s) contradicted", n),
			}
		}
		if err := f.encode(response); err != nil {
			return err
		}
	} else {
		for _, line := range out.Inconsistent {
			fmt.Fprintf(f.Writer, "✗ %s\n", line)
		}
		if len(out.Unsolved) > 0 {
			fmt.Fprintf(f.Writer, "%d slot(s) unsolved\n", len(out.Unsolved))
		}
		if n == 0 {
			fmt.Fprintf(f.Writer, "✓ %s is consistent\n", out.Name)
		}
	}

	if n > 0 {
		return reportedExitError(ExitFailure, fmt.Sprintf("%d equation(s) contradicted", n))
	}
	return nil
}
