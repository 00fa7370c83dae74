package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/overproofed/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
	Golden string // directory holding {scenario}.golden value tables
	Update bool   // regenerate golden files
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <path>...",
		Short: "Run scenario files and check their expectations",
		Long: `Run every scenario found under the given files and directories.

Each scenario is solved and its expectations checked: expected values,
unsolved slots, the count of unsolved equation pairs and whether any
solved equation is contradicted. With --golden the final value table is
also compared against {golden}/{scenario}.golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  overproofed test ./scenarios
  overproofed test ./scenarios --filter "pizza*"
  overproofed test ./scenarios --golden ./golden --update
  overproofed test loaf.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "directory of golden value tables")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, paths []string) error {
	f := opts.formatter(cmd)

	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("path not found: %s", p), nil)
		}
	}
	if opts.Update && opts.Golden == "" {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--update requires --golden", nil)
	}

	scenarioFiles, err := findScenarioFiles(paths, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScanError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if f.JSON() {
			return outputTestJSON(f, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, file := range scenarioFiles {
		scenResult := runScenario(cmd, opts, f, file)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if f.JSON() {
		return outputTestJSON(f, result)
	}
	return outputTestText(f, result)
}

// runScenario executes a single scenario file and reports it.
func runScenario(cmd *cobra.Command, opts *TestOptions, f *OutputFormatter, file string) ScenarioResult {
	res := ScenarioResult{Name: filepath.Base(file), File: file}

	fail := func(errs ...string) ScenarioResult {
		res.Pass = false
		res.Errors = errs
		if !f.JSON() {
			fmt.Fprintf(f.Writer, "✗ %s\n", res.Name)
			for _, e := range errs {
				fmt.Fprintf(f.Writer, "  %s\n", e)
			}
		}
		return res
	}

	s, err := harness.LoadScenario(file)
	if err != nil {
		return fail(fmt.Sprintf("load error: %v", err))
	}
	res.Name = s.Name

	result, err := harness.Run(s,
		harness.WithCapacity(opts.settings().Capacity),
		harness.WithLogger(opts.logger()),
	)
	if err != nil {
		return fail(fmt.Sprintf("execution error: %v", err))
	}
	f.VerboseLog("%s: %d steps, %d unsolved", s.Name, len(result.Steps), len(result.Unsolved))

	if _, err := recordRun(cmd.Context(), opts.RootOptions, f, result); err != nil {
		return fail(err.Error())
	}

	var errs []string
	for _, failure := range result.Failures {
		errs = append(errs, failure.String())
	}

	if opts.Golden != "" {
		note, err := checkGolden(opts, s.Name, result)
		if err != nil {
			errs = append(errs, err.Error())
		}
		if note != "" && len(errs) == 0 {
			res.Pass = true
			if !f.JSON() {
				fmt.Fprintf(f.Writer, "✓ %s (%s)\n", res.Name, note)
			}
			return res
		}
	}

	if len(errs) > 0 {
		return fail(errs...)
	}

	res.Pass = true
	if !f.JSON() {
		fmt.Fprintf(f.Writer, "✓ %s\n", res.Name)
	}
	return res
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

// checkGolden compares or rewrites the scenario's golden value table. A
// non-empty note describes what happened when there was nothing to
// compare.
func checkGolden(opts *TestOptions, name string, result *harness.Result) (string, error) {
	path := goldenFilePath(opts.Golden, name)
	table := []byte(result.Table())

	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, table, 0o644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return "golden updated", nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "no golden file", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, table) {
		return "", fmt.Errorf("value table does not match %s (run with --update to regenerate)", path)
	}
	return "", nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(f *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := f.encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return reportedExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(f *OutputFormatter, result TestResult) error {
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return reportedExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	return nil
}
