package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/overproofed/internal/codec"
	"github.com/roach88/overproofed/internal/harness"
	"github.com/roach88/overproofed/internal/values"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Solved bool // encode after solving
}

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	Scenario string // scenario whose recipe the code belongs to
	Solve    bool   // solve after loading the values
}

type encodeOutput struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Values int    `json:"values"`
	Solved bool   `json:"solved"`
}

type decodeOutput struct {
	Values []harness.SlotValue `json:"values"`
	Steps  int                 `json:"steps,omitempty"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <scenario>",
		Short: "Print the share code of a scenario's values",
		Long: `Build the scenario's recipe with its inputs set and print the share code
of the value store. The code carries values only; decoding it needs the
same recipe shape.

Examples:
  overproofed encode loaf.yaml
  overproofed encode loaf.yaml --solved`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)

			s, b, err := buildScenario(opts.RootOptions, f, args[0])
			if err != nil {
				return err
			}
			if opts.Solved {
				if _, err := b.Writer.Solve(); err != nil {
					return scenarioFailure(f, err)
				}
			}

			vals := b.Writer.Values()
			code, err := codec.EncodeValues(vals)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeGeneric, "failed to encode values", err)
			}

			if f.JSON() {
				return f.Success(encodeOutput{Name: s.Name, Code: code, Values: vals.Len(), Solved: opts.Solved})
			}
			fmt.Fprintln(f.Writer, code)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Solved, "solved", false, "solve before encoding")

	return cmd
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <code>",
		Short: "Print the values carried by a share code",
		Long: `Decode a share code and print its values by slot.

With --scenario the values are loaded into that scenario's recipe, which
labels each slot and checks that the code fits the recipe. The scenario's
own inputs are replaced by the decoded values.

Examples:
  overproofed decode AAAAAA
  overproofed decode AAAAAA --scenario loaf.yaml --solve`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario whose recipe the code was made from")
	cmd.Flags().BoolVar(&opts.Solve, "solve", false, "solve after loading (requires --scenario)")

	return cmd
}

func runDecode(cmd *cobra.Command, opts *DecodeOptions, code string) error {
	f := opts.formatter(cmd)

	if opts.Solve && opts.Scenario == "" {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--solve requires --scenario", nil)
	}

	vs, err := codec.Decode(code)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "invalid share code", err)
	}

	out := decodeOutput{Values: []harness.SlotValue{}}

	if opts.Scenario == "" {
		for i, v := range vs {
			out.Values = append(out.Values, harness.SlotValue{Slot: values.Slot(i), Label: fmt.Sprintf("slot%d", i), Value: harness.Number(v)})
		}
	} else {
		_, b, err := buildScenario(opts.RootOptions, f, opts.Scenario)
		if err != nil {
			return err
		}
		vals := b.Writer.Values()
		if len(vs) != vals.Len() {
			return f.Fail(ExitCommandError, ErrCodeInvalidInput,
				fmt.Sprintf("share code has %d values, recipe has %d slots", len(vs), vals.Len()), nil)
		}
		vals.Load(vs)

		if opts.Solve {
			steps, err := b.Writer.Solve()
			if err != nil {
				return scenarioFailure(f, err)
			}
			out.Steps = len(steps)
		}
		for i := range vals.Len() {
			s := values.Slot(i)
			out.Values = append(out.Values, harness.SlotValue{Slot: s, Label: b.Label(s), Value: harness.Number(vals.Get(s))})
		}
	}

	if f.JSON() {
		return f.Success(out)
	}
	for _, sv := range out.Values {
		f.Printf("%5d  %-36s %s\n", sv.Slot, sv.Label, formatNumber(f, sv.Value))
	}
	if opts.Solve {
		f.Printf("Solved %d values\n", out.Steps)
	}
	return nil
}
