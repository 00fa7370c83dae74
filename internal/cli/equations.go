package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/overproofed/internal/rules"
)

// EquationsOptions holds flags for the equations command.
type EquationsOptions struct {
	*RootOptions
	Legend bool // append a slot legend
}

// EquationEntry is one generated equation in JSON output.
type EquationEntry struct {
	Index    int    `json:"index"`
	Family   string `json:"family"`
	Where    string `json:"where"`
	Equation string `json:"equation"`
}

// SlotLabel names one slot in JSON output.
type SlotLabel struct {
	Slot  int    `json:"slot"`
	Label string `json:"label"`
}

type equationsOutput struct {
	Equations []EquationEntry `json:"equations"`
	Slots     []SlotLabel     `json:"slots,omitempty"`
}

// NewEquationsCommand creates the equations command.
func NewEquationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EquationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "equations <scenario>",
		Short: "List the equations generated for a scenario's recipe",
		Long: `List every equation implied by the shape of the scenario's recipe, in the
order the solver considers them. Inputs are not consulted.

Examples:
  overproofed equations loaf.yaml
  overproofed equations loaf.yaml --legend`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)

			_, b, err := buildScenario(opts.RootOptions, f, args[0])
			if err != nil {
				return err
			}

			r := b.Writer.Recipe()
			facts := rules.Generate(r)

			var legend []SlotLabel
			if opts.Legend || f.JSON() {
				for _, s := range r.Slots() {
					legend = append(legend, SlotLabel{Slot: int(s), Label: b.Label(s)})
				}
			}

			if f.JSON() {
				out := equationsOutput{Equations: make([]EquationEntry, len(facts)), Slots: legend}
				for i, fact := range facts {
					out.Equations[i] = EquationEntry{
						Index:    i,
						Family:   fact.Family.String(),
						Where:    fact.Where(),
						Equation: fact.Equation.String(),
					}
				}
				return f.Success(out)
			}

			fmt.Fprint(f.Writer, rules.Format(facts))
			if opts.Legend {
				fmt.Fprintln(f.Writer)
				for _, l := range legend {
					fmt.Fprintf(f.Writer, "s%d\t%s\n", l.Slot, l.Label)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Legend, "legend", false, "append the label of every slot")

	return cmd
}
