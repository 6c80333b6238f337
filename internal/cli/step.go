package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casearch/internal/core"
	"casearch/internal/sim"
)

// NewStepCommand creates the step command.
func NewStepCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		rule        string
		generations int
	)
	cmd := &cobra.Command{
		Use:   "step [pattern.rle]",
		Short: "Advance a pattern and print the result",
		Long: `Load an RLE pattern from a file (or stdin), advance it the given
number of generations and print the result as RLE.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			if generations < 0 {
				return fmt.Errorf("generations must be non-negative, got %d", generations)
			}
			pf, err := readPattern(cmd, args)
			if err != nil {
				return err
			}
			r, err := resolveRule(rule, pf)
			if err != nil {
				return err
			}
			sm := sim.New(r)
			sm.Insert(pf.Grid, core.Coordinate{})
			for i := 0; i < generations; i++ {
				sm.Step()
			}
			rootOpts.Logger.Debug("stepped", "rule", r.Rulestring(), "generations", generations, "population", sm.Population())
			fmt.Fprint(cmd.OutOrStdout(), formatRLE(r, sm.Grid()))
			return nil
		},
	}
	cmd.Flags().StringVar(&rule, "rule", "", "rulestring (default: the pattern header, then "+DefaultRule+")")
	cmd.Flags().IntVarP(&generations, "generations", "g", 1, "generations to advance")
	return cmd
}
