package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casearch/internal/core"
	"casearch/internal/sim"
)

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		rule      string
		maxPeriod int
		maxPop    int
	)
	cmd := &cobra.Command{
		Use:   "identify [pattern.rle]",
		Short: "Classify a pattern",
		Long: `Run a pattern until it repeats and report what it is: a still life,
an oscillator, a spaceship, linear growth or power-law growth, together
with its measurements and the range of rules it works under.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			pf, err := readPattern(cmd, args)
			if err != nil {
				return err
			}
			r, err := resolveRule(rule, pf)
			if err != nil {
				return err
			}
			if maxPeriod <= 0 {
				maxPeriod = rootOpts.Config.Identify.MaxPeriod
			}

			sm := sim.New(r)
			sm.Insert(pf.Grid, core.Coordinate{})
			p, err := sm.Identify(maxPeriod, func(g *core.Grid) bool {
				return cmd.Context().Err() == nil && (maxPop <= 0 || g.Population() < maxPop)
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if p == nil {
				fmt.Fprintln(out, "Unidentified")
				return nil
			}
			fmt.Fprintln(out, p.String())
			for _, f := range p.Info() {
				fmt.Fprintf(out, "%s: %s\n", f.Name, f.Value)
			}
			fmt.Fprint(out, formatRLE(p.Rule, p.Grid))
			return nil
		},
	}
	cmd.Flags().StringVar(&rule, "rule", "", "rulestring (default: the pattern header, then "+DefaultRule+")")
	cmd.Flags().IntVar(&maxPeriod, "max-period", 0, "generations to run before giving up (default from config)")
	cmd.Flags().IntVar(&maxPop, "max-pop", 0, "stop once the population reaches this (0: no limit)")
	return cmd
}
