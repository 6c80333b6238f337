package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casearch/internal/rules"
	"casearch/internal/search"
)

// NewRuleSearchCommand creates the rulesearch command.
func NewRuleSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		sf               searchFlags
		minRule, maxRule string
		params           search.RuleSearchParams
	)
	cmd := &cobra.Command{
		Use:   "rulesearch [pattern.rle]",
		Short: "Search a rule range for what a pattern becomes",
		Long: `Run a target pattern under random rules drawn between --min-rule and
--max-rule and record every oscillator, spaceship and growth pattern it
evolves into. Still lives are discarded.`,
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
			if params.MinRule, err = rules.Parse(minRule); err != nil {
				return fmt.Errorf("--min-rule: %w", err)
			}
			if params.MaxRule, err = rules.Parse(maxRule); err != nil {
				return fmt.Errorf("--max-rule: %w", err)
			}
			params.Target = pf.Grid
			if params.MaxPeriod <= 0 {
				params.MaxPeriod = rootOpts.Config.Identify.MaxPeriod
			}
			job, err := search.NewRuleSearch(params, rootOpts.Logger)
			if err != nil {
				return err
			}
			rng := params.MinRule.Rulestring() + ".." + params.MaxRule.Rulestring()
			return runSearch(cmd, rootOpts, &sf, job, rng)
		},
	}
	sf.bind(cmd)
	cmd.Flags().StringVar(&minRule, "min-rule", "", "lower bound of the rule range")
	cmd.Flags().StringVar(&maxRule, "max-rule", "", "upper bound of the rule range")
	cmd.Flags().IntVar(&params.MaxPeriod, "max-period", 0, "generations per iteration (default from config)")
	cmd.Flags().IntVar(&params.MinPop, "min-pop", 0, "stop an iteration once the population drops to this")
	cmd.Flags().IntVar(&params.MaxPop, "max-pop", 0, "stop an iteration once the population reaches this (0: no limit)")
	cmd.Flags().IntVar(&params.MaxWidth, "max-width", 0, "stop an iteration once the pattern is this wide (0: no limit)")
	cmd.Flags().IntVar(&params.MaxHeight, "max-height", 0, "stop an iteration once the pattern is this tall (0: no limit)")
	_ = cmd.MarkFlagRequired("min-rule")
	_ = cmd.MarkFlagRequired("max-rule")
	return cmd
}
