package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casearch/internal/core"
	"casearch/internal/search"
)

// NewCatSearchCommand creates the catsearch command.
func NewCatSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		sf        searchFlags
		rule      string
		catalysts []string
		anchors   []string
		params    search.CatalystSearchParams
	)
	cmd := &cobra.Command{
		Use:   "catsearch [target.rle]",
		Short: "Search for catalysts that survive a target",
		Long: `Place random still-life catalysts at the given anchors around a
target pattern and record placements where every catalyst the target
disturbs regenerates. Placements where only some catalysts return are
recorded as partial catalysts.`,
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
			if params.Rule, err = resolveRule(rule, pf); err != nil {
				return err
			}
			params.Target = pf.Grid
			params.Catalysts = params.Catalysts[:0]
			for _, body := range catalysts {
				g, provisional := core.FromRLE(body)
				if provisional {
					return fmt.Errorf("--catalyst %q: unrecognised RLE", body)
				}
				params.Catalysts = append(params.Catalysts, g)
			}
			params.Anchors = params.Anchors[:0]
			for _, a := range anchors {
				c, err := parseCoordinate(a)
				if err != nil {
					return fmt.Errorf("--anchor: %w", err)
				}
				params.Anchors = append(params.Anchors, c)
			}
			job, err := search.NewCatalystSearch(params)
			if err != nil {
				return err
			}
			return runSearch(cmd, rootOpts, &sf, job, params.Rule.Rulestring())
		},
	}
	sf.bind(cmd)
	cmd.Flags().StringVar(&rule, "rule", "", "rulestring (default: the target header, then "+DefaultRule+")")
	cmd.Flags().StringArrayVarP(&catalysts, "catalyst", "c", nil, "catalyst RLE body (repeatable)")
	cmd.Flags().StringArrayVarP(&anchors, "anchor", "a", nil, "anchor position x,y (repeatable)")
	cmd.Flags().IntVar(&params.NumCatalysts, "num-catalysts", 1, "catalysts placed per iteration")
	cmd.Flags().BoolVar(&params.Rotate, "rotate", false, "rotate catalysts randomly")
	cmd.Flags().BoolVar(&params.Flip, "flip", false, "reflect catalysts randomly")
	cmd.Flags().IntVar(&params.MaxRepeatTime, "max-repeat", 100, "generations to wait for regeneration")
	return cmd
}
