package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casearch/internal/rules"
)

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	var showFamily bool
	cmd := &cobra.Command{
		Use:   "canon <rule>...",
		Short: "Print canonical rulestrings",
		Long: `Parse each rulestring and print its canonical form, specifiers
included. Fails on the first rulestring no family accepts.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			for _, s := range args {
				r, err := rules.Parse(s)
				if err != nil {
					return err
				}
				if showFamily {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Rulestring(), r.Name())
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), r.Rulestring())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showFamily, "family", false, "also print the rule family")
	return cmd
}
