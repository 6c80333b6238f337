package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"casearch/internal/store"
)

// NewResultsCommand creates the results command.
func NewResultsCommand(rootOpts *RootOptions) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:          "results [run-id]",
		Short:        "List recorded search runs or the patterns of one run",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			path := rootOpts.Config.Store.Path
			if db != "" {
				path = db
			}
			st, err := store.Open(path)
			if err != nil {
				return err
			}
			defer st.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()
			if len(args) == 0 {
				runs, err := st.Runs(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "RUN\tSEARCH\tRULE\tSEED\tITERATIONS\tSTARTED")
				for _, r := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
						r.ID, r.Search, r.Rule, r.Seed, r.Iterations, r.StartedAt.Local().Format(time.DateTime))
				}
				return nil
			}

			records, err := st.Patterns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "PATTERN\tRULE\tMIN RULE\tMAX RULE\tRLE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Description, r.Rule, r.MinRule, r.MaxRule, r.RLE)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "results database (default from config)")
	return cmd
}
