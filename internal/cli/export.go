package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casearch/internal/rules"
	"casearch/internal/rules/ruletable"
)

// tableExporter is implemented by families with a ruletable form.
type tableExporter interface {
	Ruletable() (*ruletable.Table, error)
}

// NewExportTableCommand creates the export-table command.
func NewExportTableCommand(rootOpts *RootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "export-table <rule>",
		Short: "Export a rule as an @RULE file",
		Long: `Print a rule as an @RULE/@TABLE rule file that the ruletable family
can load back with @name. Ruletable rules are printed as loaded.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			r, err := rules.Parse(args[0])
			if err != nil {
				return err
			}
			if rt, ok := r.(*ruletable.Rule); ok {
				fmt.Fprint(cmd.OutOrStdout(), rt.Export())
				return nil
			}
			ex, ok := r.(tableExporter)
			if !ok {
				return rules.Unsupported(r.Name(), "ruletable export")
			}
			t, err := ex.Ruletable()
			if err != nil {
				return err
			}
			if name == "" {
				name = ruleFileName(r.Rulestring())
			}
			rt := &ruletable.Rule{RuleName: name, Tables: []*ruletable.Table{t}}
			fmt.Fprint(cmd.OutOrStdout(), rt.Export())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "rule name (default derived from the rulestring)")
	return cmd
}

// ruleFileName turns a rulestring into a name usable as a file name.
func ruleFileName(rs string) string {
	b := []byte(rs)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}
