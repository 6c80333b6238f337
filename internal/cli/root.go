// Package cli implements the casearch command tree.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"casearch/internal/config"
	"casearch/internal/logging"
	"casearch/internal/rules/ruletable"
)

// RootOptions holds global flags for all commands and the settings they
// resolve to.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool

	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the casearch CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "casearch",
		Short: "Cellular automaton simulator and pattern search",
		Long: `casearch runs cellular automata given as rulestrings, identifies the
patterns they evolve into and searches rule spaces and catalyst
placements for new ones.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewCanonCommand(opts))
	cmd.AddCommand(NewStepCommand(opts))
	cmd.AddCommand(NewIdentifyCommand(opts))
	cmd.AddCommand(NewRuleSearchCommand(opts))
	cmd.AddCommand(NewCatSearchCommand(opts))
	cmd.AddCommand(NewExportTableCommand(opts))
	cmd.AddCommand(NewResultsCommand(opts))

	return cmd
}

// prepare loads the configuration and logger once. Subcommands call it
// too so they work when executed on their own.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if o.Config != nil {
		return nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if o.LogLevel != "" {
		level = o.LogLevel
	}
	if o.Verbose {
		level = "debug"
	}
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
	o.Config = cfg
	o.Logger = logging.New(cmd.ErrOrStderr(), level)
	if cfg.Ruletables.Directory != "" {
		ruletable.SetDirectory(cfg.Ruletables.Directory)
	}
	return nil
}
