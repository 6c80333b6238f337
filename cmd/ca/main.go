//go:build ebiten

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"casearch/internal/app"
	"casearch/internal/cli"
	"casearch/internal/config"
	"casearch/internal/core"
	"casearch/internal/logging"
	"casearch/internal/rules"
	_ "casearch/internal/rules/all"
	"casearch/internal/rules/ruletable"
	"casearch/internal/sim"
)

func main() {
	var configPath, rule string
	cmd := &cobra.Command{
		Use:   "ca [pattern.rle]",
		Short: "Watch a cellular automaton run",
		Long: `Open a window running a pattern, or a random soup when no pattern is
given, under the rule from --rule, the pattern header or the config.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, rule, args)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&rule, "rule", "", "rulestring")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, rule string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, cfg.Log.Level)
	if cfg.Ruletables.Directory != "" {
		ruletable.SetDirectory(cfg.Ruletables.Directory)
	}

	path := cfg.Viewer.Pattern
	if len(args) > 0 {
		path = args[0]
	}
	var pf *cli.PatternFile
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		pf, err = cli.ParsePattern(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if rule == "" && (pf == nil || pf.Rule == "") {
		rule = cfg.Viewer.Rule
	}
	if rule == "" {
		rule = pf.Rule
	}
	r, err := rules.Parse(rule)
	if err != nil {
		return err
	}

	sm := sim.New(r)
	if pf != nil {
		sm.Insert(pf.Grid, core.Coordinate{})
	} else {
		sm.Insert(app.Soup(r, cfg.Viewer.SoupSize, cfg.Viewer.SoupDensity, time.Now().UnixNano()), core.Coordinate{})
	}

	game := app.New(sm, cfg.Viewer, cfg.Identify.MaxPeriod, log)
	w, h := game.Layout(0, 0)
	ebiten.SetWindowTitle("casearch - " + r.Rulestring())
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
