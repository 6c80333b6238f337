package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"casearch/internal/search"
	"casearch/internal/store"
)

// searchFlags are shared by the search commands. Unset flags fall back to
// the configuration.
type searchFlags struct {
	iterations int
	threads    int
	seed       int64
	db         string
	noStore    bool
}

func (f *searchFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.iterations, "iterations", "n", 0, "iterations to run (default from config)")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 0, "worker threads (default from config, 0 uses every CPU)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "search seed (default from config)")
	cmd.Flags().StringVar(&f.db, "db", "", "results database (default from config)")
	cmd.Flags().BoolVar(&f.noStore, "no-store", false, "do not persist results")
}

// runSearch runs job with the configured program options, persisting
// results unless --no-store is given, and prints what was found.
func runSearch(cmd *cobra.Command, rootOpts *RootOptions, f *searchFlags, job search.Job, rule string) error {
	cfg := rootOpts.Config
	opts := search.Options{
		Iterations:    cfg.Search.Iterations,
		Threads:       cfg.Search.Threads,
		Seed:          cfg.Search.Seed,
		FlushEvery:    cfg.Search.FlushInterval,
		ProgressEvery: cfg.Search.ProgressEvery,
		Logger:        rootOpts.Logger,
	}
	if cmd.Flags().Changed("iterations") {
		opts.Iterations = f.iterations
	}
	if cmd.Flags().Changed("threads") {
		opts.Threads = f.threads
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !f.noStore {
		path := cfg.Store.Path
		if f.db != "" {
			path = f.db
		}
		st, err := store.Open(path)
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := store.NewRunID()
		if err != nil {
			return err
		}
		if err := st.CreateRun(ctx, store.Run{
			ID: runID, Search: job.Name(), Rule: rule, Seed: opts.Seed, Iterations: opts.Iterations,
		}); err != nil {
			return err
		}
		opts.RunID, opts.Sink = runID, st
		rootOpts.Logger.Info("recording run", "run", runID, "db", path)
	}

	prog := search.NewProgram(job, opts)
	err := prog.Run(ctx)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range prog.Results() {
		fmt.Fprintf(out, "%s\t%s\t%s\n", p.String(), p.Rule.Rulestring(), p.RLE())
	}
	pr := message.NewPrinter(language.English)
	pr.Fprintf(out, "searched %d iterations, found %d, failed %d", prog.Searched(), len(prog.Results()), prog.Failed())
	if interrupted {
		fmt.Fprint(out, " (interrupted)")
	}
	if opts.RunID != "" {
		fmt.Fprintf(out, ", run %s", opts.RunID)
	}
	fmt.Fprintln(out)
	return nil
}
