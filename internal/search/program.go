// Package search runs randomised searches over many independent
// iterations on a fixed pool of workers.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"casearch/internal/core"
	"casearch/internal/logging"
	"casearch/internal/patterns"
	pcore "casearch/pkg/core"
)

// Job is one kind of search. Iterate runs iteration index with its own
// RNG and returns the pattern found, or nil.
type Job interface {
	Name() string
	Iterate(ctx context.Context, index int, rng *pcore.RNG) (*patterns.Pattern, error)
}

// Sink receives results as they are flushed.
type Sink interface {
	SavePattern(ctx context.Context, runID string, p *patterns.Pattern) error
}

// Options controls a Program.
type Options struct {
	Iterations int
	Threads    int
	Seed       int64
	// FlushEvery is how often new results are handed to the sink.
	FlushEvery time.Duration
	// ProgressEvery logs a progress line after that many iterations.
	ProgressEvery int
	RunID         string
	Sink          Sink
	Logger        *slog.Logger
}

type found struct {
	index   int
	pattern *patterns.Pattern
}

// Program drives a Job. Results are deduplicated by pattern key; when two
// iterations find the same key the lower iteration index wins, so the
// result set does not depend on the thread count.
type Program struct {
	job  Job
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	results  map[string]found
	pending  []string
	searched int
	failed   int
	flush    *core.Interval
}

// NewProgram prepares job to run with opts.
func NewProgram(job Job, opts Options) *Program {
	if opts.Threads <= 0 {
		opts.Threads = runtime.NumCPU()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 5000
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Program{
		job:     job,
		opts:    opts,
		log:     log.With("search", job.Name()),
		results: make(map[string]found),
		flush:   core.NewInterval(opts.FlushEvery),
	}
}

// Run executes every iteration and returns once they are done or ctx is
// cancelled. Iterations in flight at cancellation are dropped. Pending
// results are flushed to the sink before Run returns.
func (p *Program) Run(ctx context.Context) error {
	start := time.Now()
	p.log.Info("search started", "iterations", p.opts.Iterations, "threads", p.opts.Threads, "seed", p.opts.Seed)

	indices := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := 0; i < p.opts.Iterations; i++ {
			select {
			case indices <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for w := 0; w < p.opts.Threads; w++ {
		g.Go(func() error {
			for i := range indices {
				if gctx.Err() != nil {
					return nil
				}
				p.iterate(gctx, i)
				p.maybeFlush(gctx)
			}
			return nil
		})
	}
	err := g.Wait()

	// The final flush must outlive a cancelled run context.
	flushErr := p.flushPending(context.WithoutCancel(ctx))
	p.log.Info("search finished",
		"searched", p.Searched(), "found", len(p.Results()), "failed", p.Failed(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if err == nil {
		err = ctx.Err()
	}
	return errors.Join(err, flushErr)
}

func (p *Program) iterate(ctx context.Context, index int) {
	pat, err := p.safeIterate(ctx, index)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.searched++
	if err != nil {
		p.failed++
		p.log.Warn("iteration failed", "iteration", index, "err", err)
	} else if pat != nil {
		p.commit(index, pat)
	}
	if p.searched%p.opts.ProgressEvery == 0 {
		pr := message.NewPrinter(language.English)
		p.log.Info(pr.Sprintf("%d iterations searched, %d found", p.searched, len(p.results)))
	}
}

// safeIterate turns a panicking iteration into an error.
func (p *Program) safeIterate(ctx context.Context, index int) (pat *patterns.Pattern, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search: iteration %d panicked: %v", index, r)
		}
	}()
	return p.job.Iterate(ctx, index, pcore.ForIteration(p.opts.Seed, index))
}

// commit records pat. Callers hold p.mu.
func (p *Program) commit(index int, pat *patterns.Pattern) {
	key := pat.Key()
	prev, ok := p.results[key]
	if ok && prev.index <= index {
		return
	}
	// A replaced key may already have reached the sink; queue it again so
	// the sink ends up with the lowest-index representative.
	if !slices.Contains(p.pending, key) {
		p.pending = append(p.pending, key)
	}
	p.results[key] = found{index: index, pattern: pat}
}

func (p *Program) maybeFlush(ctx context.Context) {
	p.mu.Lock()
	due := p.opts.Sink != nil && p.opts.FlushEvery > 0 && p.flush.Due()
	p.mu.Unlock()
	if !due {
		return
	}
	if err := p.flushPending(ctx); err != nil {
		p.log.Error("flush failed", "err", err)
	}
}

// flushPending hands results not yet flushed to the sink.
func (p *Program) flushPending(ctx context.Context) error {
	if p.opts.Sink == nil {
		return nil
	}
	p.mu.Lock()
	batch := make([]*patterns.Pattern, 0, len(p.pending))
	for _, key := range p.pending {
		batch = append(batch, p.results[key].pattern)
	}
	p.pending = nil
	p.mu.Unlock()

	for _, pat := range batch {
		if err := p.opts.Sink.SavePattern(ctx, p.opts.RunID, pat); err != nil {
			return fmt.Errorf("search: flush: %w", err)
		}
	}
	if len(batch) > 0 {
		p.log.Debug("flushed results", "count", len(batch))
	}
	return nil
}

// Results returns the patterns found, ordered by the iteration that found
// them.
func (p *Program) Results() []*patterns.Pattern {
	p.mu.Lock()
	all := make([]found, 0, len(p.results))
	for _, f := range p.results {
		all = append(all, f)
	}
	p.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].index < all[j].index })
	out := make([]*patterns.Pattern, len(all))
	for i, f := range all {
		out[i] = f.pattern
	}
	return out
}

// Searched is the number of completed iterations.
func (p *Program) Searched() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searched
}

// Failed is the number of iterations that returned an error or panicked.
func (p *Program) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}
