package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/patterns"
	"casearch/internal/rules"
	_ "casearch/internal/rules/all"
	pcore "casearch/pkg/core"
)

func mustRule(t *testing.T, s string) rules.Rule {
	t.Helper()
	r, err := rules.Parse(s)
	require.NoError(t, err)
	return r
}

func mustGrid(t *testing.T, rle string) *core.Grid {
	t.Helper()
	g, provisional := core.FromRLE(rle)
	require.False(t, provisional)
	return g
}

// memorySink keeps the last pattern saved per key, like the store does.
type memorySink struct {
	mu    sync.Mutex
	saved map[string]*patterns.Pattern
}

func (m *memorySink) SavePattern(_ context.Context, _ string, p *patterns.Pattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]*patterns.Pattern)
	}
	m.saved[p.Key()] = p
	return nil
}

type scriptedJob struct {
	iterate func(index int) (*patterns.Pattern, error)
}

func (j scriptedJob) Name() string { return "scripted" }

func (j scriptedJob) Iterate(_ context.Context, index int, _ *pcore.RNG) (*patterns.Pattern, error) {
	return j.iterate(index)
}

func oscillator(t *testing.T, period int) *patterns.Pattern {
	return patterns.NewOscillator(mustRule(t, "B3/S23"), core.NewGrid(), period)
}

func TestProgramDeduplicatesByKey(t *testing.T) {
	p2, p3 := oscillator(t, 2), oscillator(t, 3)
	job := scriptedJob{iterate: func(i int) (*patterns.Pattern, error) {
		if i%2 == 0 {
			return p2, nil
		}
		return p3, nil
	}}
	sink := &memorySink{}
	prog := NewProgram(job, Options{Iterations: 50, Threads: 4, Sink: sink})
	require.NoError(t, prog.Run(context.Background()))

	assert.Equal(t, 50, prog.Searched())
	results := prog.Results()
	require.Len(t, results, 2)
	assert.Same(t, p2, results[0])
	assert.Same(t, p3, results[1])
	assert.Len(t, sink.saved, 2)
}

func TestProgramSinkKeepsLowestIndex(t *testing.T) {
	pats := make([]*patterns.Pattern, 40)
	for i := range pats {
		g := core.NewGrid()
		g.Set(core.Coordinate{X: i}, 1)
		pats[i] = patterns.NewOscillator(mustRule(t, "B3/S23"), g, 2)
	}
	job := scriptedJob{iterate: func(i int) (*patterns.Pattern, error) {
		if i == 0 {
			time.Sleep(50 * time.Millisecond)
		}
		return pats[i], nil
	}}
	sink := &memorySink{}
	prog := NewProgram(job, Options{Iterations: len(pats), Threads: 4, Sink: sink, FlushEvery: time.Nanosecond})
	require.NoError(t, prog.Run(context.Background()))

	results := prog.Results()
	require.Len(t, results, 1)
	assert.Same(t, pats[0], results[0])
	require.Len(t, sink.saved, 1)
	assert.Same(t, pats[0], sink.saved[pats[0].Key()])
}

func TestProgramIsolatesFailures(t *testing.T) {
	job := scriptedJob{iterate: func(i int) (*patterns.Pattern, error) {
		switch i % 3 {
		case 0:
			panic("boom")
		case 1:
			return nil, errors.New("bad iteration")
		default:
			return oscillator(t, 2), nil
		}
	}}
	prog := NewProgram(job, Options{Iterations: 30, Threads: 3})
	require.NoError(t, prog.Run(context.Background()))
	assert.Equal(t, 30, prog.Searched())
	assert.Equal(t, 20, prog.Failed())
	assert.Len(t, prog.Results(), 1)
}

func TestProgramCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := scriptedJob{iterate: func(int) (*patterns.Pattern, error) {
		t.Error("iteration ran after cancellation")
		return nil, nil
	}}
	prog := NewProgram(job, Options{Iterations: 100, Threads: 2})
	err := prog.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, prog.Searched())
}

func TestRuleSearchRejectsBadRange(t *testing.T) {
	target := mustGrid(t, "3o!")
	_, err := NewRuleSearch(RuleSearchParams{
		Target:  target,
		MinRule: mustRule(t, "B36/S23"),
		MaxRule: mustRule(t, "B3/S23"),
	}, nil)
	assert.ErrorIs(t, err, rules.ErrInvalidRule)

	_, err = NewRuleSearch(RuleSearchParams{
		Target:  target,
		MinRule: mustRule(t, "W110"),
		MaxRule: mustRule(t, "W110"),
	}, nil)
	assert.ErrorIs(t, err, rules.ErrUnsupported)
}

func runRuleSearch(t *testing.T, threads int) []string {
	t.Helper()
	rs, err := NewRuleSearch(RuleSearchParams{
		Target:    mustGrid(t, "bo$2bo$3o!"),
		MinRule:   mustRule(t, "B3/S2"),
		MaxRule:   mustRule(t, "B34/S234"),
		MaxPeriod: 60,
		MaxPop:    120,
		MaxWidth:  40,
		MaxHeight: 40,
	}, nil)
	require.NoError(t, err)

	prog := NewProgram(rs, Options{Iterations: 40, Threads: threads, Seed: 7})
	require.NoError(t, prog.Run(context.Background()))
	require.Equal(t, 40, prog.Searched())

	var out []string
	for _, p := range prog.Results() {
		assert.False(t, p.StillLife())
		out = append(out, fmt.Sprintf("%s %s %s", p.Key(), p.Rule.Rulestring(), p.String()))
	}
	return out
}

func TestRuleSearchIndependentOfThreads(t *testing.T) {
	one := runRuleSearch(t, 1)
	four := runRuleSearch(t, 4)
	assert.NotEmpty(t, one)
	assert.Equal(t, one, four)
}

func catalystParams(t *testing.T, anchor core.Coordinate, catalyst string) CatalystSearchParams {
	return CatalystSearchParams{
		Rule:          mustRule(t, "B3/S23"),
		Target:        mustGrid(t, "bo$2bo$3o!"),
		Catalysts:     []*core.Grid{mustGrid(t, catalyst)},
		Anchors:       []core.Coordinate{anchor},
		NumCatalysts:  1,
		MaxRepeatTime: 60,
	}
}

func TestCatalystSearchRegeneratingBlock(t *testing.T) {
	cs, err := NewCatalystSearch(catalystParams(t, core.C(5, 1), "2o$2o!"))
	require.NoError(t, err)
	p, err := cs.Iterate(context.Background(), 0, pcore.NewRNG(1))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, patterns.Catalyst, p.Kind)
	assert.False(t, p.Partial)
	assert.Equal(t, 2, p.RepeatTime)
	assert.Equal(t, 9, p.Grid.Population())
}

func TestCatalystSearchDestroyedBlock(t *testing.T) {
	cs, err := NewCatalystSearch(catalystParams(t, core.C(3, 3), "2o$2o!"))
	require.NoError(t, err)
	p, err := cs.Iterate(context.Background(), 0, pcore.NewRNG(1))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCatalystSearchRejectsUnstableCatalysts(t *testing.T) {
	cs, err := NewCatalystSearch(catalystParams(t, core.C(5, 1), "3o!"))
	require.NoError(t, err)
	p, err := cs.Iterate(context.Background(), 0, pcore.NewRNG(1))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCatalystSearchLeavesOutUntouchedCatalysts(t *testing.T) {
	params := catalystParams(t, core.C(5, 1), "2o$2o!")
	params.Anchors = append(params.Anchors, core.C(40, 40))
	params.NumCatalysts = 2
	cs, err := NewCatalystSearch(params)
	require.NoError(t, err)

	accepted := 0
	for seed := int64(0); seed < 32; seed++ {
		p, err := cs.Iterate(context.Background(), 0, pcore.NewRNG(seed))
		require.NoError(t, err)
		if p == nil {
			continue
		}
		accepted++
		assert.False(t, p.Partial)
		assert.Equal(t, 9, p.Grid.Population(), "seed %d: %s", seed, p.RLE())
		p.Grid.Each(func(c core.Coordinate, _ int) {
			assert.Less(t, c.X, 40, "seed %d: far block in result", seed)
		})
	}
	assert.NotZero(t, accepted)
}

func TestCatalystSearchValidates(t *testing.T) {
	params := catalystParams(t, core.C(5, 1), "2o$2o!")
	params.Anchors = nil
	_, err := NewCatalystSearch(params)
	assert.Error(t, err)
}
