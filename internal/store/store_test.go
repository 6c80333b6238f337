package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/patterns"
	"casearch/internal/rules/hrot"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func glider() *patterns.Pattern {
	g, _ := core.FromRLE("bo$2bo$3o!")
	p := patterns.NewSpaceship(hrot.MustParseHROT("B3/S23"), g, 4, core.C(1, 1))
	p.MinRule = hrot.MustParseHROT("B3/S23")
	p.MaxRule = hrot.MustParseHROT("B38/S238")
	return p
}

func TestNewRunIDIsV7(t *testing.T) {
	id, err := NewRunID()
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSaveAndListPatterns(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	id, err := NewRunID()
	require.NoError(t, err)
	require.NoError(t, s.CreateRun(ctx, Run{ID: id, Search: "rulesearch", Rule: "B3/S23", Seed: 7, Iterations: 10}))

	p := glider()
	require.NoError(t, s.SavePattern(ctx, id, p))
	require.NoError(t, s.SavePattern(ctx, id, p))

	still := patterns.NewOscillator(hrot.MustParseHROT("B3/S23"), core.NewGrid(), 2)
	require.NoError(t, s.SavePattern(ctx, id, still))

	recs, err := s.Patterns(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "spaceship", recs[0].Kind)
	assert.Equal(t, "(1,1)c/4", recs[0].Description)
	assert.Equal(t, 1, recs[0].DX)
	assert.Equal(t, "B38/S238", recs[0].MaxRule)
	assert.Equal(t, p.RLE(), recs[0].RLE)
	assert.Equal(t, "", recs[1].MinRule)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].Seed)
	assert.False(t, runs[0].StartedAt.IsZero())
}

func TestSavePatternReplacesSameKey(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	id, err := NewRunID()
	require.NoError(t, err)
	require.NoError(t, s.CreateRun(ctx, Run{ID: id, Search: "oscillators", Rule: "B3/S23"}))

	rule := hrot.MustParseHROT("B3/S23")
	first := core.NewGrid()
	first.Set(core.Coordinate{X: 5}, 1)
	second := core.NewGrid()
	second.Set(core.Coordinate{}, 1)
	second.Set(core.Coordinate{X: 1}, 1)
	a, b := patterns.NewOscillator(rule, first, 2), patterns.NewOscillator(rule, second, 2)
	require.Equal(t, a.Key(), b.Key())

	require.NoError(t, s.SavePattern(ctx, id, a))
	require.NoError(t, s.SavePattern(ctx, id, b))

	recs, err := s.Patterns(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotEqual(t, a.RLE(), b.RLE())
	assert.Equal(t, b.RLE(), recs[0].RLE)
}

func TestSavePatternNeedsRun(t *testing.T) {
	s := openTemp(t)
	err := s.SavePattern(context.Background(), "missing", glider())
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateRun(ctx, Run{ID: "run-1", Search: "catsearch", Rule: "B3/S23"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}
