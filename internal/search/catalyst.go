package search

import (
	"context"
	"fmt"

	"casearch/internal/core"
	"casearch/internal/patterns"
	"casearch/internal/rules"
	"casearch/internal/sim"
	pcore "casearch/pkg/core"
)

// CatalystSearchParams configures a CatalystSearch.
type CatalystSearchParams struct {
	Rule      rules.Rule
	Target    *core.Grid
	Catalysts []*core.Grid
	// Anchors are the positions catalysts may be placed at.
	Anchors       []core.Coordinate
	NumCatalysts  int
	Rotate        bool
	Flip          bool
	MaxRepeatTime int
}

// CatalystSearch places random still-life catalysts around a target and
// keeps placements where every catalyst the target disturbs comes back.
type CatalystSearch struct {
	params CatalystSearchParams
}

// NewCatalystSearch validates params.
func NewCatalystSearch(params CatalystSearchParams) (*CatalystSearch, error) {
	switch {
	case params.Rule == nil || params.Target == nil:
		return nil, fmt.Errorf("search: catalyst search needs a rule and a target")
	case len(params.Catalysts) == 0:
		return nil, fmt.Errorf("search: catalyst search needs at least one catalyst")
	case len(params.Anchors) == 0:
		return nil, fmt.Errorf("search: catalyst search needs at least one anchor")
	case params.NumCatalysts <= 0:
		return nil, fmt.Errorf("search: catalyst search needs a positive catalyst count")
	case params.MaxRepeatTime <= 0:
		return nil, fmt.Errorf("search: catalyst search needs a positive repeat time")
	}
	return &CatalystSearch{params: params}, nil
}

// Name returns "catsearch".
func (s *CatalystSearch) Name() string { return "catsearch" }

type placed struct {
	grid   *core.Grid
	anchor core.Coordinate
	cells  []core.Coordinate
	origin core.Coordinate
	hash   int

	interacted  bool
	regenerated bool
}

// Iterate places catalysts, adds the target and watches the catalysts'
// surroundings for disturbance and recovery.
func (s *CatalystSearch) Iterate(ctx context.Context, _ int, rng *pcore.RNG) (*patterns.Pattern, error) {
	sm := sim.New(s.params.Rule.Clone())
	cats := s.place(sm, rng)
	if !jointlyStill(sm) {
		return nil, nil
	}
	sm.Insert(s.params.Target, core.Coordinate{})

	first, repeat := -1, -1
	regen, interacted := 0, 0
	var used []*placed
	for j := 0; j < s.params.MaxRepeatTime; j++ {
		if ctx.Err() != nil {
			return nil, nil
		}
		sm.Step()
		regen, interacted = 0, 0
		for _, c := range cats {
			h := sm.Grid().HashOf(c.cells, c.origin)
			switch {
			case h != c.hash && !c.interacted:
				c.interacted = true
				if first == -1 {
					first = sm.Generation()
				}
			case h == c.hash && c.interacted && !c.regenerated:
				c.regenerated = true
				used = append(used, c)
				repeat = sm.Generation() - first
			}
			if c.interacted {
				interacted++
				if c.regenerated {
					regen++
				}
			}
		}
		if interacted >= 1 && regen == interacted {
			return patterns.NewCatalyst(s.params.Rule, s.assemble(used), repeat, false), nil
		}
	}
	if interacted >= 1 && regen >= 1 {
		// Partial: keep every catalyst the target reached, recovered or not.
		var touched []*placed
		for _, c := range cats {
			if c.interacted {
				touched = append(touched, c)
			}
		}
		return patterns.NewCatalyst(s.params.Rule, s.assemble(touched), repeat, true), nil
	}
	return nil, nil
}

// assemble rebuilds the starting configuration from the target and the
// given catalysts only.
func (s *CatalystSearch) assemble(cats []*placed) *core.Grid {
	g := core.NewGrid()
	g.Insert(s.params.Target, core.Coordinate{})
	for _, c := range cats {
		g.Insert(c.grid, c.anchor)
	}
	return g
}

// place inserts NumCatalysts random catalysts at random anchors.
func (s *CatalystSearch) place(sm *sim.Simulator, rng *pcore.RNG) []*placed {
	nbhd := s.params.Rule.Neighbourhood(0)
	out := make([]*placed, 0, s.params.NumCatalysts)
	for i := 0; i < s.params.NumCatalysts; i++ {
		anchor := s.params.Anchors[rng.IntN(len(s.params.Anchors))]
		cat := s.params.Catalysts[rng.IntN(len(s.params.Catalysts))].Clone()
		lo, hi, ok := cat.Bounds()
		if !ok {
			continue
		}
		if s.params.Rotate {
			for n := rng.IntN(4); n > 0; n-- {
				cat.RotateCW(lo, hi)
			}
			lo, hi, _ = cat.Bounds()
		}
		if s.params.Flip {
			switch rng.IntN(4) {
			case 0:
				cat.ReflectX(lo, hi)
			case 1:
				cat.ReflectY(lo, hi)
			case 2:
				cat.ReflectX(lo, hi)
				cat.ReflectY(lo, hi)
			}
		}
		sm.Insert(cat, anchor)

		local := make([]core.Coordinate, 0)
		for c := range cat.BFS(1, nbhd) {
			local = append(local, c)
		}
		origin := local[0]
		for _, c := range local {
			origin = core.C(min(origin.X, c.X), min(origin.Y, c.Y))
		}
		p := &placed{grid: cat, anchor: anchor, hash: cat.HashOf(local, origin), origin: origin.Add(anchor)}
		for _, c := range local {
			p.cells = append(p.cells, c.Add(anchor))
		}
		out = append(out, p)
	}
	return out
}

// jointlyStill reports whether the catalysts as placed form a still life.
func jointlyStill(sm *sim.Simulator) bool {
	next := sm.Clone()
	next.Step()
	return next.Grid().SlowEquals(sm.Grid(), 0, 0)
}
