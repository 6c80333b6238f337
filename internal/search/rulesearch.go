package search

import (
	"context"
	"fmt"
	"log/slog"

	"casearch/internal/core"
	"casearch/internal/logging"
	"casearch/internal/patterns"
	"casearch/internal/rules"
	"casearch/internal/sim"
	pcore "casearch/pkg/core"
)

// highPeriod is the period above which spaceships are reported as they are
// found.
const highPeriod = 100

// RuleSearchParams configures a RuleSearch. Zero caps are unlimited.
type RuleSearchParams struct {
	Target    *core.Grid
	MinRule   rules.Rule
	MaxRule   rules.Rule
	MaxPeriod int
	MinPop    int
	MaxPop    int
	MaxWidth  int
	MaxHeight int
}

// RuleSearch evolves one target pattern under random rules drawn between
// a minimum and a maximum rule and keeps whatever is not a still life.
type RuleSearch struct {
	params RuleSearchParams
	family rules.MinMaxRule
	log    *slog.Logger
}

// NewRuleSearch validates params. The rule family must support min/max
// rules and the two bounds must enclose a non-empty range.
func NewRuleSearch(params RuleSearchParams, log *slog.Logger) (*RuleSearch, error) {
	if params.Target == nil || params.MinRule == nil || params.MaxRule == nil {
		return nil, fmt.Errorf("search: rule search needs a target and both bounds")
	}
	mm, ok := params.MinRule.(rules.MinMaxRule)
	if !ok {
		return nil, fmt.Errorf("search: rule search: %w", rules.Unsupported(params.MinRule.Name(), "min/max rules"))
	}
	if !mm.ValidMinMax(params.MinRule, params.MaxRule) {
		return nil, fmt.Errorf("search: %s does not contain %s: %w",
			params.MaxRule.Rulestring(), params.MinRule.Rulestring(), rules.ErrInvalidRule)
	}
	if params.MaxPeriod <= 0 {
		params.MaxPeriod = sim.DefaultMaxPeriod
	}
	if log == nil {
		log = logging.Discard()
	}
	return &RuleSearch{params: params, family: mm, log: log}, nil
}

// Name returns "rulesearch".
func (s *RuleSearch) Name() string { return "rulesearch" }

// Iterate randomises a rule, runs the target under it and classifies it.
func (s *RuleSearch) Iterate(ctx context.Context, index int, rng *pcore.RNG) (*patterns.Pattern, error) {
	r, err := s.family.Randomise(s.params.MinRule, s.params.MaxRule, rng)
	if err != nil {
		return nil, err
	}
	sm := sim.New(r)
	sm.Insert(s.params.Target, core.Coordinate{})

	p, err := sm.Identify(s.params.MaxPeriod, func(g *core.Grid) bool {
		return ctx.Err() == nil && s.withinCaps(g)
	})
	if err != nil || p == nil || p.StillLife() {
		return nil, err
	}

	if p.Kind == patterns.Spaceship {
		switch {
		case p.Oblique():
			s.log.Info("found oblique ship", "ship", p.String(), "rule", r.Rulestring(), "rle", p.RLE())
		case p.Period > highPeriod:
			s.log.Info("found high period ship", "ship", p.String(), "rule", r.Rulestring(), "rle", p.RLE())
		}
	}
	return p, nil
}

func (s *RuleSearch) withinCaps(g *core.Grid) bool {
	pop := g.Population()
	if pop <= s.params.MinPop {
		return false
	}
	if s.params.MaxPop > 0 && pop >= s.params.MaxPop {
		return false
	}
	lo, hi, _ := g.Bounds()
	if s.params.MaxWidth > 0 && hi.X-lo.X >= s.params.MaxWidth {
		return false
	}
	return s.params.MaxHeight <= 0 || hi.Y-lo.Y < s.params.MaxHeight
}
