// Package hrot implements the weighted higher-range outer-totalistic rule
// families: HROT, History, Generations, Symbiosis, DeadlyEnemies, BSFKL and
// multi-state Cyclic.
package hrot

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
)

const (
	// trans matches a higher-range transition list, each item followed by
	// a comma, or a lone comma for the empty set.
	trans = `((?:\d+(?:-\d+)?,)+|,)`
	// nbhdSpec matches a neighbourhood specifier.
	nbhdSpec = `(N(?:@[A-Fa-f0-9]*[HL]?|W[A-Fa-f0-9]+[HL]?|[ABbCGHLMNX23*+#]))`
)

var (
	coordCARe = regexp.MustCompile(`^N@([A-Fa-f0-9]*)([HL]?)$`)
	weightsRe = regexp.MustCompile(`^NW([A-Fa-f0-9]+)([HL]?)$`)
)

// neighbourhood is the weighted neighbourhood shared by the
// outer-totalistic families.
type neighbourhood struct {
	rules.Base
	Range    int
	Spec     string
	Cells    []core.Coordinate
	Weights  []int
	MaxCount int
}

func (n *neighbourhood) Neighbourhood(int) []core.Coordinate { return n.Cells }

// weight returns the weight of neighbour i.
func (n *neighbourhood) weight(i int) int {
	if n.Weights == nil {
		return 1
	}
	return n.Weights[i]
}

func (n *neighbourhood) cloneNeighbourhood() neighbourhood {
	cp := *n
	cp.Base = n.CloneBase()
	cp.Cells = slices.Clone(n.Cells)
	cp.Weights = slices.Clone(n.Weights)
	return cp
}

// loadSymbol sets a range-1 symbol neighbourhood used by the short forms.
func (n *neighbourhood) loadSymbol(symbol byte, r int) {
	n.Range = r
	n.Spec = "N" + string(symbol)
	n.Cells, n.Weights, n.Tile = rules.FromSymbol(symbol, r)
	n.updateMaxCount()
}

// load parses a specifier such as NM, N@891891 or NW0110...H.
func (n *neighbourhood) load(rule, spec string, r int) error {
	n.Range = r
	n.Spec = spec
	n.Tile = rules.Square
	var tiling string
	switch {
	case coordCARe.MatchString(spec):
		m := coordCARe.FindStringSubmatch(spec)
		tiling = m[2]
		if m[1] == "" {
			n.Cells = nil
			break
		}
		cells, err := rules.FromCoordCA(m[1], r)
		if err != nil {
			return rules.Invalid(rule, spec, "%v", err)
		}
		n.Cells, n.Weights = cells, nil
	case weightsRe.MatchString(spec):
		m := weightsRe.FindStringSubmatch(spec)
		tiling = m[2]
		cells, weights, err := rules.FromWeights(m[1], r)
		if err != nil {
			return rules.Invalid(rule, spec, "%v", err)
		}
		n.Cells, n.Weights = cells, weights
	case len(spec) == 2:
		n.Cells, n.Weights, n.Tile = rules.FromSymbol(spec[1], r)
	default:
		return rules.Invalid(rule, spec, "unknown neighbourhood")
	}
	switch tiling {
	case "H":
		n.Tile = rules.Hexagonal
	case "L":
		n.Tile = rules.Triangular
	}
	n.updateMaxCount()
	return nil
}

func (n *neighbourhood) updateMaxCount() {
	n.MaxCount = 0
	if n.Weights == nil {
		n.MaxCount = len(n.Cells)
		return
	}
	for _, w := range n.Weights {
		if w > 0 {
			n.MaxCount += w
		}
	}
}

// describe lists the neighbourhood parameters.
func (n *neighbourhood) describe() core.ParameterGroup {
	return core.ParameterGroup{
		Name: "Neighbourhood",
		Params: []core.Parameter{
			{Key: "range", Label: "Range", Type: core.ParamTypeInt, Value: strconv.Itoa(n.Range)},
			{Key: "neighbourhood", Label: "Neighbourhood", Type: core.ParamTypeString, Value: n.Spec},
			{Key: "cells", Label: "Cells", Type: core.ParamTypeInt, Value: strconv.Itoa(len(n.Cells))},
			{Key: "tiling", Label: "Tiling", Type: core.ParamTypeString, Value: n.Tile.String()},
		},
		Summary: fmt.Sprintf("max weighted count %d", n.MaxCount),
	}
}

// form records which grammar a birth/survival rule was written in.
type form int

const (
	formMoore form = iota
	formVonNeumann
	formHexagonal
	formRange
)

// shortRe builds the B/S short grammar with digits up to maxDigit followed
// by suffix.
func shortRe(maxDigit byte, suffix string) *regexp.Regexp {
	d := fmt.Sprintf("[0-%c]", maxDigit)
	return regexp.MustCompile(fmt.Sprintf(
		`^(?:[Bb](%[1]s*)/?[Ss](%[1]s*)|[Ss](%[1]s*)/?[Bb](%[1]s*)|(%[1]s*)/(%[1]s*))%[2]s$`, d, suffix))
}

func rangeRe(suffix string) *regexp.Regexp {
	return regexp.MustCompile(`^R(\d+),C([02]),S` + trans + `B` + trans + nbhdSpec + suffix + `$`)
}

// birthSurvival is the grammar and state shared by HROT, History,
// Symbiosis and DeadlyEnemies.
type birthSurvival struct {
	neighbourhood
	Form     form
	Birth    Transitions
	Survival Transitions
}

type bsGrammar struct {
	moore, vonNeumann, hexagonal, ranged *regexp.Regexp
}

func newBSGrammar(suffix string) bsGrammar {
	return bsGrammar{
		moore:      shortRe('8', suffix),
		vonNeumann: shortRe('4', "V"+suffix),
		hexagonal:  shortRe('6', "H"+suffix),
		ranged:     rangeRe(suffix),
	}
}

func (g bsGrammar) patterns() []*regexp.Regexp {
	return []*regexp.Regexp{g.moore, g.vonNeumann, g.hexagonal, g.ranged}
}

func (g bsGrammar) parse(body string) (birthSurvival, error) {
	var bs birthSurvival
	short := func(idx []int) {
		group := func(i int) string {
			if idx[2*i] < 0 {
				return ""
			}
			return body[idx[2*i]:idx[2*i+1]]
		}
		switch {
		case idx[2] >= 0:
			bs.Birth, bs.Survival = parseDigits(group(1)), parseDigits(group(2))
		case idx[6] >= 0:
			bs.Survival, bs.Birth = parseDigits(group(3)), parseDigits(group(4))
		default:
			bs.Survival, bs.Birth = parseDigits(group(5)), parseDigits(group(6))
		}
	}
	if idx := g.moore.FindStringSubmatchIndex(body); idx != nil {
		short(idx)
		bs.Form = formMoore
		bs.loadSymbol('M', 1)
		return bs, nil
	}
	if idx := g.vonNeumann.FindStringSubmatchIndex(body); idx != nil {
		short(idx)
		bs.Form = formVonNeumann
		bs.loadSymbol('N', 1)
		return bs, nil
	}
	if idx := g.hexagonal.FindStringSubmatchIndex(body); idx != nil {
		short(idx)
		bs.Form = formHexagonal
		bs.loadSymbol('H', 1)
		return bs, nil
	}
	m := g.ranged.FindStringSubmatch(body)
	if m == nil {
		return bs, rules.Invalid(body, body, "not a birth/survival rulestring")
	}
	r, err := strconv.Atoi(m[1])
	if err != nil || r < 1 {
		return bs, rules.Invalid(body, "R"+m[1], "range must be positive")
	}
	if bs.Survival, err = parseCommas(body, m[3]); err != nil {
		return bs, err
	}
	if bs.Birth, err = parseCommas(body, m[4]); err != nil {
		return bs, err
	}
	bs.Form = formRange
	if err := bs.load(body, m[5], r); err != nil {
		return bs, err
	}
	if bs.Cells == nil {
		return bs, rules.Invalid(body, m[5], "empty neighbourhood")
	}
	for _, t := range []Transitions{bs.Survival, bs.Birth} {
		if err := checkSums(body, t, bs.MaxCount); err != nil {
			return bs, err
		}
	}
	return bs, nil
}

// body renders the canonical birth/survival rulestring without suffixes.
func (bs *birthSurvival) body() string {
	switch bs.Form {
	case formMoore:
		return "B" + bs.Birth.Digits() + "/S" + bs.Survival.Digits()
	case formVonNeumann:
		return "B" + bs.Birth.Digits() + "/S" + bs.Survival.Digits() + "V"
	case formHexagonal:
		return "B" + bs.Birth.Digits() + "/S" + bs.Survival.Digits() + "H"
	default:
		return fmt.Sprintf("R%d,C2,S%sB%s%s", bs.Range, bs.Survival.Commas(), bs.Birth.Commas(), bs.Spec)
	}
}

func (bs *birthSurvival) cloneBS() birthSurvival {
	return birthSurvival{
		neighbourhood: bs.cloneNeighbourhood(),
		Form:          bs.Form,
		Birth:         bs.Birth.Clone(),
		Survival:      bs.Survival.Clone(),
	}
}

// sum adds the weights of neighbours accepted by on.
func (n *neighbourhood) sum(neighbours []int, on func(state int) bool) int {
	s := 0
	for i, v := range neighbours {
		if on(v) {
			s += n.weight(i)
		}
	}
	return s
}

// updateB0 sets the background for a rule whose dead state cycles through
// states when B0 is present.
func (bs *birthSurvival) updateB0(cycle int) {
	switch {
	case !bs.Birth.Has(0):
		bs.BG, bs.Period = []int{0}, 1
	case bs.Survival.Has(bs.MaxCount):
		bs.BG, bs.Period = []int{1}, 1
	default:
		bs.BG = make([]int, cycle)
		for i := range bs.BG {
			bs.BG[i] = i
		}
		bs.Period = cycle
	}
}

func (bs *birthSurvival) describe(name string) core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: name,
			Params: []core.Parameter{
				{Key: "birth", Label: "Birth", Type: core.ParamTypeString, Value: bs.Birth.Commas()},
				{Key: "survival", Label: "Survival", Type: core.ParamTypeString, Value: bs.Survival.Commas()},
				{Key: "states", Label: "States", Type: core.ParamTypeInt, Value: strconv.Itoa(bs.States)},
			},
		},
		bs.neighbourhood.describe(),
	}}
}
