// Package ruletable interprets Golly-style @TABLE rules with unbound
// variables and arbitrary neighbourhoods.
package ruletable

import (
	"bufio"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"casearch/internal/core"
	"casearch/internal/rules"
	"casearch/internal/rules/symmetry"
)

// Neighbourhoods in Golly's ruletable order, listed clockwise from north.
var namedNeighbourhoods = map[string][]core.Coordinate{
	"moore": {
		{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
		{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1},
	},
	"vonneumann":     {{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
	"hexagonal":      {{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1}},
	"onedimensional": {{X: -1, Y: 0}, {X: 1, Y: 0}},
}

var (
	pairRe    = regexp.MustCompile(`\(\s*(-?\d+)\s*,\s*(-?\d+)\s*\)`)
	varRe     = regexp.MustCompile(`^(var|unbound)\s+([A-Za-z0-9_.-]+)\s*=\s*(.+)$`)
	setRe     = regexp.MustCompile(`^\{\s*(\d+(?:\s*,\s*\d+)*)\s*}$`)
	tokenRe   = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	compactRe = regexp.MustCompile(`^\d+$`)
)

// Variable is a named set of states. A bound variable takes the same value
// everywhere it appears in one transition; an unbound one does not.
type Variable struct {
	Name    string
	Unbound bool
	Values  []int
}

// Has reports whether state is one of the variable's values.
func (v *Variable) Has(state int) bool { return slices.Contains(v.Values, state) }

// Table is one parsed @TABLE section.
type Table struct {
	States        int
	Neighbourhood []core.Coordinate
	Tile          rules.Tiling
	Permute       bool
	Symmetry      *symmetry.Group
	Variables     map[string]*Variable
	Transitions   []*Transition

	// variable declaration order, for export
	order []string
}

// NewTable returns an empty table with no symmetry.
func NewTable(states int, nbhd []core.Coordinate) *Table {
	return &Table{
		States:        states,
		Neighbourhood: nbhd,
		Variables:     make(map[string]*Variable),
	}
}

// Parse reads the body of an @TABLE section.
func Parse(content string) (*Table, error) {
	t := NewTable(2, namedNeighbourhoods["moore"])
	symmetries := "none"
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		key, value, isHeader := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch {
		case isHeader && (key == "n_states" || key == "states"):
			n, err := strconv.Atoi(value)
			if err != nil || n < 2 {
				return nil, fmt.Errorf("ruletable: bad n_states %q", value)
			}
			t.States = n
		case isHeader && (key == "neighborhood" || key == "neighbourhood"):
			nbhd, err := parseNeighbourhood(value)
			if err != nil {
				return nil, err
			}
			t.Neighbourhood = nbhd
		case isHeader && key == "tiling":
			t.Tile = parseTiling(value)
		case isHeader && key == "symmetries":
			symmetries = value
		default:
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ruletable: %w", err)
	}
	if err := t.SetSymmetry(symmetries); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if m := varRe.FindStringSubmatch(line); m != nil {
			if err := t.declare(m[2], m[1] == "unbound", m[3]); err != nil {
				return nil, err
			}
			continue
		}
		if err := t.AddTransition(line); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseNeighbourhood(value string) ([]core.Coordinate, error) {
	if nbhd, ok := namedNeighbourhoods[strings.ToLower(value)]; ok {
		return slices.Clone(nbhd), nil
	}
	pairs := pairRe.FindAllStringSubmatch(value, -1)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("ruletable: unknown neighbourhood %q", value)
	}
	nbhd := make([]core.Coordinate, 0, len(pairs))
	for _, p := range pairs {
		x, _ := strconv.Atoi(p[1])
		y, _ := strconv.Atoi(p[2])
		nbhd = append(nbhd, core.Coordinate{X: x, Y: y})
	}
	// Explicit lists name the centre first and last.
	if len(nbhd) >= 2 && nbhd[0] == (core.Coordinate{}) && nbhd[len(nbhd)-1] == (core.Coordinate{}) {
		nbhd = nbhd[1 : len(nbhd)-1]
	}
	return nbhd, nil
}

func parseTiling(value string) rules.Tiling {
	switch strings.ToLower(value) {
	case "hexagonal":
		return rules.Hexagonal
	case "triangular":
		return rules.Triangular
	}
	return rules.Square
}

// SetSymmetry selects permute, a named group or an explicit cycle list.
func (t *Table) SetSymmetry(name string) error {
	t.Permute = false
	t.Symmetry = nil
	switch {
	case name == "none":
		return nil
	case name == "permute":
		t.Permute = true
		return nil
	case strings.HasPrefix(name, "["):
		g, err := symmetry.Parse(name)
		if err != nil {
			return fmt.Errorf("ruletable: %w", err)
		}
		t.Symmetry = g
		return nil
	}
	g, err := symmetry.Named(name, len(t.Neighbourhood))
	if err != nil {
		return fmt.Errorf("ruletable: %w", err)
	}
	t.Symmetry = g
	return nil
}

func (t *Table) declare(name string, unbound bool, value string) error {
	v := &Variable{Name: name, Unbound: unbound}
	if m := setRe.FindStringSubmatch(value); m != nil {
		for _, tok := range strings.Split(m[1], ",") {
			n, _ := strconv.Atoi(strings.TrimSpace(tok))
			v.Values = append(v.Values, n)
		}
	} else if other, ok := t.Variables[value]; ok {
		v.Values = slices.Clone(other.Values)
	} else {
		return fmt.Errorf("ruletable: variable %s: bad value %q", name, value)
	}
	t.AddVariable(v)
	return nil
}

// AddVariable declares or replaces a variable.
func (t *Table) AddVariable(v *Variable) {
	if _, ok := t.Variables[v.Name]; !ok {
		t.order = append(t.order, v.Name)
	}
	t.Variables[v.Name] = v
}

func (t *Table) splitLine(line string) ([]string, error) {
	var tokens []string
	if !strings.Contains(line, ",") && compactRe.MatchString(line) {
		for _, r := range line {
			tokens = append(tokens, string(r))
		}
	} else {
		for _, tok := range strings.Split(line, ",") {
			tokens = append(tokens, strings.TrimSpace(tok))
		}
	}
	if len(tokens) != len(t.Neighbourhood)+2 {
		return nil, fmt.Errorf("ruletable: transition %q has %d entries, want %d", line, len(tokens), len(t.Neighbourhood)+2)
	}
	for _, tok := range tokens {
		if !tokenRe.MatchString(tok) {
			return nil, fmt.Errorf("ruletable: transition %q: bad entry %q", line, tok)
		}
	}
	return tokens, nil
}

// AddTransition adds a transition line, expanding it under the table's
// symmetry unless permute symmetry is in use.
func (t *Table) AddTransition(line string) error {
	tokens, err := t.splitLine(line)
	if err != nil {
		return err
	}
	if t.Permute || t.Symmetry == nil || t.Symmetry.Generators() == 0 {
		tr, err := t.compile(tokens)
		if err != nil {
			return err
		}
		t.Transitions = append(t.Transitions, tr)
		return nil
	}

	ids := make(map[string]int)
	var names []string
	neighbours := make([]int, len(tokens)-2)
	for i, tok := range tokens[1 : len(tokens)-1] {
		id, ok := ids[tok]
		if !ok {
			id = len(names)
			ids[tok] = id
			names = append(names, tok)
		}
		neighbours[i] = id
	}
	for _, img := range t.Symmetry.Apply(neighbours) {
		expanded := make([]string, 0, len(tokens))
		expanded = append(expanded, tokens[0])
		for _, id := range img {
			expanded = append(expanded, names[id])
		}
		expanded = append(expanded, tokens[len(tokens)-1])
		tr, err := t.compile(expanded)
		if err != nil {
			return err
		}
		t.Transitions = append(t.Transitions, tr)
	}
	return nil
}

func (t *Table) compile(tokens []string) (*Transition, error) {
	tr := &Transition{entries: make([]entry, len(tokens)), permute: t.Permute, states: t.States}
	for i, tok := range tokens {
		if n, err := strconv.Atoi(tok); err == nil {
			if n < 0 || n >= t.States {
				return nil, fmt.Errorf("ruletable: state %d out of range", n)
			}
			tr.entries[i] = entry{literal: n}
			continue
		}
		v, ok := t.Variables[tok]
		if !ok {
			return nil, fmt.Errorf("ruletable: undeclared variable %q", tok)
		}
		tr.entries[i] = entry{literal: -1, variable: v}
	}
	out := tr.entries[len(tokens)-1]
	if out.variable != nil && (out.variable.Unbound || !slices.Contains(tokens[:len(tokens)-1], out.variable.Name)) {
		return nil, fmt.Errorf("ruletable: output variable %q is not bound by the inputs", out.variable.Name)
	}
	return tr, nil
}

// Apply returns the next state of a cell, keeping the state when no
// transition matches.
func (t *Table) Apply(state int, neighbours []int) int {
	for _, tr := range t.Transitions {
		if next, ok := tr.Match(state, neighbours); ok {
			return next
		}
	}
	return state
}

// AddOuterTotalistic adds a transition for a cell with count neighbours
// matching on and the rest matching off. It needs permute symmetry.
func (t *Table) AddOuterTotalistic(count int, in, out, off, on string) error {
	tokens := []string{in}
	for i := range t.Neighbourhood {
		if i < count {
			tokens = append(tokens, on)
		} else {
			tokens = append(tokens, off)
		}
	}
	return t.AddTransition(strings.Join(append(tokens, out), ","))
}

// String renders the table in @TABLE form.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString("@TABLE\n")
	fmt.Fprintf(&b, "n_states:%d\n", t.States)
	b.WriteString("neighborhood:[(0, 0)")
	for _, c := range t.Neighbourhood {
		fmt.Fprintf(&b, ", (%d, %d)", c.X, c.Y)
	}
	b.WriteString(", (0, 0)]\n")
	switch {
	case t.Permute:
		b.WriteString("symmetries:permute\n")
	default:
		b.WriteString("symmetries:none\n")
	}
	if t.Tile != rules.Square {
		fmt.Fprintf(&b, "tiling:%s\n", t.Tile)
	}
	b.WriteString("\n")
	for _, name := range t.order {
		v := t.Variables[name]
		kind := "var"
		if v.Unbound {
			kind = "unbound"
		}
		vals := make([]string, len(v.Values))
		for i, n := range v.Values {
			vals[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(&b, "%s %s = {%s}\n", kind, name, strings.Join(vals, ","))
	}
	if len(t.order) > 0 {
		b.WriteString("\n")
	}
	for _, tr := range t.Transitions {
		b.WriteString(tr.String())
		b.WriteString("\n")
	}
	return b.String()
}
