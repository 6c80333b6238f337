package hrot

import (
	"encoding/binary"
	"regexp"
	"strconv"
	"strings"

	"casearch/internal/core"
	"casearch/internal/rules"
)

const (
	cyclicMooreToken = `l(?:-[0-8])*|[0-8]`
	cyclicRangeToken = `\d+|l(?:-\d+)*`
)

var (
	cyclicMooreRe = regexp.MustCompile(`^B(?:` + cyclicMooreToken + `)*/(?:M(?:` + cyclicMooreToken + `)*/)*S(?:` + cyclicMooreToken + `)*/C(\d+)$`)
	cyclicRangeRe = regexp.MustCompile(`^R(\d+),C(\d+),B[0-9l,-]*(?:M[0-9l,-]*)*S[0-9l,-]*` + nbhdSpec + `$`)

	cyclicMooreTokenRe = regexp.MustCompile(cyclicMooreToken)
	cyclicRangeTokenRe = regexp.MustCompile(`^(?:` + cyclicRangeToken + `)$`)
)

// Cyclic is a multi-state rule where states 1..n-1 are species that behave
// identically up to rotation. Transitions are keyed by the cell state and
// the count of each species among its neighbours.
type Cyclic struct {
	neighbourhood
	Form form
	// Sections holds the tokens of B, each M and S in order.
	Sections [][]string
	table    map[string]int
}

// ParseCyclic parses B.../M.../S.../C<n> or R<r>,C<n>,B...,M...,S...,N<spec>.
func ParseCyclic(body string) (*Cyclic, error) {
	c := &Cyclic{}
	var err error
	if m := cyclicMooreRe.FindStringSubmatch(body); m != nil {
		if c.States, err = strconv.Atoi(m[1]); err != nil {
			return nil, rules.Invalid(body, "C"+m[1], "%v", err)
		}
		c.Form = formMoore
		c.loadSymbol('M', 1)
		parts := strings.Split(body, "/")
		for _, p := range parts[:len(parts)-1] {
			c.Sections = append(c.Sections, cyclicMooreTokenRe.FindAllString(p[1:], -1))
		}
	} else if m := cyclicRangeRe.FindStringSubmatch(body); m != nil {
		r, err := strconv.Atoi(m[1])
		if err != nil || r < 1 {
			return nil, rules.Invalid(body, "R"+m[1], "range must be positive")
		}
		if c.States, err = strconv.Atoi(m[2]); err != nil {
			return nil, rules.Invalid(body, "C"+m[2], "%v", err)
		}
		c.Form = formRange
		if err := c.load(body, m[3], r); err != nil {
			return nil, err
		}
		if c.Cells == nil || c.Weights != nil {
			return nil, rules.Invalid(body, m[3], "cyclic rules need an unweighted neighbourhood")
		}
		fields := strings.Split(strings.TrimSuffix(body, m[3]), ",")[2:]
		for _, f := range fields {
			if f == "" {
				continue
			}
			if f[0] == 'B' || f[0] == 'M' || f[0] == 'S' {
				c.Sections = append(c.Sections, nil)
				f = f[1:]
				if f == "" {
					continue
				}
			}
			if !cyclicRangeTokenRe.MatchString(f) {
				return nil, rules.Invalid(body, f, "bad count token")
			}
			c.Sections[len(c.Sections)-1] = append(c.Sections[len(c.Sections)-1], f)
		}
	} else {
		return nil, rules.Invalid(body, body, "not a cyclic rulestring")
	}
	if c.States < 3 {
		return nil, rules.Invalid(body, "C"+strconv.Itoa(c.States), "need at least three states")
	}
	if len(c.Sections)-2 > c.States-2 {
		return nil, rules.Invalid(body, "M", "at most %d mutation sections", c.States-2)
	}
	if err := c.build(body); err != nil {
		return nil, err
	}
	if out, _ := c.Lookup(0, make([]int, c.States-1)); out != 0 {
		return nil, rules.Invalid(body, "B", "cyclic rules do not support B0")
	}
	return c, nil
}

// build expands every section into the transition table.
func (c *Cyclic) build(body string) error {
	c.table = make(map[string]int)
	last := len(c.Sections) - 1
	for i, tokens := range c.Sections {
		in, out := 1, 1
		switch {
		case i == 0:
			in = 0
		case i < last:
			out = i + 1
		}
		width := c.States - 1
		if len(tokens)%width != 0 {
			return rules.Invalid(body, strings.Join(tokens, ""), "tuples need %d counts", width)
		}
		for k := 0; k < len(tokens); k += width {
			tuples, err := c.expand(tokens[k : k+width])
			if err != nil {
				return rules.Invalid(body, strings.Join(tokens[k:k+width], ""), "%v", err)
			}
			for _, counts := range tuples {
				c.addClosed(in, counts, out)
			}
		}
	}
	return nil
}

// expand turns one tuple of tokens into every count tuple it denotes.
func (c *Cyclic) expand(tokens []string) ([][]int, error) {
	limit := len(c.Cells)
	out := [][]int{nil}
	for _, tok := range tokens {
		var values []int
		if tok[0] == 'l' {
			excluded := map[int]bool{}
			for _, e := range strings.Split(tok, "-")[1:] {
				v, err := strconv.Atoi(e)
				if err != nil {
					return nil, err
				}
				excluded[v] = true
			}
			for v := 0; v <= limit; v++ {
				if !excluded[v] {
					values = append(values, v)
				}
			}
		} else {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, err
			}
			values = []int{v}
		}
		var next [][]int
		for _, prefix := range out {
			total := 0
			for _, p := range prefix {
				total += p
			}
			for _, v := range values {
				if total+v > limit {
					continue
				}
				t := make([]int, len(prefix), len(prefix)+1)
				copy(t, prefix)
				next = append(next, append(t, v))
			}
		}
		out = next
	}
	return out, nil
}

func (c *Cyclic) rotate(s, i int) int {
	if s == 0 {
		return 0
	}
	return core.FloorMod(s-1+i, c.States-1) + 1
}

func (c *Cyclic) addClosed(in int, counts []int, out int) {
	rotated := make([]int, len(counts))
	for i := 0; i < c.States-1; i++ {
		for s, n := range counts {
			rotated[c.rotate(s+1, i)-1] = n
		}
		c.table[cyclicKey(c.rotate(in, i), rotated)] = c.rotate(out, i)
	}
}

func cyclicKey(state int, counts []int) string {
	buf := binary.AppendUvarint(nil, uint64(state))
	for _, n := range counts {
		buf = binary.AppendUvarint(buf, uint64(n))
	}
	return string(buf)
}

// Name returns "Cyclic".
func (c *Cyclic) Name() string { return "Cyclic" }

// Rulestring returns the canonical rulestring.
func (c *Cyclic) Rulestring() string {
	letter := func(i int) string {
		switch i {
		case 0:
			return "B"
		case len(c.Sections) - 1:
			return "S"
		}
		return "M"
	}
	var b strings.Builder
	if c.Form == formMoore {
		for i, tokens := range c.Sections {
			b.WriteString(letter(i) + strings.Join(tokens, "") + "/")
		}
		b.WriteString("C" + strconv.Itoa(c.States))
		return b.String() + c.Suffix()
	}
	b.WriteString("R" + strconv.Itoa(c.Range) + ",C" + strconv.Itoa(c.States) + ",")
	for i, tokens := range c.Sections {
		b.WriteString(letter(i))
		for _, t := range tokens {
			b.WriteString(t + ",")
		}
		if len(tokens) == 0 {
			b.WriteString(",")
		}
	}
	b.WriteString(c.Spec)
	return b.String() + c.Suffix()
}

// Clone deep-copies the rule. The transition table is shared.
func (c *Cyclic) Clone() rules.Rule {
	cp := &Cyclic{neighbourhood: c.cloneNeighbourhood(), Form: c.Form, table: c.table}
	for _, s := range c.Sections {
		cp.Sections = append(cp.Sections, append([]string(nil), s...))
	}
	return cp
}

// Describe lists the rule parameters.
func (c *Cyclic) Describe() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Cyclic",
			Params: []core.Parameter{
				{Key: "states", Label: "States", Type: core.ParamTypeInt, Value: strconv.Itoa(c.States)},
				{Key: "transitions", Label: "Transitions", Type: core.ParamTypeInt, Value: strconv.Itoa(len(c.table))},
			},
		},
		c.neighbourhood.describe(),
	}}
}

// Transition looks up the cell state and species counts.
func (c *Cyclic) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	counts := make([]int, c.States-1)
	for _, v := range neighbours {
		if v > 0 && v < c.States {
			counts[v-1]++
		}
	}
	return c.table[cyclicKey(state, counts)]
}

// Lookup returns the output for a cell state and its species counts, and
// whether the pair is listed.
func (c *Cyclic) Lookup(state int, counts []int) (int, bool) {
	out, ok := c.table[cyclicKey(state, counts)]
	return out, ok
}
