package ruletable

import (
	"strconv"
	"strings"
)

// entry is one position of a transition: a literal state or a variable.
type entry struct {
	literal  int
	variable *Variable
}

func (e entry) String() string {
	if e.variable != nil {
		return e.variable.Name
	}
	return strconv.Itoa(e.literal)
}

// Transition is one compiled line: the cell state, the neighbours in
// neighbourhood order and the output.
type Transition struct {
	entries []entry
	permute bool
	states  int
}

func (tr *Transition) String() string {
	parts := make([]string, len(tr.entries))
	for i, e := range tr.entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// Match reports whether the transition applies and the resulting state.
func (tr *Transition) Match(state int, neighbours []int) (int, bool) {
	if len(neighbours)+2 != len(tr.entries) {
		return 0, false
	}
	bound := make(map[string]int, 4)
	if !match(tr.entries[0], state, bound) {
		return 0, false
	}
	if tr.permute {
		counts := make([]int, tr.states)
		for _, n := range neighbours {
			if n < 0 || n >= tr.states {
				return 0, false
			}
			counts[n]++
		}
		if !tr.matchPermute(1, counts, bound) {
			return 0, false
		}
	} else {
		for i, n := range neighbours {
			if !match(tr.entries[i+1], n, bound) {
				return 0, false
			}
		}
	}
	out := tr.entries[len(tr.entries)-1]
	if out.variable == nil {
		return out.literal, true
	}
	return bound[out.variable.Name], true
}

func match(e entry, state int, bound map[string]int) bool {
	if e.variable == nil {
		return e.literal == state
	}
	if !e.variable.Has(state) {
		return false
	}
	if e.variable.Unbound {
		return true
	}
	if v, ok := bound[e.variable.Name]; ok {
		return v == state
	}
	bound[e.variable.Name] = state
	return true
}

// matchPermute assigns neighbour entries from i onwards to the remaining
// per-state counts, backtracking over variable choices.
func (tr *Transition) matchPermute(i int, counts []int, bound map[string]int) bool {
	if i == len(tr.entries)-1 {
		for _, c := range counts {
			if c != 0 {
				return false
			}
		}
		return true
	}
	e := tr.entries[i]
	if e.variable == nil {
		if counts[e.literal] == 0 {
			return false
		}
		counts[e.literal]--
		ok := tr.matchPermute(i+1, counts, bound)
		counts[e.literal]++
		return ok
	}
	if !e.variable.Unbound {
		if v, ok := bound[e.variable.Name]; ok {
			if counts[v] == 0 {
				return false
			}
			counts[v]--
			ok := tr.matchPermute(i+1, counts, bound)
			counts[v]++
			return ok
		}
	}
	for _, v := range e.variable.Values {
		if v < 0 || v >= len(counts) || counts[v] == 0 {
			continue
		}
		counts[v]--
		if !e.variable.Unbound {
			bound[e.variable.Name] = v
		}
		ok := tr.matchPermute(i+1, counts, bound)
		counts[v]++
		if ok {
			return true
		}
		if !e.variable.Unbound {
			delete(bound, e.variable.Name)
		}
	}
	return false
}
