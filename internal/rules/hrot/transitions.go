package hrot

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

// Transitions is a set of neighbourhood sums.
type Transitions map[int]struct{}

// NewTransitions returns a set holding values.
func NewTransitions(values ...int) Transitions {
	t := make(Transitions, len(values))
	for _, v := range values {
		t[v] = struct{}{}
	}
	return t
}

// Span returns the set lo..hi inclusive.
func Span(lo, hi int) Transitions {
	t := make(Transitions)
	for i := lo; i <= hi; i++ {
		t[i] = struct{}{}
	}
	return t
}

// Has reports whether v is in the set.
func (t Transitions) Has(v int) bool {
	_, ok := t[v]
	return ok
}

// Sorted returns the members in ascending order.
func (t Transitions) Sorted() []int {
	out := make([]int, 0, len(t))
	for v := range t {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Clone copies the set.
func (t Transitions) Clone() Transitions {
	cp := make(Transitions, len(t))
	for v := range t {
		cp[v] = struct{}{}
	}
	return cp
}

// SubsetOf reports whether every member of t is in o.
func (t Transitions) SubsetOf(o Transitions) bool {
	for v := range t {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// Equal reports set equality.
func (t Transitions) Equal(o Transitions) bool {
	return len(t) == len(o) && t.SubsetOf(o)
}

// Digits renders the set as concatenated single digits, e.g. "23".
func (t Transitions) Digits() string {
	var b strings.Builder
	for _, v := range t.Sorted() {
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Commas renders the set in higher-range form: runs of three or more
// become "a-b", every item is followed by a comma and the empty set is ",".
func (t Transitions) Commas() string {
	vals := t.Sorted()
	if len(vals) == 0 {
		return ","
	}
	var b strings.Builder
	for i := 0; i < len(vals); {
		j := i + 1
		for j < len(vals) && vals[j]-vals[j-1] == 1 {
			j++
		}
		if j-i > 2 {
			fmt.Fprintf(&b, "%d-%d,", vals[i], vals[j-1])
		} else {
			for k := i; k < j; k++ {
				fmt.Fprintf(&b, "%d,", vals[k])
			}
		}
		i = j
	}
	return b.String()
}

func parseDigits(s string) Transitions {
	t := make(Transitions, len(s))
	for _, r := range s {
		t[int(r-'0')] = struct{}{}
	}
	return t
}

// parseCommas reads a higher-range list such as "2-3,5,". A reversed range
// is reported against its own token.
func parseCommas(rule, s string) (Transitions, error) {
	t := make(Transitions)
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(tok, "-")
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, rules.Invalid(rule, tok, "%v", err)
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(hi); err != nil {
				return nil, rules.Invalid(rule, tok, "%v", err)
			}
			if b < a {
				return nil, rules.Invalid(rule, tok, "reversed range")
			}
		}
		for i := a; i <= b; i++ {
			t[i] = struct{}{}
		}
	}
	return t, nil
}

// checkSums rejects members of t above top, the largest sum the
// neighbourhood can produce.
func checkSums(rule string, t Transitions, top int) error {
	for _, v := range t.Sorted() {
		if v > top {
			return rules.Invalid(rule, strconv.Itoa(v), "exceeds the maximum neighbourhood sum %d", top)
		}
	}
	return nil
}

// randomiser draws one inclusion threshold per round and applies it to
// every set randomised in that round.
type randomiser struct {
	rng       *pcore.RNG
	threshold int
}

func newRandomiser(rng *pcore.RNG) *randomiser {
	return &randomiser{rng: rng, threshold: rng.IntN(500) + 250}
}

// between returns min plus each optional member of max, each kept when a
// draw from [0, 1000) exceeds the threshold.
func (r *randomiser) between(minSet, maxSet Transitions) Transitions {
	out := minSet.Clone()
	for _, v := range maxSet.Sorted() {
		if minSet.Has(v) {
			continue
		}
		if r.rng.IntN(1000) > r.threshold {
			out[v] = struct{}{}
		}
	}
	return out
}
