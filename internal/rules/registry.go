package rules

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"casearch/internal/core"
)

// Family describes one rule family for rulestring dispatch.
type Family struct {
	Name string
	// Priority orders dispatch when several families accept the same body;
	// lower runs first.
	Priority int
	// Patterns are anchored expressions over the rule body.
	Patterns []*regexp.Regexp
	// Parse builds a rule from a body accepted by Patterns.
	Parse func(body string) (Rule, error)
}

// Matches reports whether any of the family's patterns accepts body.
func (f Family) Matches(body string) bool {
	for _, re := range f.Patterns {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

var (
	familiesMu sync.RWMutex
	families   []Family
)

// Register adds a family to the registry.
func Register(f Family) {
	if f.Name == "" || f.Parse == nil {
		return
	}
	familiesMu.Lock()
	defer familiesMu.Unlock()
	families = append(families, f)
	slices.SortStableFunc(families, func(a, b Family) int { return a.Priority - b.Priority })
}

// Families returns the registered families in dispatch order.
func Families() []Family {
	familiesMu.RLock()
	defer familiesMu.RUnlock()
	return slices.Clone(families)
}

// Lookup finds the family that accepts body.
func Lookup(body string) (Family, bool) {
	for _, f := range Families() {
		if f.Matches(body) {
			return f, true
		}
	}
	return Family{}, false
}

// Parse resolves a full rulestring. The body before the first colon picks
// the family; the remaining segments are specifiers (:T, :P bounded grids
// and :NO reading order).
func Parse(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	body := parts[0]

	var bound *core.BoundedGrid
	var order ReadingOrder
	for _, spec := range parts[1:] {
		switch {
		case spec == "":
			return nil, Invalid(s, ":", "empty specifier")
		case spec[0] == 'T' || spec[0] == 'P':
			b, err := core.ParseBounded(spec)
			if err != nil {
				return nil, Invalid(s, spec, "bad bounded grid")
			}
			bound = b
		default:
			o, ok := orders[spec]
			if !ok {
				return nil, Invalid(s, spec, "unknown specifier")
			}
			order = o
		}
	}
	if order != nil && bound == nil {
		return nil, Invalid(s, order.Name(), "reading order requires a bounded grid")
	}

	f, ok := Lookup(body)
	if !ok {
		return nil, Invalid(s, body, "no rule family accepts this rulestring")
	}
	r, err := f.Parse(body)
	if err != nil {
		return nil, err
	}
	r.SetBounded(bound)
	r.SetReadingOrder(order)
	return r, nil
}

// Canonise parses s and returns its canonical rulestring.
func Canonise(s string) (string, error) {
	r, err := Parse(s)
	if err != nil {
		return "", err
	}
	return r.Rulestring(), nil
}
