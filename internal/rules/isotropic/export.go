package isotropic

import (
	"strconv"
	"strings"

	"casearch/internal/rules"
	"casearch/internal/rules/ruletable"
)

// Ruletable exports the rule as a table over the lookup's neighbourhood,
// one line per class expanded under the lookup's symmetry group. B0 rules
// have no such form.
func (r *INT) Ruletable() (*ruletable.Table, error) {
	if len(r.BG) > 1 || r.BackgroundAt(0) != 0 {
		return nil, rules.Unsupported(r.Name(), "ruletable export")
	}
	t := ruletable.NewTable(2, r.lookup.Cells())
	if err := t.SetSymmetry(r.lookup.group.String()); err != nil {
		return nil, err
	}
	t.AddVariable(&ruletable.Variable{Name: "any", Unbound: true, Values: []int{0, 1}})

	add := func(state string, set Transitions) error {
		for _, c := range set.Sorted() {
			tokens := []string{state}
			for _, v := range r.lookup.Representative(c) {
				tokens = append(tokens, strconv.Itoa(v))
			}
			tokens = append(tokens, "1")
			if err := t.AddTransition(strings.Join(tokens, ",")); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add("0", r.Birth); err != nil {
		return nil, err
	}
	if err := add("1", r.Survival); err != nil {
		return nil, err
	}
	death := []string{"1"}
	for range r.lookup.cells {
		death = append(death, "any")
	}
	if err := t.AddTransition(strings.Join(append(death, "0"), ",")); err != nil {
		return nil, err
	}
	return t, nil
}
