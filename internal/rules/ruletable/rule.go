package ruletable

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"casearch/internal/core"
	"casearch/internal/rules"
)

//go:embed builtin/*.rule
var builtin embed.FS

// PriorityRuletable orders ruletable dispatch after the built-in families.
const PriorityRuletable = 50

var nameRe = regexp.MustCompile(`^@([A-Za-z0-9_()+.-]+)$`)

var (
	dirMu sync.RWMutex
	dir   = "rules"
)

// SetDirectory sets where @name rulestrings are looked up as name.rule.
func SetDirectory(d string) {
	dirMu.Lock()
	defer dirMu.Unlock()
	dir = d
}

// Directory returns the lookup directory.
func Directory() string {
	dirMu.RLock()
	defer dirMu.RUnlock()
	return dir
}

// ErrNotFound reports a rule name with no file in the directory or among
// the built-in rules.
var ErrNotFound = errors.New("ruletable: rule not found")

// Rule is a rule file with one or more @TABLE sections. Several sections
// alternate generation by generation.
type Rule struct {
	rules.Base
	RuleName string
	Tables   []*Table
}

// Load reads name.rule from the lookup directory, falling back to the
// built-in rules.
func Load(name string) (*Rule, error) {
	path := filepath.Join(Directory(), name+".rule")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = builtin.ReadFile("builtin/" + name + ".rule")
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("ruletable: load %s: %w", name, err)
	}
	return ParseFile(name, string(data))
}

// ParseFile parses the text of a rule file. Directives other than @RULE
// and @TABLE are skipped.
func ParseFile(name, text string) (*Rule, error) {
	r := &Rule{RuleName: name}
	var section strings.Builder
	directive := ""
	flush := func() error {
		if directive == "@TABLE" {
			t, err := Parse(section.String())
			if err != nil {
				return err
			}
			r.Tables = append(r.Tables, t)
		}
		section.Reset()
		return nil
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			if err := flush(); err != nil {
				return nil, err
			}
			fields := strings.Fields(trimmed)
			directive = fields[0]
			if directive == "@RULE" && len(fields) > 1 {
				r.RuleName = fields[1]
			}
			continue
		}
		section.WriteString(line)
		section.WriteByte('\n')
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(r.Tables) == 0 {
		return nil, fmt.Errorf("ruletable: %s has no @TABLE section", name)
	}
	first := r.Tables[0]
	for _, t := range r.Tables[1:] {
		if t.States != first.States || t.Tile != first.Tile {
			return nil, fmt.Errorf("ruletable: %s: alternating tables must share states and tiling", name)
		}
	}
	r.States = first.States
	r.Tile = first.Tile
	if err := r.updateBackground(); err != nil {
		return nil, err
	}
	return r, nil
}

// updateBackground follows the all-background neighbourhood from state 0
// until it returns to 0 at a multiple of the table count.
func (r *Rule) updateBackground() error {
	n := len(r.Tables)
	bg := []int{0}
	state := 0
	for gen := 0; gen < n*r.States; gen++ {
		t := r.Tables[gen%n]
		neighbours := make([]int, len(t.Neighbourhood))
		for i := range neighbours {
			neighbours[i] = state
		}
		state = t.Apply(state, neighbours)
		if state == 0 && (gen+1)%n == 0 {
			r.BG, r.Period = bg, len(bg)
			return nil
		}
		bg = append(bg, state)
	}
	return fmt.Errorf("ruletable: %s: background never returns to 0", r.RuleName)
}

// Name returns "Ruletable".
func (r *Rule) Name() string { return "Ruletable" }

// Neighbourhood returns the neighbourhood of the table used in gen.
func (r *Rule) Neighbourhood(gen int) []core.Coordinate {
	return r.table(gen).Neighbourhood
}

func (r *Rule) table(gen int) *Table {
	return r.Tables[core.FloorMod(gen, len(r.Tables))]
}

// Transition applies the table of generation gen.
func (r *Rule) Transition(neighbours []int, state, gen int, _ core.Coordinate) int {
	return r.table(gen).Apply(state, neighbours)
}

// Rulestring returns @name with specifiers.
func (r *Rule) Rulestring() string { return "@" + r.RuleName + r.Suffix() }

// Clone copies the rule. Tables are immutable once parsed and are shared.
func (r *Rule) Clone() rules.Rule {
	return &Rule{Base: r.CloneBase(), RuleName: r.RuleName, Tables: r.Tables}
}

// Export renders the rule as a rule file.
func (r *Rule) Export() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@RULE %s\n\n", r.RuleName)
	for _, t := range r.Tables {
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	return b.String()
}

func init() {
	rules.Register(rules.Family{
		Name:     "Ruletable",
		Priority: PriorityRuletable,
		Patterns: []*regexp.Regexp{nameRe},
		Parse: func(body string) (rules.Rule, error) {
			name := nameRe.FindStringSubmatch(body)[1]
			r, err := Load(name)
			if err != nil {
				return nil, rules.Invalid(body, name, "%v", err)
			}
			return r, nil
		},
	})
}
