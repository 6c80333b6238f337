package isotropic

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	pcore "casearch/pkg/core"
)

const (
	singleLetters = `[cekainyqjrtwz]`
	innerLetters  = `[cekainyqjrtwzx]`
	outerLetters  = `[ac-gi-r]`

	singleTransitions = `((?:[0-8]-?` + singleLetters + `*)*)`
	doubleTransitions = `((?:[0-8](?:` + innerLetters + outerLetters + `)+|\d+x-?)*)`
)

var (
	singleTokenRe = regexp.MustCompile(`([0-8])(-?)(` + singleLetters + `*)`)
	// Pairs are tried before the totalistic block so that 0xa reads as a
	// name rather than the block 0x followed by a stray letter.
	doubleTokenRe = regexp.MustCompile(`([0-8])((?:` + innerLetters + outerLetters + `)+)|(\d+)x(-?)`)
)

// Transitions is a set of class indices of one Lookup.
type Transitions map[int]struct{}

// Has reports whether class i is in the set.
func (t Transitions) Has(i int) bool {
	_, ok := t[i]
	return ok
}

// Sorted returns the members in ascending order.
func (t Transitions) Sorted() []int {
	out := make([]int, 0, len(t))
	for i := range t {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Clone copies the set.
func (t Transitions) Clone() Transitions {
	cp := make(Transitions, len(t))
	for i := range t {
		cp[i] = struct{}{}
	}
	return cp
}

// SubsetOf reports whether every member of t is in o.
func (t Transitions) SubsetOf(o Transitions) bool {
	for i := range t {
		if !o.Has(i) {
			return false
		}
	}
	return true
}

// Equal reports set equality.
func (t Transitions) Equal(o Transitions) bool {
	return len(t) == len(o) && t.SubsetOf(o)
}

// All returns every class of the lookup.
func (l *Lookup) All() Transitions {
	t := make(Transitions, len(l.classes))
	for i := range l.classes {
		t[i] = struct{}{}
	}
	return t
}

func (l *Lookup) addWhere(t Transitions, keep func(c class) bool) {
	for i, c := range l.classes {
		if keep(c) {
			t[i] = struct{}{}
		}
	}
}

// Parse reads a transition list such as "2-a3" or, for the double-letter
// neighbourhood, "2ac3x-1ca".
func (l *Lookup) Parse(s string) (Transitions, error) {
	matches := l.token.FindAllStringSubmatchIndex(s, -1)
	covered := 0
	for _, m := range matches {
		if m[0] != covered {
			break
		}
		covered = m[1]
	}
	if covered != len(s) {
		return nil, fmt.Errorf("transitions %q: unexpected %q", s, s[covered:])
	}
	if l.double {
		return l.parseDouble(s, matches)
	}
	return l.parseSingle(s, matches)
}

func (l *Lookup) parseSingle(s string, matches [][]int) (Transitions, error) {
	t := make(Transitions)
	for _, m := range matches {
		count, _ := strconv.Atoi(s[m[2]:m[3]])
		negate := m[5] > m[4]
		letters := s[m[6]:m[7]]
		if letters == "" || negate {
			l.addWhere(t, func(c class) bool { return c.block == count })
		}
		for _, r := range letters {
			id, ok := l.names[strconv.Itoa(count)+string(r)]
			if !ok {
				return nil, fmt.Errorf("transitions %q: no transition %d%c", s, count, r)
			}
			if negate {
				delete(t, id)
			} else {
				t[id] = struct{}{}
			}
		}
	}
	return t, nil
}

// parseDouble reads names and totalistic blocks. A negated block "nx-"
// removes the names that follow it while their live count is n.
func (l *Lookup) parseDouble(s string, matches [][]int) (Transitions, error) {
	t := make(Transitions)
	negated := -1
	for _, m := range matches {
		if m[6] >= 0 {
			total, _ := strconv.Atoi(s[m[6]:m[7]])
			if total > len(l.cells) {
				return nil, fmt.Errorf("transitions %q: %dx exceeds %d cells", s, total, len(l.cells))
			}
			l.addWhere(t, func(c class) bool { return c.count == total })
			negated = -1
			if m[9] > m[8] {
				negated = total
			}
			continue
		}
		digit := s[m[2]:m[3]]
		pairs := s[m[4]:m[5]]
		for k := 0; k+1 < len(pairs); k += 2 {
			name := digit + pairs[k:k+2]
			id, ok := l.names[name]
			if !ok {
				return nil, fmt.Errorf("transitions %q: no transition %s", s, name)
			}
			if negated >= 0 && l.classes[id].count == negated {
				delete(t, id)
				continue
			}
			negated = -1
			t[id] = struct{}{}
		}
	}
	return t, nil
}

// Format renders t canonically.
func (l *Lookup) Format(t Transitions) string {
	if l.double {
		return l.formatDouble(t)
	}
	return l.formatSingle(t)
}

// formatSingle writes each count once: bare when every letter is present,
// negated when more than half are, listed otherwise.
func (l *Lookup) formatSingle(t Transitions) string {
	var b strings.Builder
	for count := 0; count <= len(l.cells); count++ {
		var present, missing []string
		for i, c := range l.classes {
			if c.block != count {
				continue
			}
			if t.Has(i) {
				present = append(present, c.letters)
			} else {
				missing = append(missing, c.letters)
			}
		}
		all := len(present) + len(missing)
		switch {
		case len(present) == 0:
		case len(missing) == 0:
			b.WriteString(strconv.Itoa(count))
		case len(present) > all/2:
			fmt.Fprintf(&b, "%d-%s", count, strings.Join(missing, ""))
		default:
			fmt.Fprintf(&b, "%d%s", count, strings.Join(present, ""))
		}
	}
	return b.String()
}

// formatDouble writes a totalistic block "nx" when every configuration
// with n live cells is present and "nx-" plus the missing names when more
// than half are. The remaining names are grouped by their leading digit.
func (l *Lookup) formatDouble(t Transitions) string {
	type block struct {
		number int
		text   string
	}
	var blocks []block
	handled := make([]bool, len(l.classes))
	for total := 0; total <= len(l.cells); total++ {
		present, all := 0, 0
		var missing []int
		for i, c := range l.classes {
			if c.count != total {
				continue
			}
			all += c.size
			if t.Has(i) {
				present += c.size
			} else {
				missing = append(missing, i)
			}
		}
		if present == 0 || present <= all/2 {
			continue
		}
		text := strconv.Itoa(total) + "x"
		if len(missing) > 0 {
			text += "-" + l.groupNames(missing)
		}
		blocks = append(blocks, block{total, text})
		for i, c := range l.classes {
			if c.count == total {
				handled[i] = true
			}
		}
	}

	byDigit := make(map[int][]int)
	for _, i := range t.Sorted() {
		if !handled[i] {
			byDigit[l.classes[i].block] = append(byDigit[l.classes[i].block], i)
		}
	}
	for digit, ids := range byDigit {
		blocks = append(blocks, block{digit, l.groupNames(ids)})
	}
	slices.SortFunc(blocks, func(a, b block) int {
		if a.number != b.number {
			return a.number - b.number
		}
		return strings.Compare(a.text, b.text)
	})

	var b strings.Builder
	for _, bl := range blocks {
		b.WriteString(bl.text)
	}
	return b.String()
}

// groupNames writes sorted class names, printing each leading digit once.
func (l *Lookup) groupNames(ids []int) string {
	slices.Sort(ids)
	var b strings.Builder
	digit := -1
	for _, i := range ids {
		c := l.classes[i]
		if c.block != digit {
			b.WriteString(strconv.Itoa(c.block))
			digit = c.block
		}
		b.WriteString(c.letters)
	}
	return b.String()
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

func (r *randomiser) between(minSet, maxSet Transitions) Transitions {
	out := minSet.Clone()
	for _, i := range maxSet.Sorted() {
		if !minSet.Has(i) && r.rng.IntN(1000) > r.threshold {
			out[i] = struct{}{}
		}
	}
	return out
}
