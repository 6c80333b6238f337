package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"casearch/internal/core"
	"casearch/internal/rules"
)

// DefaultRule is used when neither a flag nor the pattern header names one.
const DefaultRule = "B3/S23"

var headerRe = regexp.MustCompile(`^x\s*=\s*(\d+)\s*,\s*y\s*=\s*(\d+)\s*(?:,\s*rule\s*=\s*(.*?)\s*)?$`)

// PatternFile is a parsed RLE file.
type PatternFile struct {
	Comments    []string
	Width       int
	Height      int
	Rule        string
	Grid        *core.Grid
	Provisional bool
}

// ParsePattern reads RLE text: optional #-comment lines, an optional
// "x = W, y = H, rule = R" header and the body.
func ParsePattern(r io.Reader) (*PatternFile, error) {
	pf := &PatternFile{}
	var body strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			pf.Comments = append(pf.Comments, line)
		case body.Len() == 0 && headerRe.MatchString(line):
			m := headerRe.FindStringSubmatch(line)
			pf.Width, _ = strconv.Atoi(m[1])
			pf.Height, _ = strconv.Atoi(m[2])
			pf.Rule = m[3]
		default:
			body.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pattern: %w", err)
	}
	if body.Len() == 0 {
		return nil, fmt.Errorf("pattern has no RLE body")
	}
	pf.Grid, pf.Provisional = core.FromRLE(body.String())
	return pf, nil
}

// readPattern parses the file named by args[0], or stdin when there are
// no args or the name is "-".
func readPattern(cmd *cobra.Command, args []string) (*PatternFile, error) {
	if len(args) == 0 || args[0] == "-" {
		return ParsePattern(cmd.InOrStdin())
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pf, err := ParsePattern(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return pf, nil
}

// resolveRule picks the rule from the flag, then the header, then the
// default.
func resolveRule(flag string, pf *PatternFile) (rules.Rule, error) {
	s := flag
	if s == "" && pf != nil {
		s = pf.Rule
	}
	if s == "" {
		s = DefaultRule
	}
	return rules.Parse(s)
}

// formatRLE renders g with a header under rule r.
func formatRLE(r rules.Rule, g *core.Grid) string {
	lo, hi, ok := g.Bounds()
	w, h := 0, 0
	if ok {
		w, h = hi.X-lo.X+1, hi.Y-lo.Y+1
	}
	return fmt.Sprintf("x = %d, y = %d, rule = %s\n%s\n", w, h, r.Rulestring(), g.ToRLE(r.NumStates()))
}

// parseCoordinate reads "x,y".
func parseCoordinate(s string) (core.Coordinate, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return core.Coordinate{}, fmt.Errorf("bad coordinate %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	return core.C(x, y), nil
}
