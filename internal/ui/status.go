// Package ui draws the viewer's side panel and the debugging overlays.
package ui

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"casearch/internal/core"
	"casearch/internal/patterns"
	"casearch/internal/rules"
)

// Status is what the panel shows about the running simulation.
type Status struct {
	Rule       rules.Rule
	Generation int
	Population int
	TPS        int
	Paused     bool
	// Result is the last identification, if any.
	Result  *patterns.Pattern
	Message string
}

// Style selects how a panel line is drawn.
type Style int

const (
	Normal Style = iota
	Heading
	Dim
)

// Line is one line of panel text.
type Line struct {
	Text  string
	Style Style
}

var help = []string{
	"space pause  n step",
	"r reset  s soup",
	"i identify  arrows pan",
	"1 border  2 frontier",
	"3 changes  q quit",
}

// Lines lays out st as panel text at most cols characters wide.
func Lines(st Status, cols int) []Line {
	var out []Line
	add := func(text string, style Style) {
		for _, s := range wrap(text, cols) {
			out = append(out, Line{Text: s, Style: style})
		}
	}
	blank := func() { out = append(out, Line{}) }

	if st.Rule != nil {
		add(st.Rule.Name(), Heading)
		add(st.Rule.Rulestring(), Normal)
		if d, ok := st.Rule.(core.Describer); ok {
			for _, group := range d.Describe().Groups {
				blank()
				add(group.Name, Heading)
				if group.Summary != "" {
					add(group.Summary, Dim)
				}
				for _, p := range group.Params {
					add(p.Label+": "+p.Value, Normal)
				}
			}
		}
		blank()
	}

	pr := message.NewPrinter(language.English)
	add(pr.Sprintf("Generation %d", st.Generation), Normal)
	add(pr.Sprintf("Population %d", st.Population), Normal)
	speed := fmt.Sprintf("Speed %d tps", st.TPS)
	if st.Paused {
		speed += " (paused)"
	}
	add(speed, Normal)

	if st.Result != nil {
		blank()
		add("Identified", Heading)
		add(st.Result.String(), Normal)
		for _, f := range st.Result.Info() {
			add(f.Name+": "+f.Value, Normal)
		}
	}
	if st.Message != "" {
		blank()
		add(st.Message, Dim)
	}

	blank()
	for _, h := range help {
		add(h, Dim)
	}
	return out
}

// wrap breaks s into lines of at most cols characters, at spaces where it
// can.
func wrap(s string, cols int) []string {
	if cols <= 0 || len(s) <= cols {
		return []string{s}
	}
	var out []string
	line := ""
	for _, word := range strings.Fields(s) {
		for len(word) > cols {
			if line != "" {
				out = append(out, line)
				line = ""
			}
			out = append(out, word[:cols])
			word = word[cols:]
		}
		switch {
		case word == "":
		case line == "":
			line = word
		case len(line)+1+len(word) <= cols:
			line += " " + word
		default:
			out = append(out, line)
			line = word
		}
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}
