// Package parser turns the informal markdown-like text produced by the
// generation backend into a document.Document.
//
// The grammar is line oriented: each line is classified on its own, list runs
// are collected across consecutive lines, and bold markers inside plain lines
// become inline runs. Parsing is total and has no shared state, so it is safe
// to call concurrently and to re-run on a growing string.
package parser

import (
	"sort"
	"strings"

	"github.com/dgallion1/agridoc/internal/document"
)

// Options selects which markers are honored. A disabled marker is treated as
// ordinary text.
type Options struct {
	Headings       bool // "# ", "## ", "### "
	BoldHeadings   bool // a line that is exactly one **bold** span
	OrderedLists   bool // "1. item"
	UnorderedLists bool // "* item"
	InlineBold     bool // **bold** inside plain lines
}

var (
	// Full honors every marker.
	Full = Options{Headings: true, BoldHeadings: true, OrderedLists: true, UnorderedLists: true, InlineBold: true}

	// QADialect matches community answers: bold lines as headings and
	// bulleted lists only.
	QADialect = Options{BoldHeadings: true, UnorderedLists: true}

	// InfoDialect matches topic explanations: heading markers, numbered
	// steps and inline bold.
	InfoDialect = Options{Headings: true, OrderedLists: true, InlineBold: true}

	// HistoryDialect matches saved history entries: everything except bold
	// lines as headings.
	HistoryDialect = Options{Headings: true, OrderedLists: true, UnorderedLists: true, InlineBold: true}
)

var dialects = map[string]Options{
	"full":    Full,
	"qa":      QADialect,
	"info":    InfoDialect,
	"history": HistoryDialect,
}

// DialectByName looks up a named dialect. The empty name is Full.
func DialectByName(name string) (Options, bool) {
	if name == "" {
		return Full, true
	}
	opts, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	return opts, ok
}

// DialectNames lists the known dialect names in sorted order.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse parses text with the full grammar.
func Parse(text string) document.Document {
	return ParseWith(text, Full)
}

// ParseWith parses text honoring only the markers enabled in opts. It never
// fails: malformed markers degrade to plain text.
func ParseWith(text string, opts Options) document.Document {
	acc := newAccumulator(opts)
	for _, line := range SplitLines(text) {
		acc = acc.step(Classify(line, opts))
	}
	return acc.document()
}

// SplitLines splits text on "\n" and drops a trailing "\r" from each line.
// The empty string yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
