package parser

import (
	"strings"

	"github.com/dgallion1/agridoc/internal/document"
)

const boldMarker = "**"

// Emphasis splits a plain-text line into runs, turning each non-overlapping
// "**content**" into a Bold run. Content may not contain "**". Empty markers
// ("****") and unterminated markers stay literal text; whitespace-only
// content ("** **") is still a Bold run.
func Emphasis(line string) []document.InlineRun {
	var runs []document.InlineRun
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			runs = append(runs, document.Text(plain.String()))
			plain.Reset()
		}
	}

	rest := line
	for {
		open := strings.Index(rest, boldMarker)
		if open < 0 {
			plain.WriteString(rest)
			break
		}
		after := rest[open+len(boldMarker):]
		closeIdx := strings.Index(after, boldMarker)
		if closeIdx < 0 {
			plain.WriteString(rest)
			break
		}
		content := after[:closeIdx]
		if content == "" {
			// Keep the opening marker literal and let the closing one
			// start the next span.
			plain.WriteString(rest[:open+len(boldMarker)])
			rest = after
			continue
		}
		plain.WriteString(rest[:open])
		flushPlain()
		runs = append(runs, document.Bold(content))
		rest = after[closeIdx+len(boldMarker):]
	}
	flushPlain()
	return runs
}
