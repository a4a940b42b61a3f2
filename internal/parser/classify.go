package parser

import (
	"regexp"
	"strings"
)

// LineKind is the classification assigned to a single source line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineText
	LineHeading
	LineBoldHeading
	LineOrderedItem
	LineUnorderedItem
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineText:
		return "text"
	case LineHeading:
		return "heading"
	case LineBoldHeading:
		return "bold_heading"
	case LineOrderedItem:
		return "ordered_item"
	case LineUnorderedItem:
		return "unordered_item"
	}
	return "unknown"
}

// Line is a classified source line. Content is the line with its marker
// stripped; for LineText it is the untouched line.
type Line struct {
	Kind    LineKind
	Level   int // 2 or 3 for headings, 0 otherwise
	Content string
}

// boldHeadingLevel is the rank given to a line made of one bold span.
const boldHeadingLevel = 3

var orderedMarkerRe = regexp.MustCompile(`^\d+\.\s`)

// Classify assigns one line (no trailing newline) to exactly one kind. Rules
// are tried in a fixed order and the first match wins: "### ", "## ", "# ",
// whole-line bold, "N. ", "* ", blank, plain text. A rule disabled in opts is
// skipped and the line falls through to the next one.
func Classify(line string, opts Options) Line {
	if opts.Headings {
		switch {
		case strings.HasPrefix(line, "### "):
			return Line{Kind: LineHeading, Level: 3, Content: line[4:]}
		case strings.HasPrefix(line, "## "):
			return Line{Kind: LineHeading, Level: 2, Content: line[3:]}
		case strings.HasPrefix(line, "# "):
			// Same rank as "## ".
			return Line{Kind: LineHeading, Level: 2, Content: line[2:]}
		}
	}

	if opts.BoldHeadings {
		if inner, ok := wholeLineBold(line); ok {
			return Line{Kind: LineBoldHeading, Level: boldHeadingLevel, Content: inner}
		}
	}

	if opts.OrderedLists {
		if m := orderedMarkerRe.FindString(line); m != "" {
			return Line{Kind: LineOrderedItem, Content: line[len(m):]}
		}
	}

	if opts.UnorderedLists && strings.HasPrefix(line, "* ") {
		return Line{Kind: LineUnorderedItem, Content: line[2:]}
	}

	if strings.TrimSpace(line) == "" {
		return Line{Kind: LineBlank}
	}
	return Line{Kind: LineText, Content: line}
}

// wholeLineBold reports whether the trimmed line is exactly one bold span and
// returns the text between the markers.
func wholeLineBold(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if len(t) < 4 || !strings.HasPrefix(t, boldMarker) || !strings.HasSuffix(t, boldMarker) {
		return "", false
	}
	inner := t[2 : len(t)-2]
	if strings.Contains(inner, boldMarker) || strings.TrimSpace(inner) == "" {
		return "", false
	}
	return inner, true
}
