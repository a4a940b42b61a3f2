package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/agridoc/internal/document"
)

// Markdown writes doc back as marker text. Parsing the result with the same
// parser options yields an equal Document: headings keep their marker or
// bold form, paragraph runs are rejoined with "**", ordered items are
// renumbered from 1, and blocks are separated by blank lines so adjacent
// lists of the same kind stay apart.
func Markdown(doc document.Document) string {
	return markers(doc, false)
}

// commonMark is Markdown for a CommonMark renderer: bold-line headings are
// written as "### " and literal text is escaped so that only the Document's
// own structure is rendered.
func commonMark(doc document.Document) string {
	return markers(doc, true)
}

// commonMarkPunct holds the characters that can start CommonMark syntax
// anywhere in a line.
const commonMarkPunct = "\\`*_[]<>#+-!|~&"

var orderedStart = regexp.MustCompile(`^(\d+)([.)])`)

// escapeCommonMark backslash-escapes s so it renders as written. At the
// start of a block, leading indentation is dropped and a "1." or "1)" prefix
// is escaped too.
func escapeCommonMark(s string, blockStart bool) string {
	if blockStart {
		s = strings.TrimLeft(s, " \t")
	}
	var sb strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf && strings.ContainsRune(commonMarkPunct, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	out := sb.String()
	if blockStart {
		out = orderedStart.ReplaceAllString(out, `$1\$2`)
	}
	return out
}

func markers(doc document.Document, escape bool) string {
	lit := func(s string, blockStart bool) string {
		if !escape {
			return s
		}
		return escapeCommonMark(s, blockStart)
	}
	parts := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindHeading:
			h := b.Heading
			if h.FromBold && !escape {
				parts = append(parts, "**"+h.Text+"**")
				continue
			}
			marker := "## "
			if h.Level == 3 {
				marker = "### "
			}
			parts = append(parts, marker+lit(h.Text, true))
		case document.KindParagraph:
			var sb strings.Builder
			for i, r := range b.Paragraph.Runs {
				if r.Kind == document.RunBold {
					sb.WriteString("**" + lit(r.Value, false) + "**")
					continue
				}
				sb.WriteString(lit(r.Value, i == 0))
			}
			parts = append(parts, sb.String())
		case document.KindList:
			lines := make([]string, len(b.List.Items))
			for i, item := range b.List.Items {
				if b.List.Ordered {
					lines[i] = fmt.Sprintf("%d. %s", i+1, lit(item, true))
				} else {
					lines[i] = "* " + lit(item, true)
				}
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}
