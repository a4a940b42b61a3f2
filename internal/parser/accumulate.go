package parser

import (
	"strings"

	"github.com/dgallion1/agridoc/internal/document"
)

// pendingList is the list run currently being collected. A list with no
// items is closed.
type pendingList struct {
	ordered bool
	items   []string
}

// accumulator is the whole parse state. It is threaded through the line loop
// by value; step returns the next state.
type accumulator struct {
	blocks  []document.Block
	pending pendingList
	inline  bool
}

func newAccumulator(opts Options) accumulator {
	return accumulator{blocks: make([]document.Block, 0), inline: opts.InlineBold}
}

// flush emits the open list run, if any, and closes it.
func (a accumulator) flush() accumulator {
	if len(a.pending.items) > 0 {
		a.blocks = append(a.blocks, document.NewList(a.pending.ordered, a.pending.items...))
	}
	a.pending = pendingList{}
	return a
}

func (a accumulator) step(l Line) accumulator {
	switch l.Kind {
	case LineHeading, LineBoldHeading:
		a = a.flush()
		if strings.TrimSpace(l.Content) != "" {
			a.blocks = append(a.blocks, document.NewHeading(l.Level, l.Content, l.Kind == LineBoldHeading))
		}
	case LineOrderedItem, LineUnorderedItem:
		ordered := l.Kind == LineOrderedItem
		if len(a.pending.items) == 0 || a.pending.ordered != ordered {
			a = a.flush()
			a.pending.ordered = ordered
		}
		a.pending.items = append(a.pending.items, l.Content)
	case LineBlank:
		a = a.flush()
	case LineText:
		a = a.flush()
		runs := []document.InlineRun{document.Text(l.Content)}
		if a.inline {
			// A line of only whitespace-bold spans would leave no visible
			// text; such lines keep their markers literally.
			if r := Emphasis(l.Content); hasVisibleText(r) {
				runs = r
			}
		}
		a.blocks = append(a.blocks, document.NewParagraph(runs...))
	}
	return a
}

func hasVisibleText(runs []document.InlineRun) bool {
	for _, r := range runs {
		if strings.TrimSpace(r.Value) != "" {
			return true
		}
	}
	return false
}

func (a accumulator) document() document.Document {
	a = a.flush()
	return document.Document{Blocks: a.blocks}
}
