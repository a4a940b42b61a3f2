// Package document holds the structured result of parsing a reply.
package document

import (
	"fmt"
	"strings"
)

// BlockKind identifies which payload of a Block is set.
type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindParagraph BlockKind = "paragraph"
	KindList      BlockKind = "list"
)

// RunKind identifies an inline run as plain or emphasized text.
type RunKind string

const (
	RunText RunKind = "text"
	RunBold RunKind = "bold"
)

// Document is the ordered result of a single parse.
type Document struct {
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// Block is one structural unit of a Document. Exactly one payload is non-nil,
// matching Kind.
type Block struct {
	Kind      BlockKind  `json:"kind" yaml:"kind"`
	Heading   *Heading   `json:"heading,omitempty" yaml:"heading,omitempty"`
	Paragraph *Paragraph `json:"paragraph,omitempty" yaml:"paragraph,omitempty"`
	List      *List      `json:"list,omitempty" yaml:"list,omitempty"`
}

// Heading is a heading line. Level is 2 or 3; FromBold marks a line that was
// a single bold span rather than a "#" marker.
type Heading struct {
	Level    int    `json:"level" yaml:"level"`
	Text     string `json:"text" yaml:"text"`
	FromBold bool   `json:"from_bold,omitempty" yaml:"from_bold,omitempty"`
}

// Paragraph is one source line split into plain and bold runs.
type Paragraph struct {
	Runs []InlineRun `json:"runs" yaml:"runs"`
}

// List is a maximal run of same-kind list items, markers stripped.
type List struct {
	Ordered bool     `json:"ordered" yaml:"ordered"`
	Items   []string `json:"items" yaml:"items"`
}

// InlineRun is a contiguous span of paragraph text.
type InlineRun struct {
	Kind  RunKind `json:"kind" yaml:"kind"`
	Value string  `json:"value" yaml:"value"`
}

// Text returns a plain run.
func Text(v string) InlineRun { return InlineRun{Kind: RunText, Value: v} }

// Bold returns an emphasized run.
func Bold(v string) InlineRun { return InlineRun{Kind: RunBold, Value: v} }

// NewHeading builds a heading block.
func NewHeading(level int, text string, fromBold bool) Block {
	return Block{Kind: KindHeading, Heading: &Heading{Level: level, Text: text, FromBold: fromBold}}
}

// NewParagraph builds a paragraph block from runs.
func NewParagraph(runs ...InlineRun) Block {
	return Block{Kind: KindParagraph, Paragraph: &Paragraph{Runs: runs}}
}

// NewList builds a list block. The items slice is copied.
func NewList(ordered bool, items ...string) Block {
	cp := make([]string, len(items))
	copy(cp, items)
	return Block{Kind: KindList, List: &List{Ordered: ordered, Items: cp}}
}

// Len returns the number of blocks.
func (d Document) Len() int { return len(d.Blocks) }

// IsEmpty reports whether the document has no blocks.
func (d Document) IsEmpty() bool { return len(d.Blocks) == 0 }

// PlainText flattens the document to unformatted lines, one per heading,
// paragraph and list item. Used for previews and content hashing.
func (d Document) PlainText() string {
	var lines []string
	for _, b := range d.Blocks {
		switch b.Kind {
		case KindHeading:
			lines = append(lines, b.Heading.Text)
		case KindParagraph:
			var sb strings.Builder
			for _, r := range b.Paragraph.Runs {
				sb.WriteString(r.Value)
			}
			lines = append(lines, sb.String())
		case KindList:
			lines = append(lines, b.List.Items...)
		}
	}
	return strings.Join(lines, "\n")
}

// CountByKind returns how many blocks of each kind the document holds.
func (d Document) CountByKind() map[BlockKind]int {
	counts := make(map[BlockKind]int, 3)
	for _, b := range d.Blocks {
		counts[b.Kind]++
	}
	return counts
}

// Validate checks the structural invariants every parsed Document satisfies:
// payloads match their kind, headings and paragraphs carry visible text and
// lists are non-empty.
func (d Document) Validate() error {
	for i, b := range d.Blocks {
		switch b.Kind {
		case KindHeading:
			if b.Heading == nil || b.Paragraph != nil || b.List != nil {
				return fmt.Errorf("block %d: heading payload mismatch", i)
			}
			if b.Heading.Level != 2 && b.Heading.Level != 3 {
				return fmt.Errorf("block %d: heading level %d out of range", i, b.Heading.Level)
			}
			if strings.TrimSpace(b.Heading.Text) == "" {
				return fmt.Errorf("block %d: empty heading", i)
			}
		case KindParagraph:
			if b.Paragraph == nil || b.Heading != nil || b.List != nil {
				return fmt.Errorf("block %d: paragraph payload mismatch", i)
			}
			visible := false
			for _, r := range b.Paragraph.Runs {
				if strings.TrimSpace(r.Value) != "" {
					visible = true
					break
				}
			}
			if !visible {
				return fmt.Errorf("block %d: empty paragraph", i)
			}
		case KindList:
			if b.List == nil || b.Heading != nil || b.Paragraph != nil {
				return fmt.Errorf("block %d: list payload mismatch", i)
			}
			if len(b.List.Items) == 0 {
				return fmt.Errorf("block %d: empty list", i)
			}
		default:
			return fmt.Errorf("block %d: unknown kind %q", i, b.Kind)
		}
	}
	return nil
}
