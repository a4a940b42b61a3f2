package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor normalises CommonMark into marker text using goldmark:
// "-"/"+" bullets become "* ", "1)" becomes "1. ", "__b__" becomes "**b**",
// setext and ATX headings of any rank map to "## " or "### ". Nested lists are
// flattened and code blocks are kept line by line.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var w markerWriter
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		writeMarkdownBlock(&w, n, src)
	}
	return w.String(), nil
}

func writeMarkdownBlock(w *markerWriter, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		w.blank()
		w.heading(node.Level, inlineMarkdown(node, src))
		w.blank()
	case *ast.Paragraph, *ast.TextBlock:
		w.paragraph(inlineMarkdown(node, src))
		w.blank()
	case *ast.List:
		w.blank()
		writeMarkdownList(w, node, src)
		w.blank()
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			writeMarkdownBlock(w, c, src)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if l := strings.TrimRight(string(seg.Value(src)), " \t\r\n"); l != "" {
				w.line(l)
			}
		}
		w.blank()
	case *ast.ThematicBreak, *ast.HTMLBlock:
		w.blank()
	}
}

func writeMarkdownList(w *markerWriter, list *ast.List, src []byte) {
	n := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		var nested []*ast.List
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			if t := inlineMarkdown(c, src); t != "" {
				parts = append(parts, t)
			}
		}
		w.item(list.IsOrdered(), n, strings.Join(parts, " "))
		n++
		for _, sub := range nested {
			writeMarkdownList(w, sub, src)
		}
	}
}

// inlineMarkdown renders the inline children of n back to marker text.
// Strong emphasis keeps its "**" markers, everything else is flattened to
// its text.
func inlineMarkdown(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				buf.Write(node.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(node.Value)
			case *ast.Emphasis:
				if node.Level >= 2 {
					buf.WriteString(bold(inlineMarkdown(node, src)))
				} else {
					walk(node)
				}
			case *ast.AutoLink:
				buf.Write(node.URL(src))
			case *ast.RawHTML:
				// dropped
			default:
				walk(node)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
