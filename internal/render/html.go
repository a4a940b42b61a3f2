package render

import (
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"

	"github.com/dgallion1/agridoc/internal/document"
)

var htmlRenderer = goldmark.New().Renderer()

// HTML writes doc as an HTML fragment. Headings map to h2/h3, paragraphs to
// p with strong runs, lists to ol/ul. All text is escaped.
func HTML(w io.Writer, doc document.Document) error {
	if err := htmlRenderer.Render(w, nil, Tree(doc)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Tree converts doc into a goldmark AST whose text nodes carry their own
// values, so it renders without a source buffer.
func Tree(doc document.Document) *ast.Document {
	root := ast.NewDocument()
	for _, b := range doc.Blocks {
		switch b.Kind {
		case document.KindHeading:
			h := ast.NewHeading(b.Heading.Level)
			h.AppendChild(h, rawString(b.Heading.Text))
			root.AppendChild(root, h)
		case document.KindParagraph:
			p := ast.NewParagraph()
			for _, r := range b.Paragraph.Runs {
				if r.Kind == document.RunBold {
					em := ast.NewEmphasis(2)
					em.AppendChild(em, rawString(r.Value))
					p.AppendChild(p, em)
					continue
				}
				p.AppendChild(p, rawString(r.Value))
			}
			root.AppendChild(root, p)
		case document.KindList:
			marker := byte('*')
			if b.List.Ordered {
				marker = '.'
			}
			l := ast.NewList(marker)
			if b.List.Ordered {
				l.Start = 1
			}
			for _, item := range b.List.Items {
				li := ast.NewListItem(2)
				tb := ast.NewTextBlock()
				tb.AppendChild(tb, rawString(item))
				li.AppendChild(li, tb)
				l.AppendChild(l, li)
			}
			root.AppendChild(root, l)
		}
	}
	return root
}

// rawString is escaped for HTML but otherwise written verbatim; backslashes
// are not treated as markdown escapes.
func rawString(s string) *ast.String {
	n := ast.NewString([]byte(s))
	n.SetRaw(true)
	return n
}
