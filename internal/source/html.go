package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor handles HTML files. h1/h2 become "## ", h3-h6 become "### ",
// list items keep their list kind, and <strong>/<b> become bold spans.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var w markerWriter
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			w.paragraph(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				w.blank()
				w.heading(level, textContent(n))
				w.blank()
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "ul", "ol":
				w.blank()
				writeHTMLList(&w, n)
				w.blank()
				return
			case "p", "td", "blockquote", "pre":
				w.paragraph(inlineHTML(n))
				w.blank()
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return w.String(), nil
}

func writeHTMLList(w *markerWriter, list *html.Node) {
	ordered := list.Data == "ol"
	n := 1
	if ordered {
		n = listStart(list)
	}
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var nested []*html.Node
		var buf strings.Builder
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			writeInlineHTML(&buf, c)
		}
		w.item(ordered, n, buf.String())
		n++
		for _, sub := range nested {
			writeHTMLList(w, sub)
		}
	}
}

func listStart(ol *html.Node) int {
	for _, a := range ol.Attr {
		if a.Key != "start" {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(a.Val, "%d", &n); err == nil && n >= 0 {
			return n
		}
	}
	return 1
}

// inlineHTML renders the text of n, wrapping strong and b elements in bold
// markers.
func inlineHTML(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInlineHTML(&buf, c)
	}
	return strings.TrimSpace(buf.String())
}

func writeInlineHTML(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "strong", "b":
			buf.WriteString(bold(collapseSpace(textContent(n))))
			return
		case "br":
			buf.WriteByte('\n')
			return
		case "script", "style":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInlineHTML(buf, c)
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
