package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. Heading styles become heading markers,
// list paragraph styles become "* " items, and bold runs become bold spans.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(r io.Reader, filename string) (string, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "agridoc-docx-*.docx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return "", fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var w markerWriter
	inList := false
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		style := docxStyle(para)
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		if isDocxList(style) {
			if !inList {
				w.blank()
			}
			inList = true
			w.item(false, 0, text)
			continue
		}
		if inList {
			w.blank()
			inList = false
		}

		if level := docxHeadingLevel(style); level > 0 {
			w.blank()
			w.heading(level, strings.ReplaceAll(text, "**", ""))
			w.blank()
			continue
		}
		w.paragraph(text)
		w.blank()
	}
	return w.String(), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

// docxHeadingLevel reads "Heading1".."Heading6" and "Title" styles,
// normalised by docxStyle.
func docxHeadingLevel(style string) int {
	if style == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

func isDocxList(style string) bool {
	return strings.HasPrefix(style, "listparagraph") || strings.HasPrefix(style, "listbullet")
}

// docxParagraphText joins the paragraph's runs, wrapping bold runs in bold
// markers.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var rb strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				rb.WriteString(t.Text)
			}
		}
		if runIsBold(run) {
			// Keep the run's surrounding spaces outside the markers.
			s := rb.String()
			lead := s[:len(s)-len(strings.TrimLeft(s, " "))]
			trail := s[len(strings.TrimRight(s, " ")):]
			if strings.TrimSpace(s) != "" {
				buf.WriteString(lead + bold(s) + trail)
			} else {
				buf.WriteString(s)
			}
			continue
		}
		buf.WriteString(rb.String())
	}
	return strings.TrimSpace(strings.ReplaceAll(buf.String(), "****", ""))
}

func runIsBold(run *docx.Run) bool {
	return run.RunProperties != nil && run.RunProperties.Bold != nil
}
