// Package source turns uploaded files into the marker text understood by the
// parser: "## "/"### " headings, "* " and "1. " list items, and **bold**
// spans. Each format keeps as much of that structure as it can recover.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor converts raw file bytes into marker text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// Options tunes the extractors returned by ForFile.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF reader
	// cannot extract any text.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// markerWriter collects marker-text lines. blank ends the current block.
type markerWriter struct {
	b strings.Builder
}

func (w *markerWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *markerWriter) heading(level int, text string) {
	text = collapseSpace(text)
	if text == "" {
		return
	}
	w.line(headingMarker(level) + text)
}

func (w *markerWriter) paragraph(text string) {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			w.line(l)
		}
	}
}

func (w *markerWriter) item(ordered bool, n int, text string) {
	text = collapseSpace(text)
	if ordered {
		w.line(fmt.Sprintf("%d. %s", n, text))
		return
	}
	w.line("* " + text)
}

func (w *markerWriter) blank() {
	s := w.b.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	w.b.WriteByte('\n')
}

func (w *markerWriter) String() string {
	return strings.TrimRight(w.b.String(), "\n")
}

// headingMarker maps a 1-6 heading rank onto the two ranks the parser knows.
func headingMarker(level int) string {
	if level <= 2 {
		return "## "
	}
	return "### "
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func bold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "**") {
		return s
	}
	return "**" + s + "**"
}
