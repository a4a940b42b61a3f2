// Package render writes a document.Document in the formats the service and
// CLI offer: JSON, YAML, HTML, canonical marker text, plain text and ANSI
// terminal output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/agridoc/internal/document"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatTerminal Format = "terminal"
)

var formatAliases = map[string]Format{
	"json":     FormatJSON,
	"yaml":     FormatYAML,
	"yml":      FormatYAML,
	"html":     FormatHTML,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"text":     FormatText,
	"txt":      FormatText,
	"terminal": FormatTerminal,
	"ansi":     FormatTerminal,
}

// ParseFormat resolves a format name or alias. The empty string is JSON.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatJSON, nil
	}
	f, ok := formatAliases[s]
	if !ok {
		return "", fmt.Errorf("unknown format %q", s)
	}
	return f, nil
}

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Options tunes terminal output.
type Options struct {
	Width int    // word wrap column; 0 uses DefaultWidth
	Style string // glamour standard style name; "" uses "notty"
}

// Render writes doc to w in format f.
func Render(w io.Writer, doc document.Document, f Format, opts Options) error {
	switch f {
	case FormatJSON:
		return JSON(w, doc)
	case FormatYAML:
		return YAML(w, doc)
	case FormatHTML:
		return HTML(w, doc)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case FormatText:
		_, err := io.WriteString(w, doc.PlainText())
		return err
	case FormatTerminal:
		out, err := Terminal(doc, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}

// JSON writes doc as indented JSON.
func JSON(w io.Writer, doc document.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes doc as YAML.
func YAML(w io.Writer, doc document.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
