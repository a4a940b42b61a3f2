package source

import (
	"fmt"
	"strings"
	"testing"
)

func TestTextExtractor_PassThrough(t *testing.T) {
	input := "## Soil\n* loam\n* clay\n1. Dig\n**Tip**"
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestTextExtractor_EmptyInput(t *testing.T) {
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestTextExtractor_BlankRunsCollapse(t *testing.T) {
	// CRLF, trailing spaces, and whitespace-only lines are tidied.
	input := "Para one.  \r\n\r\n   \n\n\nPara two.\n"
	e := &TextExtractor{}
	got, err := e.Extract(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Para one.\n\nPara two."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "*source.TextExtractor"},
		{"a.MD", "*source.MarkdownExtractor"},
		{"a.markdown", "*source.MarkdownExtractor"},
		{"a.csv", "*source.CSVExtractor"},
		{"a.htm", "*source.HTMLExtractor"},
		{"a.pdf", "*source.PDFExtractor"},
		{"a.docx", "*source.DOCXExtractor"},
	}
	for _, tt := range tests {
		e, err := ForFile(tt.name, Options{})
		if err != nil {
			t.Fatalf("ForFile(%q): unexpected error: %v", tt.name, err)
		}
		if got := fmt.Sprintf("%T", e); got != tt.want {
			t.Errorf("ForFile(%q): expected %s, got %s", tt.name, tt.want, got)
		}
		if !IsSupportedExtension(tt.name) {
			t.Errorf("IsSupportedExtension(%q) = false", tt.name)
		}
	}

	if _, err := ForFile("image.png", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("image.png") {
		t.Error("expected .png to be unsupported")
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	e, err := ForFile("a.pdf", Options{PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := e.(*PDFExtractor); !p.FallbackPdftotext {
		t.Error("expected fallback to be enabled")
	}
}
