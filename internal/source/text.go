package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextExtractor passes plain text through line by line. Trailing whitespace
// is trimmed and runs of blank lines collapse to one.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var w markerWriter
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			w.blank()
			continue
		}
		w.line(line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return w.String(), nil
}
