package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor handles CSV files. The header row names the columns; each data
// row becomes a "### Row N" heading followed by "* header: cell" items. A file
// with a single column renders as one list.
type CSVExtractor struct{}

func (e *CSVExtractor) Extract(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	rows := records[1:]

	var w markerWriter
	if len(headers) == 1 {
		w.heading(2, headers[0])
		for _, row := range rows {
			if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
				w.item(false, 0, row[0])
			}
		}
		return w.String(), nil
	}

	for i, row := range rows {
		w.blank()
		w.heading(3, fmt.Sprintf("Row %d", i+2)) // 1-indexed, skip header
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
				w.item(false, 0, bold(headers[j]+":")+" "+cell)
			} else {
				w.item(false, 0, cell)
			}
		}
	}
	return w.String(), nil
}
