package extractor

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// extractCSV reads a CSV statement export as a single page whose grid is
// the record matrix. Lines are the records re-joined with a double-space
// column separator so the text-fallback pass and the detector see the
// same shape they would from a PDF.
func extractCSV(data []byte) ([]models.ExtractedPage, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if delim := sniffDelimiter(data); delim != 0 {
		r.Comma = delim
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnparsableDocument, err)
	}

	page := models.ExtractedPage{Index: 0}
	var grid [][]string
	for _, rec := range records {
		var cells []string
		for _, c := range rec {
			cells = append(cells, strings.TrimSpace(c))
		}
		line := strings.TrimSpace(strings.Join(cells, "  "))
		if line == "" {
			continue
		}
		page.Lines = append(page.Lines, line)
		grid = append(grid, cells)
	}
	if len(grid) > 0 {
		page.Grids = append(page.Grids, grid)
	}
	return []models.ExtractedPage{page}, nil
}

// sniffDelimiter picks the separator used by the export. Bank CSVs come
// comma- or semicolon-delimited depending on locale settings.
func sniffDelimiter(data []byte) rune {
	head := data
	if idx := bytes.IndexByte(data, '\n'); idx > 0 {
		head = data[:idx]
	}
	semis := bytes.Count(head, []byte{';'})
	commas := bytes.Count(head, []byte{','})
	switch {
	case semis > commas:
		return ';'
	case commas > 0:
		return ','
	}
	return 0
}

// looksLikeCSV is a cheap content sniff for uploads with no usable
// filename hint.
func looksLikeCSV(data []byte) bool {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return false
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	return bytes.IndexByte(head, ',') >= 0 || bytes.IndexByte(head, ';') >= 0
}
