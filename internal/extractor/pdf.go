package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// columnGap is the horizontal distance (in PDF points) between two text
// items that we treat as a column boundary when rebuilding table grids.
const columnGap = 15.0

// extractPDFText reads the digital text layer of a PDF and returns one
// ExtractedPage per readable page. Pages that cannot be read or yield no
// text become warnings, never silent gaps. Cancellation is cooperative
// at page granularity: an expired deadline surfaces as
// ErrExtractionTimeout even mid-document.
func extractPDFText(ctx context.Context, data []byte) (pages []models.ExtractedPage, warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	if err := checkContext(ctx); err != nil {
		return nil, nil, err
	}

	r, openErr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if openErr != nil {
		return nil, nil, fmt.Errorf("opening pdf: %w", openErr)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, nil, fmt.Errorf("pdf has no pages")
	}

	for i := 1; i <= numPages; i++ {
		if err := checkContext(ctx); err != nil {
			return nil, warnings, fmt.Errorf("%w: pdf parsing stopped at page %d of %d", err, i, numPages)
		}

		page := r.Page(i)
		if page.V.IsNull() {
			warnings = append(warnings, fmt.Sprintf("page %d could not be read", i))
			continue
		}
		extracted := extractPageContent(page, i-1)
		if len(extracted.Lines) == 0 {
			// Coordinate pass found nothing; try the library's row grouping.
			var rowErr error
			extracted, rowErr = extractPageByRow(page, i-1)
			if rowErr != nil {
				warnings = append(warnings, fmt.Sprintf("page %d could not be read: %v", i, rowErr))
				continue
			}
		}
		if len(extracted.Lines) == 0 {
			warnings = append(warnings, fmt.Sprintf("page %d produced no text", i))
			continue
		}
		pages = append(pages, extracted)
	}

	return pages, warnings, nil
}

// checkContext maps an expired deadline to the timeout sentinel.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.ErrExtractionTimeout
		}
		return err
	}
	return nil
}

// extractPageContent rebuilds rows from raw text coordinates: items are
// grouped by Y, ordered by X, and split into cells at large X gaps. This
// yields the table grid the per-bank extractors work from.
func extractPageContent(page pdf.Page, index int) models.ExtractedPage {
	out := models.ExtractedPage{Index: index}

	content := page.Content()
	if len(content.Text) == 0 {
		return out
	}

	type textItem struct {
		x float64
		s string
	}
	rowMap := make(map[int][]textItem)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
	}

	// PDF Y runs bottom-to-top, so rows come out top-first when reversed.
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var grid [][]string
	for _, y := range yKeys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

		var cells []string
		var cell strings.Builder
		var prevEnd float64
		for j, item := range items {
			if j > 0 && item.x-prevEnd > columnGap {
				cells = append(cells, strings.TrimSpace(cell.String()))
				cell.Reset()
			}
			cell.WriteString(item.s)
			prevEnd = item.x + approxWidth(item.s)
		}
		if cell.Len() > 0 {
			cells = append(cells, strings.TrimSpace(cell.String()))
		}

		line := strings.TrimSpace(strings.Join(cells, "  "))
		if line == "" {
			continue
		}
		out.Lines = append(out.Lines, line)
		grid = append(grid, cells)
	}
	if len(grid) > 0 {
		out.Grids = append(out.Grids, grid)
	}
	return out
}

// extractPageByRow falls back to the library's own row grouping, which
// loses column boundaries but still produces usable lines.
func extractPageByRow(page pdf.Page, index int) (models.ExtractedPage, error) {
	out := models.ExtractedPage{Index: index}

	rows, err := page.GetTextByRow()
	if err != nil {
		return out, fmt.Errorf("reading text rows: %w", err)
	}
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			out.Lines = append(out.Lines, line)
		}
	}
	return out, nil
}

// approxWidth estimates rendered width of a text run. The pdf library
// reports item origin only, so a rough per-glyph width is enough to
// decide whether the next item starts a new column.
func approxWidth(s string) float64 {
	return float64(len(s)) * 5.0
}

// textQuality returns the ratio of plain readable characters to total.
// Strict ASCII on purpose: identity-encoded fonts produce garbage that
// still passes broad unicode letter checks.
func textQuality(pages []models.ExtractedPage) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, line := range page.Lines {
			for _, r := range line {
				total++
				if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
					(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
					strings.ContainsRune(".,-/:;()'\"R$%&@#!?+=*\t", r) {
					readable++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// statementWords appear in virtually every bank statement, in either
// statement language. Text containing none of them is likely garbage.
var statementWords = []string{
	"bank", "account", "rekening", "balance", "balans", "date", "datum",
	"statement", "staat", "amount", "bedrag", "credit", "krediet",
	"debit", "debiet", "money", "geld", "fee", "fooi", "transaction",
	"transaksie", "opening", "closing", "transfer", "payment", "page",
}

func containsStatementWords(pages []models.ExtractedPage) bool {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(strings.Join(p.Lines, " "))
		b.WriteString(" ")
	}
	combined := strings.ToLower(b.String())
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText gates the digital path: enough text, mostly readable
// characters, and at least one recognizable statement word. Anything
// below the bar escalates to the OCR path.
func isReadableText(pages []models.ExtractedPage) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsStatementWords(pages)
}

func totalTextLen(pages []models.ExtractedPage) int {
	n := 0
	for _, p := range pages {
		for _, line := range p.Lines {
			n += len(strings.TrimSpace(line))
		}
	}
	return n
}
