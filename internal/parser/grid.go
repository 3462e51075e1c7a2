package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// findHeader locates the column-header row of a grid and maps column
// index to role via the bank's synonym table. A header needs a date
// column plus at least one amount-bearing column to count.
func findHeader(grid [][]string, synonyms map[string]models.ColumnRole) (map[int]models.ColumnRole, int) {
	for rowIdx, row := range grid {
		cols := make(map[int]models.ColumnRole)
		for i, cell := range row {
			if role, ok := synonyms[normalizeHeader(cell)]; ok {
				cols[i] = role
			}
		}
		if !hasRole(cols, models.RoleDate) {
			continue
		}
		if hasRole(cols, models.RoleAmount) || hasRole(cols, models.RoleDebit) ||
			hasRole(cols, models.RoleMoneyIn) || hasRole(cols, models.RoleMoneyOut) {
			return cols, rowIdx
		}
	}
	return nil, -1
}

func hasRole(cols map[int]models.ColumnRole, role models.ColumnRole) bool {
	for _, r := range cols {
		if r == role {
			return true
		}
	}
	return false
}

// presentRoles reports which roles a header mapped, for variant
// resolution.
func presentRoles(cols map[int]models.ColumnRole) map[models.ColumnRole]bool {
	present := make(map[models.ColumnRole]bool, len(cols))
	for _, r := range cols {
		present[r] = true
	}
	return present
}

// walkGrid converts the data rows below a header into raw rows. It
// tolerates blank description cells and appends continuation rows
// (description-only wrap lines) to the previous row. Ragged rows whose
// cell count no longer lines up with the header are skipped with a
// reason so the text-fallback pass can recover them.
func walkGrid(grid [][]string, cols map[int]models.ColumnRole, headerIdx int, variant models.FormatVariant) ([]models.RawRow, []models.SkippedRow) {
	var rows []models.RawRow
	var skipped []models.SkippedRow

	dateIdx := -1
	for i, role := range cols {
		if role == models.RoleDate {
			dateIdx = i
		}
	}

	for _, cells := range grid[headerIdx+1:] {
		rawText := strings.TrimSpace(strings.Join(cells, "  "))
		if rawText == "" {
			continue
		}

		hasDate := dateIdx < len(cells) && extractDate(cells[dateIdx]) != ""
		if !hasDate {
			// Wrapped description continuation: no date, no amounts.
			if len(rows) > 0 && !rowHasAmountCell(cells) && !isSummaryLine(rawText) {
				last := &rows[len(rows)-1]
				desc := strings.TrimSpace(last.Fields[models.RoleDescription] + " " + rawText)
				last.Fields[models.RoleDescription] = desc
				last.RawText += " " + rawText
				continue
			}
			if isSummaryLine(rawText) {
				continue
			}
			skipped = append(skipped, models.SkippedRow{RawText: rawText, Reason: "no date found"})
			continue
		}

		width := gridWidth(grid, headerIdx)
		if len(cells) > width {
			// Description split across extra cells at a layout gap; merge
			// them back until the row lines up with the header again.
			// Copy first: pages are shared, read-only input.
			cells = mergeExtraCells(append([]string(nil), cells...), descColumn(cols), width)
		}
		if len(cells) < width {
			// An empty cell collapsed away during extraction; which column
			// vanished is ambiguous, so let the text fallback recover it.
			skipped = append(skipped, models.SkippedRow{RawText: rawText, Reason: "column misalignment"})
			continue
		}

		fields := make(map[models.ColumnRole]string)
		for i, role := range cols {
			if i < len(cells) {
				fields[role] = strings.TrimSpace(cells[i])
			}
		}
		fields[models.RoleDate] = extractDate(cells[dateIdx])

		if !rowHasAmountField(fields) {
			skipped = append(skipped, models.SkippedRow{RawText: rawText, Reason: "no amount field"})
			continue
		}

		rows = append(rows, models.RawRow{
			Fields:     fields,
			Variant:    variant,
			RawText:    rawText,
			Provenance: models.ProvenanceTable,
		})
	}
	return rows, skipped
}

func gridWidth(grid [][]string, headerIdx int) int {
	return len(grid[headerIdx])
}

func descColumn(cols map[int]models.ColumnRole) int {
	for i, role := range cols {
		if role == models.RoleDescription {
			return i
		}
	}
	return 1
}

// mergeExtraCells joins surplus cells into the description column until
// the row is `width` cells wide again.
func mergeExtraCells(cells []string, descIdx, width int) []string {
	for len(cells) > width && descIdx+1 < len(cells) {
		cells[descIdx] = strings.TrimSpace(cells[descIdx] + " " + cells[descIdx+1])
		cells = append(cells[:descIdx+1], cells[descIdx+2:]...)
	}
	return cells
}

func rowHasAmountCell(cells []string) bool {
	for _, c := range cells {
		if isAmountCell(c) {
			return true
		}
	}
	return false
}

func rowHasAmountField(fields map[models.ColumnRole]string) bool {
	for _, role := range []models.ColumnRole{
		models.RoleAmount, models.RoleDebit, models.RoleCredit,
		models.RoleMoneyIn, models.RoleMoneyOut, models.RoleFee,
	} {
		if strings.TrimSpace(fields[role]) != "" {
			return true
		}
	}
	return false
}
