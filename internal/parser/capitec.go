package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// CapitecExtractor handles Capitec statement layouts.
//
// Variant capitec-money-inout:
//
//	Date | Description | Money In | Money Out | Fee | Balance
//
// where Money Out and Fee already carry negative values in the source.
// Variant capitec-signed is the CSV export with one signed Amount column.
// Headers appear in English or Afrikaans depending on account settings.
type CapitecExtractor struct{}

func (e *CapitecExtractor) Bank() models.BankID { return models.BankCapitec }

var capitecHeaderSynonyms = map[string]models.ColumnRole{
	"date":            models.RoleDate,
	"datum":           models.RoleDate,
	"posting date":    models.RoleDate,
	"description":     models.RoleDescription,
	"beskrywing":      models.RoleDescription,
	"transaction":     models.RoleDescription,
	"money in":        models.RoleMoneyIn,
	"geld in":         models.RoleMoneyIn,
	"money out":       models.RoleMoneyOut,
	"geld uit":        models.RoleMoneyOut,
	"fee":             models.RoleFee,
	"fees":            models.RoleFee,
	"fooi":            models.RoleFee,
	"amount":          models.RoleAmount,
	"bedrag":          models.RoleAmount,
	"balance":         models.RoleBalance,
	"balans":          models.RoleBalance,
	"running balance": models.RoleBalance,
}

func (e *CapitecExtractor) ExtractRows(pages []models.ExtractedPage) ([]models.RawRow, []models.SkippedRow) {
	var rows []models.RawRow
	var skipped []models.SkippedRow

	for _, page := range pages {
		gotGrid := false
		for _, grid := range page.Grids {
			cols, headerIdx := findHeader(grid, capitecHeaderSynonyms)
			if cols == nil {
				continue
			}
			gotGrid = true
			variant := e.resolveVariant(presentRoles(cols))
			r, s := walkGrid(grid, cols, headerIdx, variant)
			rows = append(rows, r...)
			skipped = append(skipped, s...)
		}
		if !gotGrid {
			r, s := e.extractLines(page.Lines)
			rows = append(rows, r...)
			skipped = append(skipped, s...)
		}
	}
	return rows, skipped
}

// resolveVariant picks the layout from the column-roles the header
// actually mapped.
func (e *CapitecExtractor) resolveVariant(present map[models.ColumnRole]bool) models.FormatVariant {
	if present[models.RoleMoneyIn] && present[models.RoleMoneyOut] && present[models.RoleFee] {
		return models.VariantCapitecMoneyInOut
	}
	if present[models.RoleAmount] {
		return models.VariantCapitecSigned
	}
	return models.VariantCapitecMoneyInOut
}

// extractLines covers OCR output, where no table structure survives.
// Amount tokens are scanned from the right: four trailing amounts mean
// money-in/money-out/fee/balance, two mean a signed amount plus balance.
func (e *CapitecExtractor) extractLines(lines []string) ([]models.RawRow, []models.SkippedRow) {
	var rows []models.RawRow
	var skipped []models.SkippedRow

	for _, line := range lines {
		line = sanitizeOCRLine(normalizeLine(line))
		if line == "" || isSummaryLine(line) {
			continue
		}
		date := extractDate(line)
		if date == "" {
			// Wrapped OCR description lines attach to the previous row.
			if len(rows) > 0 && !amountTokenPattern.MatchString(line) {
				last := &rows[len(rows)-1]
				last.Fields[models.RoleDescription] += " " + line
				last.RawText += " " + line
			}
			continue
		}

		rest := strings.TrimSpace(line[strings.Index(line, date)+len(date):])
		tokens := amountTokenPattern.FindAllStringIndex(rest, -1)
		if len(tokens) < 2 {
			skipped = append(skipped, models.SkippedRow{RawText: line, Reason: "no amount field"})
			continue
		}
		desc := strings.TrimSpace(rest[:tokens[0][0]])

		fields := map[models.ColumnRole]string{
			models.RoleDate:        date,
			models.RoleDescription: desc,
		}
		variant := models.VariantCapitecSigned
		switch len(tokens) {
		case 4:
			variant = models.VariantCapitecMoneyInOut
			fields[models.RoleMoneyIn] = rest[tokens[0][0]:tokens[0][1]]
			fields[models.RoleMoneyOut] = rest[tokens[1][0]:tokens[1][1]]
			fields[models.RoleFee] = rest[tokens[2][0]:tokens[2][1]]
			fields[models.RoleBalance] = rest[tokens[3][0]:tokens[3][1]]
		default:
			fields[models.RoleAmount] = rest[tokens[len(tokens)-2][0]:tokens[len(tokens)-2][1]]
			fields[models.RoleBalance] = rest[tokens[len(tokens)-1][0]:tokens[len(tokens)-1][1]]
		}

		rows = append(rows, models.RawRow{
			Fields:     fields,
			Variant:    variant,
			RawText:    line,
			Provenance: models.ProvenanceTable,
		})
	}
	return rows, skipped
}
