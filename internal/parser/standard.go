package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// StandardExtractor handles Standard Bank statement layouts.
//
// Variant standard-debit-credit:
//
//	Date | Description | Debit | Credit | Balance
//
// with bilingual Debiet/Krediet headers on Afrikaans statements.
// Variant standard-signed is the export with one signed amount column
// (debits may also appear with a trailing minus, e.g. "123.45-").
type StandardExtractor struct{}

func (e *StandardExtractor) Bank() models.BankID { return models.BankStandard }

var standardHeaderSynonyms = map[string]models.ColumnRole{
	"date":        models.RoleDate,
	"datum":       models.RoleDate,
	"description": models.RoleDescription,
	"details":     models.RoleDescription,
	"beskrywing":  models.RoleDescription,
	"debit":       models.RoleDebit,
	"debiet":      models.RoleDebit,
	"credit":      models.RoleCredit,
	"krediet":     models.RoleCredit,
	"amount":      models.RoleAmount,
	"bedrag":      models.RoleAmount,
	"balance":     models.RoleBalance,
	"balans":      models.RoleBalance,
}

func (e *StandardExtractor) ExtractRows(pages []models.ExtractedPage) ([]models.RawRow, []models.SkippedRow) {
	var rows []models.RawRow
	var skipped []models.SkippedRow

	for _, page := range pages {
		gotGrid := false
		for _, grid := range page.Grids {
			cols, headerIdx := findHeader(grid, standardHeaderSynonyms)
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

func (e *StandardExtractor) resolveVariant(present map[models.ColumnRole]bool) models.FormatVariant {
	if present[models.RoleDebit] && present[models.RoleCredit] {
		return models.VariantStandardDebCred
	}
	return models.VariantStandardSigned
}

// extractLines treats OCR output as the signed variant: tokens keep their
// leading or trailing minus, so the resolver can read the sign directly.
func (e *StandardExtractor) extractLines(lines []string) ([]models.RawRow, []models.SkippedRow) {
	var rows []models.RawRow
	var skipped []models.SkippedRow

	for _, line := range lines {
		line = sanitizeOCRLine(normalizeLine(line))
		if line == "" || isSummaryLine(line) {
			continue
		}
		date := extractDate(line)
		if date == "" {
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

		amountTok := rest[tokens[len(tokens)-2][0]:tokens[len(tokens)-2][1]]
		balanceTok := rest[tokens[len(tokens)-1][0]:tokens[len(tokens)-1][1]]
		desc := strings.TrimSpace(rest[:tokens[len(tokens)-2][0]])

		rows = append(rows, models.RawRow{
			Fields: map[models.ColumnRole]string{
				models.RoleDate:        date,
				models.RoleDescription: desc,
				models.RoleAmount:      amountTok,
				models.RoleBalance:     balanceTok,
			},
			Variant:    models.VariantStandardSigned,
			RawText:    line,
			Provenance: models.ProvenanceTable,
		})
	}
	return rows, skipped
}
