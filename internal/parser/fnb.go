package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// FNBExtractor handles FNB statement layouts.
//
// Variant fnb-suffix is the scanned-statement shape:
//
//	Date  Description  Amount[ Cr]  Balance[ Cr]
//
// where the amount is unsigned and a trailing Cr marks a credit; no
// marker means an expense. Variant fnb-debit-credit uses paired
// Debit/Credit columns.
type FNBExtractor struct{}

func (e *FNBExtractor) Bank() models.BankID { return models.BankFNB }

var fnbHeaderSynonyms = map[string]models.ColumnRole{
	"date":           models.RoleDate,
	"posting date":   models.RoleDate,
	"datum":          models.RoleDate,
	"description":    models.RoleDescription,
	"details":        models.RoleDescription,
	"beskrywing":     models.RoleDescription,
	"amount":         models.RoleAmount,
	"bedrag":         models.RoleAmount,
	"debit":          models.RoleDebit,
	"debiet":         models.RoleDebit,
	"credit":         models.RoleCredit,
	"krediet":        models.RoleCredit,
	"balance":        models.RoleBalance,
	"ledger balance": models.RoleBalance,
	"balans":         models.RoleBalance,
}

// fnbSuffixPattern: date, description, unsigned amount with optional Cr,
// balance with optional Cr.
var fnbSuffixPattern = regexp.MustCompile(
	`^(.+?)\s{2,}(\d+(?:[, ]\d{3})*\.\d{2})(\s?Cr)?\s+(\d+(?:[, ]\d{3})*\.\d{2})(\s?Cr)?\s*$`)

// fnbSuffixRelaxed accepts a single-space column gap, which OCR output
// tends to collapse to.
var fnbSuffixRelaxed = regexp.MustCompile(
	`^(.+?)\s+(\d+(?:[, ]\d{3})*\.\d{2})(\s?Cr)?\s+(\d+(?:[, ]\d{3})*\.\d{2})(\s?Cr)?\s*$`)

func (e *FNBExtractor) ExtractRows(pages []models.ExtractedPage) ([]models.RawRow, []models.SkippedRow) {
	var rows []models.RawRow
	var skipped []models.SkippedRow

	for _, page := range pages {
		gotGrid := false
		for _, grid := range page.Grids {
			cols, headerIdx := findHeader(grid, fnbHeaderSynonyms)
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

func (e *FNBExtractor) resolveVariant(present map[models.ColumnRole]bool) models.FormatVariant {
	if present[models.RoleDebit] && present[models.RoleCredit] {
		return models.VariantFNBDebitCredit
	}
	return models.VariantFNBSuffix
}

func (e *FNBExtractor) extractLines(lines []string) ([]models.RawRow, []models.SkippedRow) {
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
		m := fnbSuffixPattern.FindStringSubmatch(rest)
		if m == nil {
			m = fnbSuffixRelaxed.FindStringSubmatch(rest)
		}
		if m == nil {
			skipped = append(skipped, models.SkippedRow{RawText: line, Reason: "no amount field"})
			continue
		}

		amount := m[2]
		if strings.TrimSpace(m[3]) != "" {
			amount += " Cr"
		}
		balance := m[4]
		if strings.TrimSpace(m[5]) != "" {
			balance += " Cr"
		}

		rows = append(rows, models.RawRow{
			Fields: map[models.ColumnRole]string{
				models.RoleDate:        date,
				models.RoleDescription: strings.TrimSpace(m[1]),
				models.RoleAmount:      amount,
				models.RoleBalance:     balance,
			},
			Variant:    models.VariantFNBSuffix,
			RawText:    line,
			Provenance: models.ProvenanceTable,
		})
	}
	return rows, skipped
}
