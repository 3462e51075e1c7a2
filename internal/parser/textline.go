package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// ExtractTextRows is the text-fallback pass: a regex scan over raw lines
// for the DATE  DESCRIPTION  AMOUNT  BALANCE shape, recovering rows that
// structured table extraction missed on noisy documents. It is strictly
// additive — its rows carry text-fallback provenance and only survive
// reconciliation when the primary pass produced nothing for that key.
func ExtractTextRows(pages []models.ExtractedPage) []models.RawRow {
	var rows []models.RawRow

	for _, page := range pages {
		for _, line := range page.Lines {
			line = sanitizeOCRLine(normalizeLine(line))
			if line == "" || isSummaryLine(line) {
				continue
			}
			date := extractDate(line)
			if date == "" {
				continue
			}

			rest := strings.TrimSpace(line[strings.Index(line, date)+len(date):])
			tokens := amountTokenPattern.FindAllStringIndex(rest, -1)
			if len(tokens) == 0 {
				continue
			}
			desc := strings.TrimSpace(rest[:tokens[0][0]])
			if desc == "" {
				continue
			}

			fields := map[models.ColumnRole]string{
				models.RoleDate:        date,
				models.RoleDescription: desc,
			}
			// Last token is the running balance when two or more amounts
			// are present; with a single token there is no balance.
			if len(tokens) >= 2 {
				fields[models.RoleAmount] = rest[tokens[len(tokens)-2][0]:tokens[len(tokens)-2][1]]
				fields[models.RoleBalance] = rest[tokens[len(tokens)-1][0]:tokens[len(tokens)-1][1]]
			} else {
				fields[models.RoleAmount] = rest[tokens[0][0]:tokens[0][1]]
			}

			rows = append(rows, models.RawRow{
				Fields:     fields,
				Variant:    models.VariantGenericText,
				RawText:    line,
				Provenance: models.ProvenanceTextFallback,
			})
		}
	}
	return rows
}
