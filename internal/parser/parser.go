// Package parser holds the bank format detector and the per-bank row
// extractors that turn extracted pages into loosely-typed raw rows.
package parser

import (
	"github.com/insightdelivered/statement-ingest/internal/models"
)

// RowExtractor turns pages into raw rows for one bank's layouts. Rows
// that cannot yield at least a date, a description and one amount field
// are returned as skipped, never dropped silently.
type RowExtractor interface {
	Bank() models.BankID
	ExtractRows(pages []models.ExtractedPage) ([]models.RawRow, []models.SkippedRow)
}

// registry maps each bank to its extractor. The generic fallback is a
// named entry like any other, so adding a bank means adding a row here —
// there is no catch-all branch to misclassify into.
var registry = map[models.BankID]RowExtractor{
	models.BankCapitec:  &CapitecExtractor{},
	models.BankFNB:      &FNBExtractor{},
	models.BankStandard: &StandardExtractor{},
	models.BankGeneric:  &GenericExtractor{},
}

// ForBank returns the extractor registered for the bank. Unknown ids map
// to the generic extractor; detection already degraded them.
func ForBank(bank models.BankID) RowExtractor {
	if e, ok := registry[bank]; ok {
		return e
	}
	return registry[models.BankGeneric]
}
