package parser

import (
	"github.com/insightdelivered/statement-ingest/internal/models"
)

// GenericExtractor is the explicit fallback for statements no signature
// claimed. It reuses the text-line scan as its primary pass, so even an
// unknown layout yields rows whenever lines follow the common
// DATE  DESCRIPTION  AMOUNT  BALANCE shape.
type GenericExtractor struct{}

func (e *GenericExtractor) Bank() models.BankID { return models.BankGeneric }

func (e *GenericExtractor) ExtractRows(pages []models.ExtractedPage) ([]models.RawRow, []models.SkippedRow) {
	rows := ExtractTextRows(pages)
	// Rows found by the generic pass are its primary output, not a
	// recovery pass over some other extractor's result.
	for i := range rows {
		rows[i].Provenance = models.ProvenanceTable
	}
	return rows, nil
}
