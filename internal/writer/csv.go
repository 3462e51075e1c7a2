// Package writer serializes canonical transactions for downstream
// collaborators.
package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// CSVWriter writes canonical transactions to CSV.
type CSVWriter struct {
	// IncludeSkipped appends skipped-row diagnostics after the
	// transaction table.
	IncludeSkipped bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result *models.IngestionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, result)
}

// Write marshals the transactions (and optionally the skipped rows) in
// CSV form.
func (w *CSVWriter) Write(out io.Writer, result *models.IngestionResult) error {
	txns := result.Transactions
	if txns == nil {
		txns = []models.CanonicalTransaction{}
	}
	if err := gocsv.Marshal(&txns, out); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}

	if w.IncludeSkipped && len(result.Skipped) > 0 {
		if _, err := fmt.Fprintf(out, "\n# skipped rows\n"); err != nil {
			return err
		}
		for _, s := range result.Skipped {
			if _, err := fmt.Fprintf(out, "# %s | %s\n", s.Reason, s.RawText); err != nil {
				return err
			}
		}
	}
	return nil
}
