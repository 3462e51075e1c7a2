package parser

import (
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// signatures is the static detection table, ordered most-specific-first.
// Order breaks score ties, so a newly added bank must be slotted
// deliberately rather than appended blind.
var signatures = []models.BankSignature{
	{
		Bank:      models.BankCapitec,
		Threshold: 5,
		Groups: []models.SignalGroup{
			{Name: "institution", Weight: 4, Keywords: []string{"capitec", "capitecbank.co.za"}},
			{Name: "money-columns", Weight: 3, Keywords: []string{"money in", "money out", "geld in", "geld uit"}},
			{Name: "fee-column", Weight: 2, Keywords: []string{"fee", "fooi"}},
		},
	},
	{
		Bank:      models.BankFNB,
		Threshold: 5,
		Groups: []models.SignalGroup{
			{Name: "institution", Weight: 4, Keywords: []string{"first national bank", "fnb.co.za", "eerste nasionale bank"}},
			{Name: "suffix-convention", Weight: 3, Keywords: []string{"cr denotes credit", "amount cr"}},
			{Name: "ledger-columns", Weight: 2, Keywords: []string{"posting date", "ledger balance"}},
		},
	},
	{
		Bank:      models.BankStandard,
		Threshold: 5,
		Groups: []models.SignalGroup{
			{Name: "institution", Weight: 4, Keywords: []string{"standard bank", "standardbank.co.za", "stanbic"}},
			{Name: "debit-credit-columns", Weight: 3, Keywords: []string{"debit  credit", "debiet", "krediet"}},
			{Name: "service-fees", Weight: 2, Keywords: []string{"service fees", "diensfooie"}},
		},
	},
}

// Detect scores each known bank signature against the document text and
// returns the best match. Detection never fails on ambiguous input: a
// below-threshold best score degrades to the explicit generic entry. The
// only error is a document with no text at all.
func Detect(pages []models.ExtractedPage) (models.DetectionResult, error) {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(strings.Join(p.Lines, "\n"))
		b.WriteString("\n")
	}
	text := strings.ToLower(b.String())
	if strings.TrimSpace(text) == "" {
		return models.DetectionResult{}, models.ErrEmptyDocument
	}

	best := models.DetectionResult{Bank: models.BankGeneric}
	for _, sig := range signatures {
		score := 0
		var signals []string
		for _, group := range sig.Groups {
			for _, kw := range group.Keywords {
				if strings.Contains(text, kw) {
					score += group.Weight
					signals = append(signals, group.Name+":"+kw)
					break
				}
			}
		}
		// Strictly-greater keeps the most-specific-first tie break.
		if score >= sig.Threshold && score > best.Score {
			best = models.DetectionResult{Bank: sig.Bank, Score: score, Signals: signals}
		}
	}
	return best, nil
}
