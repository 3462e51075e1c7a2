// Package pipeline composes extraction, detection, row extraction and
// normalization into the single ingestion entry point.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/insightdelivered/statement-ingest/internal/extractor"
	"github.com/insightdelivered/statement-ingest/internal/models"
	"github.com/insightdelivered/statement-ingest/internal/normalize"
	"github.com/insightdelivered/statement-ingest/internal/parser"
)

// Pipeline ingests one document per call. Instances hold no mutable
// state across calls, so concurrent ingestion of independent documents
// is just one call per goroutine.
type Pipeline struct {
	// OCR is the injected recognition capability for scanned documents.
	// Nil disables the OCR path.
	OCR extractor.OCR
	// StrictBalance enables the offline sign-repair mode of the balance
	// validator. Leave false in production.
	StrictBalance bool
	// ForceBank skips detection and uses the given bank's extractor.
	ForceBank models.BankID
	Logger    *slog.Logger
}

// New returns a pipeline using the given OCR capability.
func New(ocr extractor.OCR) *Pipeline {
	return &Pipeline{OCR: ocr}
}

// Ingest runs bytes through the full pipeline: extract pages, detect the
// bank, extract raw rows plus the text-fallback recovery pass, resolve
// amounts, reconcile, and validate balances. Row-level problems land in
// the result's warnings and skipped list; only whole-document problems
// (empty, unreadable, timed out) return an error.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, filenameHint string) (*models.IngestionResult, error) {
	log := p.logger()

	pages, warnings, err := p.adapter().Extract(ctx, data, filenameHint)
	if err != nil {
		return nil, err
	}

	var detection models.DetectionResult
	if p.ForceBank != "" {
		detection = models.DetectionResult{Bank: p.ForceBank}
		log.Info("bank forced", "bank", detection.Bank)
	} else {
		detection, err = parser.Detect(pages)
		if err != nil {
			return nil, err
		}
		log.Info("bank detected", "bank", detection.Bank, "score", detection.Score, "signals", detection.Signals)
		if detection.Bank == models.BankGeneric {
			warnings = append(warnings, "no bank signature matched; used generic extraction")
		}
	}

	ext := parser.ForBank(detection.Bank)
	rawRows, skipped := ext.ExtractRows(pages)
	primary, amountSkips := normalize.Canonicalize(rawRows)
	skipped = append(skipped, amountSkips...)

	var fallback []models.CanonicalTransaction
	if detection.Bank != models.BankGeneric {
		// The generic extractor already is the text-line scan; running
		// the fallback for it would only duplicate its own rows.
		fallbackRows := parser.ExtractTextRows(pages)
		var fallbackSkips []models.SkippedRow
		fallback, fallbackSkips = normalize.Canonicalize(fallbackRows)
		skipped = append(skipped, fallbackSkips...)
	}

	merged := normalize.Reconcile(primary, fallback)
	if recovered := len(merged) - len(primary); recovered > 0 {
		warnings = append(warnings, fmt.Sprintf("recovered %d row(s) via text fallback", recovered))
	}

	txns := normalize.ValidateBalances(merged, p.StrictBalance)

	if len(txns) == 0 {
		// Never a bare empty success: say why nothing came out.
		if len(skipped) > 0 {
			warnings = append(warnings, fmt.Sprintf("no transactions extracted; %d row(s) were skipped", len(skipped)))
		} else {
			warnings = append(warnings, "no transaction rows matched any known layout")
		}
	}

	log.Info("ingestion complete",
		"bank", detection.Bank, "transactions", len(txns),
		"skipped", len(skipped), "warnings", len(warnings))

	return &models.IngestionResult{
		Bank:         detection.Bank,
		Transactions: txns,
		Warnings:     warnings,
		Skipped:      skipped,
	}, nil
}

func (p *Pipeline) adapter() *extractor.Adapter {
	return &extractor.Adapter{OCR: p.OCR, Logger: p.Logger}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
