// Package extractor turns document bytes into page-level text lines and
// table grids. It knows nothing about any particular bank: the digital
// path handles text-layer PDFs and CSV exports, and the OCR path covers
// scanned/image documents through an injected recognition capability.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// Adapter selects and runs the extraction path for one document.
type Adapter struct {
	// OCR handles scanned documents. When nil, documents that fail the
	// digital path are rejected as unparsable instead of escalated.
	OCR    OCR
	Logger *slog.Logger
}

// Extract produces pages from raw document bytes. The filename hint only
// steers CSV-vs-PDF selection; content sniffing decides when the hint is
// absent or wrong. Warnings carry page-level problems that did not abort
// the document.
func (a *Adapter) Extract(ctx context.Context, data []byte, filenameHint string) ([]models.ExtractedPage, []string, error) {
	if len(data) == 0 {
		return nil, nil, models.ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, models.ErrExtractionTimeout
		}
		return nil, nil, err
	}

	ext := strings.ToLower(filepath.Ext(filenameHint))
	if ext == ".csv" || (ext != ".pdf" && looksLikeCSV(data)) {
		pages, err := extractCSV(data)
		if err != nil {
			return nil, nil, err
		}
		if totalTextLen(pages) == 0 {
			return nil, nil, models.ErrEmptyDocument
		}
		return pages, nil, nil
	}

	pages, pdfWarnings, err := extractPDFText(ctx, data)
	if err != nil && (errors.Is(err, models.ErrExtractionTimeout) || errors.Is(err, context.Canceled)) {
		return nil, pdfWarnings, err
	}
	if err == nil && isReadableText(pages) {
		return pages, pdfWarnings, nil
	}

	// Digital path yielded nothing usable: the document is likely a scan.
	if a.OCR == nil {
		if err != nil {
			return nil, pdfWarnings, fmt.Errorf("%w: %v", models.ErrUnparsableDocument, err)
		}
		if totalTextLen(pages) == 0 {
			return nil, pdfWarnings, models.ErrEmptyDocument
		}
		return nil, pdfWarnings, fmt.Errorf("%w: text layer is unreadable and no ocr capability is configured", models.ErrUnparsableDocument)
	}

	a.logger().Info("digital extraction unreadable, escalating to ocr",
		"textLen", totalTextLen(pages), "quality", textQuality(pages))

	ocrPages, warnings, ocrErr := extractOCR(ctx, a.OCR, data)
	if ocrErr != nil {
		// A document with no text layer and no recognizable images is
		// empty rather than corrupt.
		if errors.Is(ocrErr, models.ErrUnparsableDocument) && err == nil && totalTextLen(pages) == 0 {
			return nil, warnings, models.ErrEmptyDocument
		}
		return nil, warnings, ocrErr
	}
	warnings = append(warnings, "document was processed with ocr; table structure is unavailable")
	return ocrPages, warnings, nil
}

func (a *Adapter) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
