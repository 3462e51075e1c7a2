package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// OCR is the external text-recognition capability. The pipeline consumes
// it as an injected strategy so tests can run against canned text with no
// image processing installed.
type OCR interface {
	Recognize(ctx context.Context, imageBytes []byte) (string, error)
}

// extractOCR handles scanned/image PDFs: page images are pulled out with
// pdfcpu and each is fed to the OCR capability. The result has text lines
// only, no table structure.
func extractOCR(ctx context.Context, ocr OCR, data []byte) ([]models.ExtractedPage, []string, error) {
	images, err := extractPageImages(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrUnparsableDocument, err)
	}
	if len(images) == 0 {
		return nil, nil, fmt.Errorf("%w: no page images found", models.ErrUnparsableDocument)
	}
	return recognizePages(ctx, ocr, images)
}

// recognizePages runs OCR over page images. Cancellation is cooperative
// at page granularity: the current page finishes, then the loop stops. A
// single failing page becomes a warning; all pages failing makes the
// document unparsable.
func recognizePages(ctx context.Context, ocr OCR, images [][]byte) ([]models.ExtractedPage, []string, error) {
	var pages []models.ExtractedPage
	var warnings []string
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, fmt.Errorf("%w: ocr stopped at page %d of %d", models.ErrExtractionTimeout, i+1, len(images))
			}
			return nil, nil, err
		}

		text, err := ocr.Recognize(ctx, img)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, fmt.Errorf("%w: ocr stopped at page %d of %d", models.ErrExtractionTimeout, i+1, len(images))
			}
			warnings = append(warnings, fmt.Sprintf("page %d could not be read: %v", i+1, err))
			continue
		}

		var lines []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			warnings = append(warnings, fmt.Sprintf("page %d produced no text", i+1))
			continue
		}
		pages = append(pages, models.ExtractedPage{Index: i, Lines: lines})
	}

	if len(pages) == 0 {
		return nil, warnings, fmt.Errorf("%w: ocr produced no text from %d page images", models.ErrUnparsableDocument, len(images))
	}
	return pages, warnings, nil
}

// extractPageImages writes the document to a scratch file and asks pdfcpu
// for its embedded images. Scanned statements carry one full-page image
// per page, so filename order matches page order.
func extractPageImages(data []byte) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "statement-pages-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpFile := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tmpFile, tmpDir, nil, conf); err != nil {
		return nil, fmt.Errorf("extracting page images: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("reading temp dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == "doc.pdf" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var images [][]byte
	for _, name := range names {
		img, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}
