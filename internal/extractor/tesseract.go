package extractor

import (
	"context"
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOCR is the default OCR capability, backed by a local Tesseract
// install via gosseract. One instance is safe for sequential use within a
// single ingestion; nothing is held open between calls.
type TesseractOCR struct {
	// Language passed to Tesseract, defaults to "eng".
	Language string
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
}

func (t *TesseractOCR) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "ocr-page-*.img")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(imageBytes); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	tmp.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		client.SetTessdataPrefix(t.TessdataPrefix)
	}
	lang := t.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("setting ocr language: %w", err)
	}
	if err := client.SetImage(tmp.Name()); err != nil {
		return "", fmt.Errorf("setting ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr recognition failed: %w", err)
	}
	return text, nil
}
