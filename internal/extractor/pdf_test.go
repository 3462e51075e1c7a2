package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

func linesPage(lines ...string) []models.ExtractedPage {
	return []models.ExtractedPage{{Index: 0, Lines: lines}}
}

func TestTextQuality(t *testing.T) {
	clean := linesPage("01/02/2024 Salary Deposit R5,000.00 Balance 5,000.00")
	assert.Greater(t, textQuality(clean), 0.9)

	// Identity-encoded font garbage: high codepoints, nothing readable.
	garbage := linesPage(strings.Repeat("\uE001\uE002\uE003", 40))
	assert.Less(t, textQuality(garbage), 0.1)

	assert.Zero(t, textQuality(nil))
}

func TestIsReadableText(t *testing.T) {
	good := linesPage(
		"Capitec Bank Limited",
		"Date Description Money In Money Out Fee Balance",
		"01/02/2024 Salary Deposit 5000.00 5000.00",
	)
	assert.True(t, isReadableText(good))

	// Too short even though clean.
	assert.False(t, isReadableText(linesPage("Bank")))

	// Long and ASCII but no statement vocabulary at all.
	noVocab := linesPage(strings.Repeat("xyzzy qwerty asdfgh ", 10))
	assert.False(t, isReadableText(noVocab))

	// Mostly unreadable glyphs.
	junk := linesPage("bank " + strings.Repeat("\uE001", 200))
	assert.False(t, isReadableText(junk))
}

func TestTotalTextLen(t *testing.T) {
	pages := []models.ExtractedPage{
		{Lines: []string{" abc ", "de"}},
		{Lines: []string{"fgh"}},
	}
	assert.Equal(t, 8, totalTextLen(pages))
}

func TestExtractPDFText_Garbage(t *testing.T) {
	_, _, err := extractPDFText(context.Background(), []byte("%PDF-1.4 not a real pdf"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrExtractionTimeout)
}

func TestExtractPDFText_DeadlineMapsToTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, _, err := extractPDFText(ctx, []byte("%PDF-1.4 irrelevant"))
	assert.ErrorIs(t, err, models.ErrExtractionTimeout)
}

func TestExtractPDFText_CancelPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := extractPDFText(ctx, []byte("%PDF-1.4 irrelevant"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractPDFText_TextlessPageBecomesWarning(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "blank_page.pdf"))
	require.NoError(t, err)

	pages, warnings, err := extractPDFText(context.Background(), data)
	require.NoError(t, err)
	assert.Empty(t, pages)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "page 1")
}
