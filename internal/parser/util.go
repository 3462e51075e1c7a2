package parser

import (
	"regexp"
	"strings"
)

// Date shapes seen across statement layouts.
var (
	// DD/MM/YYYY or DD/MM/YY
	datePatternSlash = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	// DD Mon YYYY (e.g. 15 Jan 2024)
	datePatternText = regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})\b`)
	// YYYY-MM-DD or YYYY/MM/DD (CSV exports)
	datePatternISO = regexp.MustCompile(`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`)
)

// amountTokenPattern matches one monetary token: optional sign or rand
// symbol, comma- or space-grouped thousands, two decimals, optional
// trailing minus or Cr marker.
var amountTokenPattern = regexp.MustCompile(`-?R?\s?\d+(?:[, ]\d{3})*\.\d{2}(?:-|\s?Cr)?`)

// amountCellPattern matches a cell holding nothing but one amount.
var amountCellPattern = regexp.MustCompile(`^-?R?\s?\d+(?:[, ]\d{3})*\.\d{2}(?:-|\s?Cr)?$`)

// normalizeLine strips PDF extraction artifacts before matching:
// zero-width spaces and non-breaking spaces from the text layer.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	return strings.TrimSpace(line)
}

// Tesseract misreads inside numbers: semicolons and colons standing in
// for decimal points, and stray trailing colons after digits.
var (
	ocrSemicolonDecimal = regexp.MustCompile(`(\d);(\s*)(\d)`)
	ocrColonDecimal     = regexp.MustCompile(`(\d):(\d)`)
	ocrColonSpace       = regexp.MustCompile(`(\d):\s`)
	ocrColonEnd         = regexp.MustCompile(`(\d):$`)
)

// sanitizeOCRLine repairs the usual tesseract number misreads.
func sanitizeOCRLine(line string) string {
	line = ocrSemicolonDecimal.ReplaceAllString(line, "$1.$3")
	line = ocrColonDecimal.ReplaceAllString(line, "$1.$2")
	line = ocrColonSpace.ReplaceAllString(line, "$1 ")
	line = ocrColonEnd.ReplaceAllString(line, "$1")
	return line
}

// extractDate returns the date at (or within the first few characters of)
// the start of a line, or "".
func extractDate(line string) string {
	line = strings.TrimSpace(line)
	for _, pat := range []*regexp.Regexp{datePatternISO, datePatternSlash, datePatternText} {
		if loc := pat.FindStringIndex(line); loc != nil && loc[0] < 3 {
			return line[loc[0]:loc[1]]
		}
	}
	return ""
}

// isAmountCell reports whether a trimmed cell contains exactly one amount.
func isAmountCell(cell string) bool {
	return amountCellPattern.MatchString(strings.TrimSpace(cell))
}

// isSummaryLine filters statement footer/summary noise out of multi-line
// description continuation.
func isSummaryLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range []string{
		"opening balance", "closing balance", "brought forward",
		"carried forward", "total money in", "total money out",
		"total fees", "statement period", "page ", "continued",
		"vat registration",
	} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// normalizeHeader lowercases a header cell and collapses whitespace so
// bilingual synonym lookup is purely textual.
func normalizeHeader(cell string) string {
	return strings.Join(strings.Fields(strings.ToLower(cell)), " ")
}
