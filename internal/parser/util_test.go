package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"01/02/2024 Grocery Store 100.00", "01/02/2024"},
		{"1/2/24 Transfer", "1/2/24"},
		{"2024-02-01 Salary", "2024-02-01"},
		{"2024/02/01,Salary,5000.00", "2024/02/01"},
		{"15 Jan 2024 CARD PAYMENT", "15 Jan 2024"},
		{"  03/04/2024 padded", "03/04/2024"},
		{"Opening balance 1,000.00", ""},
		{"Some text 01/02/2024 with a date later on", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractDate(tt.line), "line %q", tt.line)
	}
}

func TestIsAmountCell(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"1,234.56", true},
		{"5000.00", true},
		{"-250.00", true},
		{"123.45-", true},
		{"R 500.00", true},
		{"100.00 Cr", true},
		{"1 234.56", true},
		{"Grocery Store", false},
		{"100.00 and text", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isAmountCell(tt.cell), "cell %q", tt.cell)
	}
}

func TestSanitizeOCRLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01/02/2024 POS 123;45", "01/02/2024 POS 123.45"},
		{"01/02/2024 POS 123:45", "01/02/2024 POS 123.45"},
		{"balance 950:00:", "balance 950.00"},
		{"no digits: here", "no digits: here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeOCRLine(tt.in))
	}
}

func TestNormalizeLine(t *testing.T) {
	assert.Equal(t, "Geld In", normalizeLine("Geld In"))
	assert.Equal(t, "Fee", normalizeLine("Fe\u200Be"))
	assert.Equal(t, "1 234.56", normalizeLine("1\u00A0234.56"))
	assert.Equal(t, "trimmed", normalizeLine("  trimmed  "))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "money in", normalizeHeader("  Money   In "))
	assert.Equal(t, "debiet", normalizeHeader("DEBIET"))
}

func TestIsSummaryLine(t *testing.T) {
	assert.True(t, isSummaryLine("Opening Balance 1,000.00"))
	assert.True(t, isSummaryLine("Total money out -4,321.00"))
	assert.False(t, isSummaryLine("01/02/2024 Grocery Store 100.00"))
}
