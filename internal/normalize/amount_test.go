package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

func row(variant models.FormatVariant, fields map[models.ColumnRole]string) models.RawRow {
	return models.RawRow{Fields: fields, Variant: variant, RawText: "raw", Provenance: models.ProvenanceTable}
}

func mustAmount(t *testing.T, r models.RawRow) decimal.Decimal {
	t.Helper()
	val, err := ResolveAmount(r)
	require.NoError(t, err)
	return val
}

func TestResolveAmount_Signed(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"-250.00", "-250.00"},
		{"5000.00", "5000.00"},
		{"3,500.00-", "-3500.00"},
		{"R 1,234.56", "1234.56"},
		{"1 234.56", "1234.56"},
	}
	for _, tt := range tests {
		got := mustAmount(t, row(models.VariantCapitecSigned, map[models.ColumnRole]string{
			models.RoleAmount: tt.amount,
		}))
		assert.Equal(t, tt.want, got.StringFixed(2), "amount %q", tt.amount)
	}
}

func TestResolveAmount_Suffix(t *testing.T) {
	credit := mustAmount(t, row(models.VariantFNBSuffix, map[models.ColumnRole]string{
		models.RoleAmount: "100.00 Cr",
	}))
	assert.Equal(t, "100.00", credit.StringFixed(2))

	// No marker defaults to expense.
	debit := mustAmount(t, row(models.VariantFNBSuffix, map[models.ColumnRole]string{
		models.RoleAmount: "100.00",
	}))
	assert.Equal(t, "-100.00", debit.StringFixed(2))
}

func TestResolveAmount_DebitCredit(t *testing.T) {
	debit := mustAmount(t, row(models.VariantStandardDebCred, map[models.ColumnRole]string{
		models.RoleDebit: "250.00",
	}))
	assert.Equal(t, "-250.00", debit.StringFixed(2))

	credit := mustAmount(t, row(models.VariantFNBDebitCredit, map[models.ColumnRole]string{
		models.RoleCredit: "10,000.00",
	}))
	assert.Equal(t, "10000.00", credit.StringFixed(2))

	var parseErr *models.AmountParseError
	_, err := ResolveAmount(row(models.VariantStandardDebCred, map[models.ColumnRole]string{
		models.RoleDebit:  "250.00",
		models.RoleCredit: "250.00",
	}))
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "both debit and credit")

	_, err = ResolveAmount(row(models.VariantStandardDebCred, map[models.ColumnRole]string{}))
	assert.ErrorAs(t, err, &parseErr)
}

func TestResolveAmount_MoneyInOut(t *testing.T) {
	// Money out and fee are already negative in source data; the resolver
	// sums all three columns.
	got := mustAmount(t, row(models.VariantCapitecMoneyInOut, map[models.ColumnRole]string{
		models.RoleMoneyIn:  "",
		models.RoleMoneyOut: "-25.00",
		models.RoleFee:      "-0.50",
	}))
	assert.Equal(t, "-25.50", got.StringFixed(2))

	in := mustAmount(t, row(models.VariantCapitecMoneyInOut, map[models.ColumnRole]string{
		models.RoleMoneyIn: "5000.00",
	}))
	assert.Equal(t, "5000.00", in.StringFixed(2))

	var parseErr *models.AmountParseError
	_, err := ResolveAmount(row(models.VariantCapitecMoneyInOut, map[models.ColumnRole]string{}))
	assert.ErrorAs(t, err, &parseErr)
}

func TestResolveAmount_GenericText(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"200.00 Cr", "200.00"},
		{"-50.00", "-50.00"},
		{"50.00-", "-50.00"},
		// Unsigned bare amount defaults to expense.
		{"45.00", "-45.00"},
	}
	for _, tt := range tests {
		got := mustAmount(t, row(models.VariantGenericText, map[models.ColumnRole]string{
			models.RoleAmount: tt.amount,
		}))
		assert.Equal(t, tt.want, got.StringFixed(2), "amount %q", tt.amount)
	}
}

func TestResolveAmount_UnknownVariant(t *testing.T) {
	var parseErr *models.AmountParseError
	_, err := ResolveAmount(row(models.FormatVariant("nope"), nil))
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Reason, "unknown format variant")
}

func TestCanonicalize(t *testing.T) {
	rows := []models.RawRow{
		row(models.VariantCapitecSigned, map[models.ColumnRole]string{
			models.RoleDate:        "01/02/2024",
			models.RoleDescription: "  Salary Deposit ",
			models.RoleAmount:      "5000.00",
			models.RoleBalance:     "5000.00",
		}),
		row(models.VariantCapitecSigned, map[models.ColumnRole]string{
			models.RoleDate:        "02/02/2024",
			models.RoleDescription: "Broken",
			models.RoleAmount:      "not-a-number",
		}),
	}

	txns, skipped := Canonicalize(rows)
	require.Len(t, txns, 1)
	require.Len(t, skipped, 1)

	assert.Equal(t, "Salary Deposit", txns[0].Description)
	assert.Equal(t, models.VerifyUnknown, txns[0].BalanceVerified)
	require.NotNil(t, txns[0].Balance)
	assert.Equal(t, "5000.00", txns[0].Balance.StringFixed(2))
	assert.Contains(t, skipped[0].Reason, "unparsable amount")
}
