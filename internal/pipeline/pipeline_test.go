package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

const capitecCSV = `Date,Description,Money In,Money Out,Fee,Balance
01/02/2024,Salary Deposit,5000.00,,,5000.00
02/02/2024,Grocery Store,,-250.00,-1.50,4748.50
`

func TestIngest_CapitecCSV(t *testing.T) {
	p := New(nil)

	result, err := p.Ingest(context.Background(), []byte(capitecCSV), "statement.csv")
	require.NoError(t, err)
	assert.Equal(t, models.BankCapitec, result.Bank)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Skipped)

	salary := result.Transactions[0]
	assert.Equal(t, "01/02/2024", salary.Date)
	assert.Equal(t, "Salary Deposit", salary.Description)
	assert.Equal(t, "5000.00", salary.Amount.StringFixed(2))
	assert.Equal(t, models.VerifyUnknown, salary.BalanceVerified)

	// Money out and fee sum into one signed amount, and the running
	// balance confirms it.
	grocery := result.Transactions[1]
	assert.Equal(t, "-251.50", grocery.Amount.StringFixed(2))
	assert.Equal(t, models.VerifyTrue, grocery.BalanceVerified)
	require.NotNil(t, grocery.BalanceDifference)
	assert.True(t, grocery.BalanceDifference.IsZero())
}

func TestIngest_TextFallbackRecoversRaggedRow(t *testing.T) {
	// The third record lost its empty cells, so the grid walk cannot tell
	// which columns remain; the text fallback recovers it instead.
	data := capitecCSV + "03/02/2024,Refund,100.00\n"

	p := New(nil)
	result, err := p.Ingest(context.Background(), []byte(data), "statement.csv")
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)

	refund := result.Transactions[2]
	assert.Equal(t, "Refund", refund.Description)
	assert.Equal(t, models.ProvenanceTextFallback, refund.Provenance)

	var recovered bool
	for _, w := range result.Warnings {
		if strings.Contains(w, "recovered") {
			recovered = true
		}
	}
	assert.True(t, recovered, "warnings: %v", result.Warnings)
}

func TestIngest_GenericFallback(t *testing.T) {
	data := "2024-05-01,Coffee Shop,45.00,1200.00\n2024-05-02,Book Store,120.00,1080.00\n"

	p := New(nil)
	result, err := p.Ingest(context.Background(), []byte(data), "export.csv")
	require.NoError(t, err)
	assert.Equal(t, models.BankGeneric, result.Bank)
	require.Len(t, result.Transactions, 2)

	// Generic text rows default unsigned amounts to expense.
	assert.Equal(t, "-45.00", result.Transactions[0].Amount.StringFixed(2))

	var warned bool
	for _, w := range result.Warnings {
		if strings.Contains(w, "generic") {
			warned = true
		}
	}
	assert.True(t, warned, "warnings: %v", result.Warnings)
}

func TestIngest_EmptyDocument(t *testing.T) {
	p := New(nil)
	_, err := p.Ingest(context.Background(), nil, "statement.pdf")
	assert.ErrorIs(t, err, models.ErrEmptyDocument)
}

func TestIngest_UnparsableDocument(t *testing.T) {
	p := New(nil)
	_, err := p.Ingest(context.Background(), []byte("%PDF-1.4 garbage bytes"), "scan.pdf")
	assert.ErrorIs(t, err, models.ErrUnparsableDocument)
}

func TestIngest_ZeroTransactionsExplained(t *testing.T) {
	// A statement header with no transaction rows must not come back as a
	// silent empty success.
	data := "Date,Description,Amount,Balance\n"

	p := New(nil)
	result, err := p.Ingest(context.Background(), []byte(data), "statement.csv")
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.NotEmpty(t, result.Warnings)
}

func TestIngest_StrictBalanceRepair(t *testing.T) {
	// Signed export where one amount lost its minus; the balance chain
	// proves the real sign.
	data := "Capitec Bank Limited\nDate,Description,Money In,Money Out,Fee,Balance\n" +
		"01/02/2024,Opening Deposit,1000.00,,,1000.00\n" +
		"02/02/2024,Card Payment,50.00,,,950.00\n"

	p := New(nil)
	result, err := p.Ingest(context.Background(), []byte(data), "statement.csv")
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, models.VerifyFalse, result.Transactions[1].BalanceVerified)
	assert.Equal(t, "50.00", result.Transactions[1].Amount.StringFixed(2))

	p.StrictBalance = true
	result, err = p.Ingest(context.Background(), []byte(data), "statement.csv")
	require.NoError(t, err)
	assert.Equal(t, models.VerifyTrue, result.Transactions[1].BalanceVerified)
	assert.Equal(t, "-50.00", result.Transactions[1].Amount.StringFixed(2))
}

func TestIngest_ForcedBank(t *testing.T) {
	// The headers score as Capitec, but the caller's override wins.
	data := "Date,Description,Money In,Money Out,Fee,Balance\n" +
		"01/02/2024,Deposit,1000.00,,,1000.00\n"

	p := New(nil)
	p.ForceBank = models.BankFNB
	result, err := p.Ingest(context.Background(), []byte(data), "statement.csv")
	require.NoError(t, err)
	assert.Equal(t, models.BankFNB, result.Bank)
}
