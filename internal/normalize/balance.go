package normalize

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// balanceTolerance absorbs rounding noise in running-balance arithmetic.
var balanceTolerance = decimal.NewFromFloat(0.01)

// ValidateBalances runs the sequential cross-check: for each transaction
// with a parsed balance, previous_balance + amount must equal the
// current balance within tolerance. Rows without a balance stay
// `unknown` — unchecked and checked-and-wrong call for different
// remediation, so the states never collapse into one.
//
// The default annotate-only mode never mutates amounts. Strict mode may
// flip an amount's sign when that alone repairs the mismatch; it is an
// explicit offline opt-in because silently correcting financial data is
// unsafe in production.
func ValidateBalances(txns []models.CanonicalTransaction, strict bool) []models.CanonicalTransaction {
	out := make([]models.CanonicalTransaction, len(txns))
	copy(out, txns)

	var prev *decimal.Decimal
	for i := range out {
		t := &out[i]
		if t.Balance == nil {
			t.BalanceVerified = models.VerifyUnknown
			continue
		}
		if prev == nil {
			// First balanced row has nothing to check against.
			t.BalanceVerified = models.VerifyUnknown
			prev = t.Balance
			continue
		}

		expected := prev.Add(t.Amount)
		diff := t.Balance.Sub(expected).Abs()
		if diff.LessThanOrEqual(balanceTolerance) {
			t.BalanceVerified = models.VerifyTrue
			d := decimal.Zero
			t.BalanceDifference = &d
		} else if strict && balances(prev, t.Amount.Neg(), t.Balance) {
			t.Amount = t.Amount.Neg()
			t.BalanceVerified = models.VerifyTrue
			d := decimal.Zero
			t.BalanceDifference = &d
		} else {
			t.BalanceVerified = models.VerifyFalse
			d := diff
			t.BalanceDifference = &d
		}
		prev = t.Balance
	}
	return out
}

func balances(prev *decimal.Decimal, amount decimal.Decimal, balance *decimal.Decimal) bool {
	return balance.Sub(prev.Add(amount)).Abs().LessThanOrEqual(balanceTolerance)
}
