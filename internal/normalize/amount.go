// Package normalize converts raw statement rows into canonical
// transactions: one signed decimal amount per row (income positive,
// expense negative, for every bank), reconciled across extraction passes
// and cross-checked against the running balance.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

type resolveFunc func(row models.RawRow) (decimal.Decimal, error)

// resolvers is the per-variant strategy table. Every variant gets a
// named, independently testable entry; there is no nested-conditional
// dispatch to grow unmaintainable as layouts are added.
var resolvers = map[models.FormatVariant]resolveFunc{
	models.VariantCapitecSigned:     resolveSigned,
	models.VariantStandardSigned:    resolveSigned,
	models.VariantCapitecMoneyInOut: resolveMoneyInOut,
	models.VariantFNBSuffix:         resolveSuffix,
	models.VariantFNBDebitCredit:    resolveDebitCredit,
	models.VariantStandardDebCred:   resolveDebitCredit,
	models.VariantGenericText:       resolveGenericText,
}

// ResolveAmount turns a raw row's amount representation into one signed
// two-decimal value according to its format variant.
func ResolveAmount(row models.RawRow) (decimal.Decimal, error) {
	resolve, ok := resolvers[row.Variant]
	if !ok {
		return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unknown format variant " + string(row.Variant)}
	}
	return resolve(row)
}

// Canonicalize decorates raw rows into canonical transactions. A row
// whose amount cannot be resolved is skipped with its reason; it never
// fails the document.
func Canonicalize(rows []models.RawRow) ([]models.CanonicalTransaction, []models.SkippedRow) {
	var txns []models.CanonicalTransaction
	var skipped []models.SkippedRow

	for _, row := range rows {
		amount, err := ResolveAmount(row)
		if err != nil {
			skipped = append(skipped, models.SkippedRow{RawText: row.RawText, Reason: err.Error()})
			continue
		}
		txns = append(txns, models.CanonicalTransaction{
			Date:            row.Fields[models.RoleDate],
			Description:     strings.TrimSpace(row.Fields[models.RoleDescription]),
			Amount:          amount,
			Balance:         parseBalance(row.Fields[models.RoleBalance]),
			BalanceVerified: models.VerifyUnknown,
			Provenance:      row.Provenance,
		})
	}
	return txns, skipped
}

// parseMoney parses one monetary token: currency symbols, comma- and
// space-grouped thousands stripped, trailing minus honored, trailing Cr
// marker reported separately.
func parseMoney(s string) (val decimal.Decimal, credit bool, err error) {
	s = strings.TrimSpace(s)

	if strings.HasSuffix(strings.ToLower(s), "cr") {
		credit = true
		s = strings.TrimSpace(s[:len(s)-2])
	}
	negative := false
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}

	for _, junk := range []string{"R", "£", "$", "€", ",", " ", "\u00A0"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	if s == "" {
		return decimal.Zero, credit, &models.AmountParseError{RawText: s, Reason: "empty amount"}
	}

	val, parseErr := decimal.NewFromString(s)
	if parseErr != nil {
		return decimal.Zero, credit, &models.AmountParseError{RawText: s, Reason: parseErr.Error()}
	}
	if negative {
		val = val.Neg()
	}
	return val.Round(2), credit, nil
}

func parseBalance(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	val, _, err := parseMoney(s)
	if err != nil {
		return nil
	}
	return &val
}

// resolveSigned: the amount string already carries its sign.
func resolveSigned(row models.RawRow) (decimal.Decimal, error) {
	val, credit, err := parseMoney(row.Fields[models.RoleAmount])
	if err != nil {
		return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unparsable amount"}
	}
	if credit {
		val = val.Abs()
	}
	return val, nil
}

// resolveSuffix: the amount is unsigned; a trailing credit marker flips
// it positive, its absence defaults to expense.
func resolveSuffix(row models.RawRow) (decimal.Decimal, error) {
	val, credit, err := parseMoney(row.Fields[models.RoleAmount])
	if err != nil {
		return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unparsable amount"}
	}
	if credit {
		return val.Abs(), nil
	}
	return val.Abs().Neg(), nil
}

// resolveDebitCredit: exactly one of the paired columns is populated;
// debit means expense, credit means income.
func resolveDebitCredit(row models.RawRow) (decimal.Decimal, error) {
	debit := strings.TrimSpace(row.Fields[models.RoleDebit])
	credit := strings.TrimSpace(row.Fields[models.RoleCredit])

	switch {
	case debit != "" && credit != "":
		return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "both debit and credit populated"}
	case debit != "":
		val, _, err := parseMoney(debit)
		if err != nil {
			return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unparsable debit"}
		}
		return val.Abs().Neg(), nil
	case credit != "":
		val, _, err := parseMoney(credit)
		if err != nil {
			return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unparsable credit"}
		}
		return val.Abs(), nil
	}
	return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "neither debit nor credit populated"}
}

// resolveMoneyInOut: amount = money_in + money_out + fee. Money out and
// fee already carry negative values in source data, so this is a sum,
// not a subtraction.
func resolveMoneyInOut(row models.RawRow) (decimal.Decimal, error) {
	total := decimal.Zero
	populated := false
	for _, role := range []models.ColumnRole{models.RoleMoneyIn, models.RoleMoneyOut, models.RoleFee} {
		cell := strings.TrimSpace(row.Fields[role])
		if cell == "" {
			continue
		}
		val, _, err := parseMoney(cell)
		if err != nil {
			return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unparsable " + string(role)}
		}
		total = total.Add(val)
		populated = true
	}
	if !populated {
		return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "no money_in, money_out or fee value"}
	}
	return total.Round(2), nil
}

// resolveGenericText: fallback rows keep an explicit sign or Cr marker
// when one survived extraction; an unsigned bare amount defaults to
// expense, matching the suffix convention.
func resolveGenericText(row models.RawRow) (decimal.Decimal, error) {
	raw := row.Fields[models.RoleAmount]
	val, credit, err := parseMoney(raw)
	if err != nil {
		return decimal.Zero, &models.AmountParseError{RawText: row.RawText, Reason: "unparsable amount"}
	}
	switch {
	case credit:
		return val.Abs(), nil
	case strings.Contains(raw, "-"):
		return val, nil
	}
	return val.Abs().Neg(), nil
}
