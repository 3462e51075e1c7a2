package models

import "github.com/shopspring/decimal"

// BankID identifies a supported statement issuer.
type BankID string

const (
	BankCapitec  BankID = "capitec"
	BankFNB      BankID = "fnb"
	BankStandard BankID = "standard"
	// BankGeneric is the explicit fallback used when detection stays below
	// every signature threshold. It is a first-class registry entry, not a
	// catch-all branch.
	BankGeneric BankID = "generic"
)

// FormatVariant tags the physical layout a statement row was read from.
// One bank may export several of these.
type FormatVariant string

const (
	VariantCapitecMoneyInOut FormatVariant = "capitec-money-inout"
	VariantCapitecSigned     FormatVariant = "capitec-signed"
	VariantFNBSuffix         FormatVariant = "fnb-suffix"
	VariantFNBDebitCredit    FormatVariant = "fnb-debit-credit"
	VariantStandardDebCred   FormatVariant = "standard-debit-credit"
	VariantStandardSigned    FormatVariant = "standard-signed"
	VariantGenericText       FormatVariant = "generic-text"
)

// ColumnRole names the meaning of a cell inside a raw statement row.
type ColumnRole string

const (
	RoleDate        ColumnRole = "date"
	RoleDescription ColumnRole = "description"
	RoleDebit       ColumnRole = "debit"
	RoleCredit      ColumnRole = "credit"
	RoleAmount      ColumnRole = "amount"
	RoleMoneyIn     ColumnRole = "money_in"
	RoleMoneyOut    ColumnRole = "money_out"
	RoleFee         ColumnRole = "fee"
	RoleBalance     ColumnRole = "balance"
)

// Provenance records which extraction pass produced a row.
type Provenance string

const (
	ProvenanceTable        Provenance = "table"
	ProvenanceTextFallback Provenance = "text-fallback"
)

// ExtractedPage is the page-level output of the extraction adapter.
// Lines are always present; Grids only when the digital path could
// recover table structure (the OCR path yields lines only).
type ExtractedPage struct {
	Index int
	Lines []string
	Grids [][][]string
}

// SignalGroup is one weighted keyword group inside a bank signature.
// The group scores when any of its keywords is present.
type SignalGroup struct {
	Name     string
	Weight   int
	Keywords []string
}

// BankSignature is the static detection config for one bank.
type BankSignature struct {
	Bank      BankID
	Threshold int
	Groups    []SignalGroup
}

// DetectionResult is the outcome of bank format detection.
type DetectionResult struct {
	Bank    BankID
	Score   int
	Signals []string
}

// RawRow is one loosely-typed transaction candidate. Field values are the
// untouched cell strings; the amount resolver interprets them per variant.
type RawRow struct {
	Fields     map[ColumnRole]string
	Variant    FormatVariant
	RawText    string
	Provenance Provenance
}

// VerifyStatus is the three-state result of a balance cross-check.
// Unknown (no balance parsed) is deliberately distinct from failed.
type VerifyStatus string

const (
	VerifyUnknown VerifyStatus = "unknown"
	VerifyTrue    VerifyStatus = "true"
	VerifyFalse   VerifyStatus = "false"
)

// CanonicalTransaction is the normalized output record. Amount is always
// income-positive/expense-negative regardless of the source convention.
type CanonicalTransaction struct {
	Date              string           `csv:"date" json:"date"`
	Description       string           `csv:"description" json:"description"`
	Amount            decimal.Decimal  `csv:"amount" json:"amount"`
	Balance           *decimal.Decimal `csv:"balance" json:"balance,omitempty"`
	BalanceVerified   VerifyStatus     `csv:"balance_verified" json:"balanceVerified"`
	BalanceDifference *decimal.Decimal `csv:"balance_difference" json:"balanceDifference,omitempty"`
	Provenance        Provenance       `csv:"provenance" json:"provenance"`
}

// SkippedRow records a row that could not become a transaction and why.
// Rows never vanish silently.
type SkippedRow struct {
	RawText string `json:"rawText"`
	Reason  string `json:"reason"`
}

// IngestionResult is the sole artifact crossing the core's boundary.
type IngestionResult struct {
	Bank         BankID                 `json:"bank"`
	Transactions []CanonicalTransaction `json:"transactions"`
	Warnings     []string               `json:"warnings"`
	Skipped      []SkippedRow           `json:"skippedRows"`
}
