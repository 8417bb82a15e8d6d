package model

import "github.com/shopspring/decimal"

// ValidationCode classifies why a row was rejected.
type ValidationCode string

// Validation reason codes.
const (
	InvalidDate      ValidationCode = "INVALID_DATE"
	InvalidAmount    ValidationCode = "INVALID_AMOUNT"
	EmptyDescription ValidationCode = "EMPTY_DESCRIPTION"
)

// ValidationError reports one rejected row. Rejected rows are excluded from
// commit, never silently corrected.
type ValidationError struct {
	RowIndex int
	Code     ValidationCode
}

// DuplicateMatch reports existing transactions a candidate plausibly
// duplicates. Advisory only; nothing is removed automatically.
type DuplicateMatch struct {
	RowIndex    int
	ExistingIDs []string
	BatchRow    int // earlier row in the same batch, -1 when none
}

// BalanceImpact is the preview computed over the exact set of rows that
// will be committed as regular transactions.
type BalanceImpact struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	Net              decimal.Decimal
	StartingBalance  decimal.Decimal
	ProjectedBalance decimal.Decimal
	ByCategory       map[string]decimal.Decimal
}
