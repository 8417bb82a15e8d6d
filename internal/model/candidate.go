package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CandidateTransaction is the mutable working record an import pipeline
// builds per raw row. It is never persisted; the orchestrator converts
// accepted candidates into real Transactions at commit.
type CandidateTransaction struct {
	RowIndex    int
	Date        time.Time // zero when the source value did not parse
	HasDate     bool
	Amount      decimal.Decimal // non-negative magnitude
	HasAmount   bool
	Type        TransactionType
	Description string
	Category    string
	Subcategory string

	// AutoCategorized marks a category assigned by keyword heuristics
	// rather than a mapped column, for user review.
	AutoCategorized bool

	// CardPayment marks rows whose description reads like a credit-card
	// settlement; they are rerouted to a transfer at commit time.
	CardPayment bool

	// Annotations filled by validation and duplicate detection.
	Invalid      bool
	InvalidCode  ValidationCode
	DuplicateOf  []string // IDs of existing transactions this row plausibly duplicates
	DuplicateRow int      // earlier row index in the same batch, -1 when none
}

// SignedAmount mirrors Transaction.SignedAmount for preview arithmetic.
func (c *CandidateTransaction) SignedAmount() decimal.Decimal {
	if c.Type == TypeExpense {
		return c.Amount.Neg()
	}
	return c.Amount
}

// IsDuplicate reports whether any duplicate annotation is present.
func (c *CandidateTransaction) IsDuplicate() bool {
	return len(c.DuplicateOf) > 0 || c.DuplicateRow >= 0
}
