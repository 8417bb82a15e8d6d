package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType determines the sign of a transaction's balance effect.
// The stored Amount is always a non-negative magnitude.
type TransactionType string

// Transaction types.
const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// CategoryTransfer tags both legs of a transfer pair.
const CategoryTransfer = "Transfer"

// Recurrence describes an optionally repeating transaction.
type Recurrence struct {
	Frequency string
	Recurring bool
}

// Transaction is a single signed money movement owned by exactly one account.
type Transaction struct {
	ID          string
	Type        TransactionType
	Amount      decimal.Decimal // non-negative magnitude
	Date        time.Time
	Category    string
	Subcategory string
	AccountID   string
	Description string
	Recurrence  Recurrence
}

// SignedAmount returns the balance delta this transaction applies to its
// account: positive for income, negative for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsTransferLeg reports whether this transaction is one half of a transfer pair.
func (t *Transaction) IsTransferLeg() bool {
	return t.Category == CategoryTransfer
}
