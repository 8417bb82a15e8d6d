// Package model defines the core domain models used throughout the application.
package model

import "github.com/shopspring/decimal"

// AccountKind identifies how an account holds value and how balance deltas
// are routed to it.
type AccountKind string

// Account kinds.
const (
	KindBank       AccountKind = "bank"
	KindCash       AccountKind = "cash"
	KindInvestment AccountKind = "investment"
	KindWallet     AccountKind = "wallet"
	KindAsset      AccountKind = "asset"
	KindDebitProxy AccountKind = "debit-proxy"
	KindCredit     AccountKind = "credit"
)

// PaymentMode selects how a credit account settles its cycle debt.
type PaymentMode string

// Payment modes for credit accounts.
const (
	PayInFull PaymentMode = "full"
	Revolving PaymentMode = "revolving"
)

// Account is a named store of value. Balance is the cumulative signed sum of
// every transaction applied to it (or routed to it through a proxy link).
type Account struct {
	ID      string
	Name    string
	Kind    AccountKind
	Balance decimal.Decimal

	// Credit accounts only. StatementBalance is the debt accrued in the
	// current billing cycle, distinct from total Balance.
	CreditLimit      decimal.Decimal
	CutoffDay        int
	PaymentDay       int
	PaymentMode      PaymentMode
	StatementBalance decimal.Decimal

	// Debit-proxy accounts route deltas to LinkedAccountID; credit accounts
	// use it as the bank account that settles the cycle.
	LinkedAccountID string
}

// IsProxy reports whether transactions on this account are financially
// absorbed by the linked account.
func (a *Account) IsProxy() bool {
	return a.Kind == KindDebitProxy && a.LinkedAccountID != ""
}
