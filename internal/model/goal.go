package model

import "github.com/shopspring/decimal"

// Goal is a savings target that transfers can feed.
type Goal struct {
	ID          string
	Name        string
	Target      decimal.Decimal
	Accumulated decimal.Decimal
}
