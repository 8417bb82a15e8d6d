package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/carterahq/cartera/internal/model"
)

func TestComputeImpact(t *testing.T) {
	accepted := []model.CandidateTransaction{
		{Type: model.TypeIncome, Amount: decimal.NewFromInt(1200), Category: "Salary"},
		{Type: model.TypeExpense, Amount: decimal.RequireFromString("55.25"), Category: "Groceries"},
		{Type: model.TypeExpense, Amount: decimal.RequireFromString("44.75"), Category: "Groceries"},
		{Type: model.TypeExpense, Amount: decimal.NewFromInt(80), Category: "Transport"},
	}

	impact := ComputeImpact(decimal.NewFromInt(1000), accepted)

	assert.Equal(t, "1200", impact.TotalIncome.String())
	assert.Equal(t, "180", impact.TotalExpense.String())
	assert.Equal(t, "1020", impact.Net.String())
	assert.Equal(t, "1000", impact.StartingBalance.String())
	assert.Equal(t, "2020", impact.ProjectedBalance.String())

	assert.Equal(t, "1200", impact.ByCategory["Salary"].String())
	assert.Equal(t, "-100", impact.ByCategory["Groceries"].String())
	assert.Equal(t, "-80", impact.ByCategory["Transport"].String())
}

func TestComputeImpactEmpty(t *testing.T) {
	impact := ComputeImpact(decimal.NewFromInt(500), nil)

	assert.True(t, impact.Net.IsZero())
	assert.Equal(t, "500", impact.ProjectedBalance.String())
	assert.Empty(t, impact.ByCategory)
}
