package importer

import (
	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/internal/model"
)

// ComputeImpact previews what committing the given candidates would do to a
// balance. Callers must pass the exact set that will be committed as regular
// transactions — card-payment rows rerouted to transfers are set aside so
// their effect is not counted twice.
func ComputeImpact(starting decimal.Decimal, accepted []model.CandidateTransaction) model.BalanceImpact {
	impact := model.BalanceImpact{
		StartingBalance: starting,
		ByCategory:      make(map[string]decimal.Decimal),
	}
	for i := range accepted {
		c := &accepted[i]
		if c.Type == model.TypeIncome {
			impact.TotalIncome = impact.TotalIncome.Add(c.Amount)
		} else {
			impact.TotalExpense = impact.TotalExpense.Add(c.Amount)
		}
		impact.ByCategory[c.Category] = impact.ByCategory[c.Category].Add(c.SignedAmount())
	}
	impact.Net = impact.TotalIncome.Sub(impact.TotalExpense)
	impact.ProjectedBalance = starting.Add(impact.Net)
	return impact
}
