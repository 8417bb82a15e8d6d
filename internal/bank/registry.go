// Package bank catalogs known bank export formats. Adding a bank is one
// more entry in the template table.
package bank

import (
	"fmt"
	"sort"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

// templates is the static catalog keyed by bank identifier.
var templates = map[string]model.BankTemplate{
	"bbva": {
		ID:                "bbva",
		Name:              "BBVA",
		Delimiter:         ';',
		DateFormat:        "02/01/2006",
		DateColumn:        "Fecha",
		AmountColumn:      "Importe",
		DescriptionColumn: "Concepto",
		NegativeIsExpense: true,
	},
	"santander": {
		ID:                "santander",
		Name:              "Banco Santander",
		Delimiter:         ';',
		DateFormat:        "02/01/2006",
		DateColumn:        "Fecha Operación",
		AmountColumn:      "Importe",
		DescriptionColumn: "Concepto",
		NegativeIsExpense: true,
	},
	"caixabank": {
		ID:                "caixabank",
		Name:              "CaixaBank",
		Delimiter:         ';',
		DateFormat:        "02/01/2006",
		DateColumn:        "Fecha",
		AmountColumn:      "Importe",
		DescriptionColumn: "Movimiento",
		CategoryColumn:    "Categoría",
		NegativeIsExpense: true,
	},
	"ing": {
		ID:                "ing",
		Name:              "ING",
		Delimiter:         ',',
		DateFormat:        "02/01/2006",
		DateColumn:        "F. VALOR",
		AmountColumn:      "IMPORTE (€)",
		DescriptionColumn: "DESCRIPCIÓN",
		CategoryColumn:    "CATEGORÍA",
		NegativeIsExpense: true,
	},
	"openbank": {
		ID:                "openbank",
		Name:              "Openbank",
		Delimiter:         ';',
		DateFormat:        "02/01/2006",
		DateColumn:        "Fecha Operación",
		AmountColumn:      "Importe",
		DescriptionColumn: "Concepto",
		NegativeIsExpense: true,
	},
	"generic": {
		ID:                "generic",
		Name:              "Generic CSV",
		Delimiter:         ',',
		DateFormat:        "2006-01-02",
		DateColumn:        "Date",
		AmountColumn:      "Amount",
		DescriptionColumn: "Description",
		CategoryColumn:    "Category",
		TypeColumn:        "Type",
		NegativeIsExpense: true,
	},
}

// Lookup returns the template registered for a bank identifier.
func Lookup(id string) (model.BankTemplate, error) {
	t, ok := templates[id]
	if !ok {
		return model.BankTemplate{}, fmt.Errorf("bank template %q: %w", id, common.ErrNotFound)
	}
	return t, nil
}

// List returns all templates sorted by identifier.
func List() []model.BankTemplate {
	out := make([]model.BankTemplate, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
