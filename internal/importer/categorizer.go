package importer

import (
	"strings"

	"github.com/carterahq/cartera/internal/model"
)

// FallbackCategory is assigned when nothing else matches.
const FallbackCategory = "Other"

// KeywordRule maps description keywords to a category (and optionally a
// subcategory). Rules are checked in order; first match wins.
type KeywordRule struct {
	Keywords    []string
	Category    string
	Subcategory string
}

// Categorizer assigns categories to candidate transactions. Aliases
// translate a bank's own category column values into the canonical taxonomy;
// the lexicon drives keyword detection when no category column is mapped.
// Both are data, not behavior: callers override them from configuration.
type Categorizer struct {
	aliases map[string]string
	lexicon []KeywordRule

	// subcategory keyword rules scoped to an already-chosen category
	subLexicon map[string][]KeywordRule
}

// DefaultLexicon covers common Spanish-market and English statement
// phrasings.
func DefaultLexicon() []KeywordRule {
	return []KeywordRule{
		{Keywords: []string{"SUPERMERCADO", "MERCADONA", "CARREFOUR", "LIDL", "ALDI", "DIA ", "EROSKI", "GROCERY", "SUPERMARKET"}, Category: "Groceries"},
		{Keywords: []string{"NOMINA", "NÓMINA", "PAYROLL", "SALARY", "SALARIO"}, Category: "Salary"},
		{Keywords: []string{"RESTAURANTE", "RESTAURANT", "BAR ", "CAFETERIA", "CAFÉ", "MCDONALD", "BURGER"}, Category: "Dining"},
		{Keywords: []string{"GASOLINERA", "REPSOL", "CEPSA", "FUEL", "GASOLINA"}, Category: "Transport", Subcategory: "Fuel"},
		{Keywords: []string{"RENFE", "METRO", "AUTOBUS", "TAXI", "CABIFY", "UBER"}, Category: "Transport"},
		{Keywords: []string{"ALQUILER", "RENT ", "HIPOTECA", "MORTGAGE"}, Category: "Housing"},
		{Keywords: []string{"LUZ ", "ELECTRICIDAD", "IBERDROLA", "ENDESA", "NATURGY", "AGUA ", "GAS "}, Category: "Utilities"},
		{Keywords: []string{"MOVISTAR", "VODAFONE", "ORANGE", "INTERNET", "FIBRA"}, Category: "Utilities", Subcategory: "Telecom"},
		{Keywords: []string{"FARMACIA", "PHARMACY", "CLINICA", "MEDICO", "DENTISTA"}, Category: "Health"},
		{Keywords: []string{"NETFLIX", "SPOTIFY", "HBO", "DISNEY", "PRIME VIDEO", "CINE"}, Category: "Entertainment"},
		{Keywords: []string{"AMAZON", "ZARA", "EL CORTE INGLES", "DECATHLON"}, Category: "Shopping"},
		{Keywords: []string{"SEGURO", "INSURANCE", "MAPFRE", "MUTUA"}, Category: "Insurance"},
		{Keywords: []string{"TRANSFERENCIA", "TRANSFER", "BIZUM"}, Category: model.CategoryTransfer},
	}
}

// DefaultAliases translate common bank category labels to the taxonomy.
func DefaultAliases() map[string]string {
	return map[string]string{
		"alimentación":  "Groceries",
		"alimentacion":  "Groceries",
		"supermercados": "Groceries",
		"restauración":  "Dining",
		"restauracion":  "Dining",
		"ocio":          "Entertainment",
		"transporte":    "Transport",
		"vivienda":      "Housing",
		"suministros":   "Utilities",
		"salud":         "Health",
		"seguros":       "Insurance",
		"compras":       "Shopping",
		"nómina":        "Salary",
		"nomina":        "Salary",
		"transferencias": model.CategoryTransfer,
	}
}

func defaultSubLexicon() map[string][]KeywordRule {
	return map[string][]KeywordRule{
		"Transport": {
			{Keywords: []string{"REPSOL", "CEPSA", "GASOLINERA", "FUEL"}, Subcategory: "Fuel"},
			{Keywords: []string{"RENFE", "METRO", "AUTOBUS"}, Subcategory: "Public transit"},
		},
		"Utilities": {
			{Keywords: []string{"MOVISTAR", "VODAFONE", "ORANGE", "FIBRA", "INTERNET"}, Subcategory: "Telecom"},
			{Keywords: []string{"IBERDROLA", "ENDESA", "NATURGY", "LUZ "}, Subcategory: "Electricity"},
			{Keywords: []string{"AGUA "}, Subcategory: "Water"},
		},
	}
}

// NewCategorizer builds a categorizer. Nil arguments select the compiled-in
// defaults.
func NewCategorizer(aliases map[string]string, lexicon []KeywordRule) *Categorizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Categorizer{
		aliases:    aliases,
		lexicon:    lexicon,
		subLexicon: defaultSubLexicon(),
	}
}

// Categorize assigns category and subcategory to a candidate. Precedence: a
// mapped category column value (translated through aliases), then keyword
// detection over the cleaned description, then the fallback. Never fails.
func (c *Categorizer) Categorize(candidate *model.CandidateTransaction, row RawRow, mapping model.ColumnMapping) {
	if mapping.Category != "" {
		if raw := strings.TrimSpace(row[mapping.Category]); raw != "" {
			if canonical, ok := c.aliases[strings.ToLower(raw)]; ok {
				candidate.Category = canonical
			} else {
				candidate.Category = raw
			}
			candidate.Subcategory = c.detectSubcategory(candidate.Category, candidate.Description)
			return
		}
	}

	if category, sub, ok := c.detectByKeywords(candidate.Description); ok {
		candidate.Category = category
		candidate.Subcategory = sub
		if candidate.Subcategory == "" {
			candidate.Subcategory = c.detectSubcategory(category, candidate.Description)
		}
		candidate.AutoCategorized = true
		return
	}

	candidate.Category = FallbackCategory
}

func (c *Categorizer) detectByKeywords(description string) (category, subcategory string, ok bool) {
	upper := strings.ToUpper(description)
	for _, rule := range c.lexicon {
		for _, kw := range rule.Keywords {
			if strings.Contains(upper, kw) {
				return rule.Category, rule.Subcategory, true
			}
		}
	}
	return "", "", false
}

func (c *Categorizer) detectSubcategory(category, description string) string {
	rules, ok := c.subLexicon[category]
	if !ok {
		return ""
	}
	upper := strings.ToUpper(description)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(upper, kw) {
				return rule.Subcategory
			}
		}
	}
	return ""
}
