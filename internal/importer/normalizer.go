// Package importer implements the statement-import reconciliation pipeline:
// reading raw rows, normalizing them into candidate transactions,
// categorizing, validating, flagging duplicates and card payments, computing
// the balance impact, and committing through the ledger controller.
package importer

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/internal/model"
)

// RawRow is one spreadsheet/CSV row keyed by its column header. Values are
// whatever the source file contained; the normalizer is the only place that
// interprets them.
type RawRow map[string]string

// DescriptionPlaceholder replaces an empty description so the row can still
// be imported on its remaining fields.
const DescriptionPlaceholder = "(no description)"

// dateLayouts are tried in order after the mapping's own format. Covers
// day-first and year-first orderings.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"2006-1-2",
	"02/01/06",
}

// NormalizeRow converts one raw row into a candidate transaction. It never
// fails: unparseable fields are left unset for the validator to flag.
func NormalizeRow(row RawRow, mapping model.ColumnMapping, index int) model.CandidateTransaction {
	c := model.CandidateTransaction{
		RowIndex:     index,
		DuplicateRow: -1,
	}

	if raw, ok := row[mapping.Date]; ok {
		if date, parsed := parseDate(raw, mapping.DateFormat); parsed {
			c.Date = date
			c.HasDate = true
		}
	}

	if raw, ok := row[mapping.Amount]; ok {
		if value, parsed := ParseAmount(raw); parsed {
			c.HasAmount = true
			c.Amount = value.Abs()
			c.Type = deriveType(value, row, mapping)
		}
	}

	c.Description = CleanDescription(row[mapping.Description])
	if c.Description == "" {
		c.Description = DescriptionPlaceholder
	}

	return c
}

// parseDate tries the mapped format first, then the known layouts.
func parseDate(raw, preferred string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if preferred != "" {
		if d, err := time.Parse(preferred, raw); err == nil {
			return d, true
		}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ParseAmount normalizes a locale-formatted amount string into a signed
// decimal. It strips currency symbols and thousands separators, accepts both
// EU ("1.234,56") and US ("1,234.56") conventions, and treats
// parenthesis-wrapped numbers as negative.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = s[:len(s)-1]
	}

	// Keep only digits, separators and a leading minus.
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			negative = true
		}
	}
	s = b.String()
	if s == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the one further right is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Comma only: decimal comma when it appears once with at most two
		// digits after it, thousands separator otherwise.
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		value = value.Neg()
	}
	return value, true
}

// deriveType derives INCOME/EXPENSE from the normalized sign, honoring the
// template's sign convention. A mapped type column, when recognizable,
// overrides the sign.
func deriveType(value decimal.Decimal, row RawRow, mapping model.ColumnMapping) model.TransactionType {
	if mapping.Type != "" {
		if t, ok := parseTypeColumn(row[mapping.Type]); ok {
			return t
		}
	}
	if mapping.NegativeIsExpense {
		if value.IsNegative() {
			return model.TypeExpense
		}
		return model.TypeIncome
	}
	// Card-statement convention: positive amounts are charges.
	if value.IsNegative() {
		return model.TypeIncome
	}
	return model.TypeExpense
}

func parseTypeColumn(raw string) (model.TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "income", "ingreso", "abono", "credit", "haber":
		return model.TypeIncome, true
	case "expense", "gasto", "cargo", "debit", "debe":
		return model.TypeExpense, true
	default:
		return "", false
	}
}

// CleanDescription collapses whitespace and drops control characters from a
// free-text description.
func CleanDescription(raw string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range raw {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimRight(b.String(), " ")
}
