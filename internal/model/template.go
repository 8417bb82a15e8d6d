package model

// BankTemplate is an immutable description of one bank's export format.
// It only seeds a ColumnMapping; the user can still remap columns.
type BankTemplate struct {
	ID         string
	Name       string
	Delimiter  rune
	DateFormat string // Go reference layout of the bank's date column

	DateColumn        string
	AmountColumn      string
	DescriptionColumn string
	CategoryColumn    string // optional
	TypeColumn        string // optional

	// NegativeIsExpense is true when the bank writes expenses as negative
	// amounts (the common convention).
	NegativeIsExpense bool
}

// ColumnMapping associates canonical fields with actual file column headers.
// Date and Amount are required before an import can proceed.
type ColumnMapping struct {
	Date              string
	Amount            string
	Description       string
	Category          string
	Type              string
	DateFormat        string
	NegativeIsExpense bool
}

// Mapping returns the template's column mapping prefill.
func (t *BankTemplate) Mapping() ColumnMapping {
	return ColumnMapping{
		Date:              t.DateColumn,
		Amount:            t.AmountColumn,
		Description:       t.DescriptionColumn,
		Category:          t.CategoryColumn,
		Type:              t.TypeColumn,
		DateFormat:        t.DateFormat,
		NegativeIsExpense: t.NegativeIsExpense,
	}
}

// Complete reports whether the required fields are mapped.
func (m *ColumnMapping) Complete() bool {
	return m.Date != "" && m.Amount != ""
}
