package importer

import "strings"

// DefaultCardPaymentPhrases match statement lines that settle a credit-card
// balance. Such a line imported as a plain expense would double-count debt
// already present as purchase transactions on the card.
func DefaultCardPaymentPhrases() []string {
	return []string{
		"PAGO TARJETA",
		"RECIBO TARJETA",
		"LIQUIDACION TARJETA",
		"LIQUIDACIÓN TARJETA",
		"AMORTIZACION TARJETA",
		"CARGO TARJETA CREDITO",
		"CREDIT CARD PAYMENT",
		"CARD PAYMENT",
		"CC PAYMENT",
	}
}

// CardPaymentClassifier flags candidate rows whose description reads like a
// credit-card settlement. It only flags; rerouting to a transfer happens at
// commit, and only when the user designates the settled card.
type CardPaymentClassifier struct {
	phrases []string
}

// NewCardPaymentClassifier builds a classifier; nil selects the defaults.
func NewCardPaymentClassifier(phrases []string) *CardPaymentClassifier {
	if phrases == nil {
		phrases = DefaultCardPaymentPhrases()
	}
	upper := make([]string, len(phrases))
	for i, p := range phrases {
		upper[i] = strings.ToUpper(p)
	}
	return &CardPaymentClassifier{phrases: upper}
}

// IsCardPayment reports whether the cleaned description matches the
// settlement vocabulary.
func (c *CardPaymentClassifier) IsCardPayment(description string) bool {
	upper := strings.ToUpper(description)
	for _, p := range c.phrases {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}
