package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

// OFX statements carry canonical fields already, so they are flattened into
// raw rows under fixed headers and run through the same pipeline as CSV.
const (
	ofxDateHeader        = "Date"
	ofxAmountHeader      = "Amount"
	ofxDescriptionHeader = "Description"
)

// OFXMapping returns the column mapping for rows produced by ReadOFX.
func OFXMapping() model.ColumnMapping {
	return model.ColumnMapping{
		Date:              ofxDateHeader,
		Amount:            ofxAmountHeader,
		Description:       ofxDescriptionHeader,
		DateFormat:        "2006-01-02",
		NegativeIsExpense: true,
	}
}

// ReadOFX parses an OFX/QFX statement into raw rows.
func ReadOFX(r io.Reader) (*Source, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(strings.TrimLeft(string(content), " \t\r\n")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	src := &Source{Headers: []string{ofxDateHeader, ofxAmountHeader, ofxDescriptionHeader}}

	appendStatement := func(txns []ofxgo.Transaction) {
		for _, t := range txns {
			desc := string(t.Name)
			if t.Payee != nil && t.Payee.Name != "" {
				desc = string(t.Payee.Name)
			} else if t.Memo != "" && desc == "" {
				desc = string(t.Memo)
			}
			src.Rows = append(src.Rows, RawRow{
				ofxDateHeader:        t.DtPosted.Time.Format("2006-01-02"),
				ofxAmountHeader:      t.TrnAmt.String(),
				ofxDescriptionHeader: desc,
			})
		}
	}

	var bankStmts, ccStmts int
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			appendStatement(stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			appendStatement(stmt.BankTranList.Transactions)
		}
	}

	if len(src.Rows) == 0 {
		return nil, common.ErrEmptyFile
	}

	slog.Info("Parsed OFX file",
		"rows", len(src.Rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return src, nil
}
