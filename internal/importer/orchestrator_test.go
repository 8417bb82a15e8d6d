package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/ledger"
	"github.com/carterahq/cartera/internal/model"
)

var statementMapping = model.ColumnMapping{
	Date:              "Fecha",
	Amount:            "Importe",
	Description:       "Concepto",
	DateFormat:        "02/01/2006",
	NegativeIsExpense: true,
}

func statementSource() *Source {
	return &Source{
		Headers: []string{"Fecha", "Importe", "Concepto"},
		Rows: []RawRow{
			{"Fecha": "01/03/2024", "Importe": "1.200,00", "Concepto": "NOMINA EMPRESA SL"},
			{"Fecha": "05/03/2024", "Importe": "-55,25", "Concepto": "COMPRA MERCADONA"},
			{"Fecha": "10/03/2024", "Importe": "-120,00", "Concepto": "PAGO TARJETA VISA 4321"},
			{"Fecha": "ayer", "Importe": "-10,00", "Concepto": "SIN FECHA"},
		},
	}
}

func newImportLedger(t *testing.T) (*ledger.Store, *ledger.Controller) {
	t.Helper()
	store := ledger.NewStore()
	_, err := store.AddAccount(model.Account{
		ID: "bank", Name: "Bank", Kind: model.KindBank, Balance: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	return store, ledger.NewController(store, nil)
}

func toPreview(t *testing.T, ctrl *ledger.Controller, src *Source) *Orchestrator {
	t.Helper()
	orch := NewOrchestrator(ctrl, Config{})
	require.NoError(t, orch.Upload(src))
	require.NoError(t, orch.SelectMapping(statementMapping))
	require.Equal(t, StepColumnMapping, orch.Step(), "single account skips account selection")
	require.NoError(t, orch.ConfirmMapping())
	require.Equal(t, StepPreview, orch.Step())
	return orch
}

func TestOrchestratorPreviewReport(t *testing.T) {
	_, ctrl := newImportLedger(t)
	orch := toPreview(t, ctrl, statementSource())

	report := orch.Report()
	require.NotNil(t, report)
	require.Len(t, report.Candidates, 4)

	require.Len(t, report.Validation, 1)
	assert.Equal(t, 3, report.Validation[0].RowIndex)
	assert.Equal(t, model.InvalidDate, report.Validation[0].Code)

	assert.Equal(t, "Salary", report.Candidates[0].Category)
	assert.True(t, report.Candidates[0].AutoCategorized)
	assert.Equal(t, "Groceries", report.Candidates[1].Category)
	assert.True(t, report.Candidates[2].CardPayment)

	// Preview impact covers the two regular valid rows; the card-payment row
	// is set aside because its effect arrives through a transfer.
	assert.Equal(t, "1144.75", report.Impact.Net.String())
	assert.Equal(t, "2144.75", report.Impact.ProjectedBalance.String())
}

func TestOrchestratorStateGuards(t *testing.T) {
	_, ctrl := newImportLedger(t)
	orch := NewOrchestrator(ctrl, Config{})

	require.ErrorIs(t, orch.ConfirmMapping(), common.ErrBadTransition)
	require.ErrorIs(t, orch.SelectMapping(statementMapping), common.ErrBadTransition)
	_, err := orch.Commit(CommitOptions{})
	require.ErrorIs(t, err, common.ErrBadTransition)

	require.ErrorIs(t, orch.Upload(&Source{}), common.ErrEmptyFile)
	require.NoError(t, orch.Upload(statementSource()))
	require.ErrorIs(t, orch.Upload(statementSource()), common.ErrBadTransition)
}

func TestOrchestratorAccountSelection(t *testing.T) {
	store, ctrl := newImportLedger(t)
	_, err := store.AddAccount(model.Account{ID: "savings", Name: "Savings", Kind: model.KindBank})
	require.NoError(t, err)

	orch := NewOrchestrator(ctrl, Config{})
	require.NoError(t, orch.Upload(statementSource()))
	require.NoError(t, orch.SelectMapping(statementMapping))
	require.Equal(t, StepAccountSelect, orch.Step(), "two accounts require an explicit choice")

	require.ErrorIs(t, orch.SelectAccount("nope"), common.ErrNotFound)
	require.NoError(t, orch.SelectAccount("bank"))
	require.Equal(t, StepColumnMapping, orch.Step())
}

func TestOrchestratorMappingGate(t *testing.T) {
	_, ctrl := newImportLedger(t)
	orch := NewOrchestrator(ctrl, Config{})
	require.NoError(t, orch.Upload(statementSource()))
	require.NoError(t, orch.SelectMapping(model.ColumnMapping{Date: "Fecha"}))

	err := orch.ConfirmMapping()
	require.ErrorIs(t, err, common.ErrMappingIncomplete)
	require.Equal(t, StepColumnMapping, orch.Step(), "incomplete mapping blocks the flow")

	// A complete mapping naming headers the file lacks also blocks.
	require.NoError(t, orch.SetMapping(model.ColumnMapping{Date: "Fecha", Amount: "Cantidad"}))
	require.ErrorIs(t, orch.ConfirmMapping(), common.ErrMappingIncomplete)

	require.NoError(t, orch.SetMapping(statementMapping))
	require.NoError(t, orch.ConfirmMapping())
}

func TestOrchestratorBack(t *testing.T) {
	_, ctrl := newImportLedger(t)
	orch := toPreview(t, ctrl, statementSource())

	require.NoError(t, orch.Back())
	assert.Equal(t, StepColumnMapping, orch.Step())
	assert.Nil(t, orch.Report(), "leaving preview discards the report")

	// The account step was skipped on the way in, so back skips it too.
	require.NoError(t, orch.Back())
	assert.Equal(t, StepTemplateSelect, orch.Step())
	require.NoError(t, orch.Back())
	assert.Equal(t, StepUpload, orch.Step())
	require.Error(t, orch.Back())
}

func TestOrchestratorAbandonHasNoSideEffects(t *testing.T) {
	store, ctrl := newImportLedger(t)
	orch := toPreview(t, ctrl, statementSource())

	orch.Abandon()

	assert.Equal(t, StepUpload, orch.Step())
	assert.Empty(t, store.Transactions())
	bank, err := store.Account("bank")
	require.NoError(t, err)
	assert.Equal(t, "1000", bank.Balance.String())
}

func TestOrchestratorCommitWithCreditCard(t *testing.T) {
	store, ctrl := newImportLedger(t)
	card, err := store.AddAccount(model.Account{
		ID: "card", Name: "Visa", Kind: model.KindCredit,
		Balance: decimal.NewFromInt(-120), StatementBalance: decimal.NewFromInt(120),
		LinkedAccountID: "bank",
	})
	require.NoError(t, err)

	orch := NewOrchestrator(ctrl, Config{})
	require.NoError(t, orch.Upload(statementSource()))
	require.NoError(t, orch.SelectMapping(statementMapping))
	require.NoError(t, orch.SelectAccount("bank"))
	require.NoError(t, orch.ConfirmMapping())

	result, err := orch.Commit(CommitOptions{CreditCardAccountID: "card"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 1, result.TransferredCount)
	assert.Equal(t, StepDone, orch.Step())

	bank, err := store.Account("bank")
	require.NoError(t, err)
	// 1000 + 1200 - 55.25 - 120 (card settlement leaves via transfer).
	assert.Equal(t, "2024.75", bank.Balance.String())
	assert.Equal(t, "0", card.Balance.String())
	assert.Equal(t, "120", card.StatementBalance.String(),
		"import transfers never touch the statement balance")

	// Two regular rows plus both transfer legs; the invalid row is gone.
	require.Len(t, store.Transactions(), 4)
	computed, err := store.ComputedBalance("bank")
	require.NoError(t, err)
	assert.True(t, bank.Balance.Equal(computed))
}

func TestOrchestratorCommitStatementScenario(t *testing.T) {
	store, ctrl := newImportLedger(t)
	card, err := store.AddAccount(model.Account{
		ID: "card", Name: "Visa", Kind: model.KindCredit,
		Balance: decimal.NewFromInt(-300), LinkedAccountID: "bank",
	})
	require.NoError(t, err)

	src := &Source{
		Headers: []string{"Fecha", "Importe", "Concepto"},
		Rows: []RawRow{
			{"Fecha": "05/01/2024", "Importe": "-50,00", "Concepto": "SUPERMERCADO"},
			{"Fecha": "06/01/2024", "Importe": "1200", "Concepto": "NOMINA"},
			{"Fecha": "06/01/2024", "Importe": "-45,00", "Concepto": "PAGO TARJETA VISA"},
		},
	}

	orch := NewOrchestrator(ctrl, Config{})
	require.NoError(t, orch.Upload(src))
	require.NoError(t, orch.SelectMapping(statementMapping))
	require.NoError(t, orch.SelectAccount("bank"))
	require.NoError(t, orch.ConfirmMapping())

	// The regular batch nets +1150 over the €1,000 start.
	assert.Equal(t, "2150", orch.Report().Impact.ProjectedBalance.String())

	result, err := orch.Commit(CommitOptions{CreditCardAccountID: "card"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 1, result.TransferredCount)

	bank, err := store.Account("bank")
	require.NoError(t, err)
	assert.Equal(t, "2105", bank.Balance.String(), "the transfer takes a further 45 off the bank")
	assert.Equal(t, "-255", card.Balance.String())
}

func TestOrchestratorCommitWithoutCreditCardFallsBack(t *testing.T) {
	store, ctrl := newImportLedger(t)
	orch := toPreview(t, ctrl, statementSource())

	result, err := orch.Commit(CommitOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ImportedCount, "card-payment row imports as a plain expense")
	assert.Equal(t, 0, result.TransferredCount)

	bank, err := store.Account("bank")
	require.NoError(t, err)
	assert.Equal(t, "2024.75", bank.Balance.String())
}

func TestOrchestratorCommitValidatesCreditAccount(t *testing.T) {
	store, ctrl := newImportLedger(t)
	_, err := store.AddAccount(model.Account{ID: "savings", Name: "Savings", Kind: model.KindBank})
	require.NoError(t, err)

	orch := NewOrchestrator(ctrl, Config{})
	require.NoError(t, orch.Upload(statementSource()))
	require.NoError(t, orch.SelectMapping(statementMapping))
	require.NoError(t, orch.SelectAccount("bank"))
	require.NoError(t, orch.ConfirmMapping())

	_, err = orch.Commit(CommitOptions{CreditCardAccountID: "savings"})
	require.ErrorIs(t, err, common.ErrInvalidAccount, "designated account must be a credit account")
	assert.Empty(t, store.Transactions())
}

func TestOrchestratorExcludeDuplicates(t *testing.T) {
	store, ctrl := newImportLedger(t)
	_, err := ctrl.AddTransaction(ledger.TransactionData{
		Type:        model.TypeExpense,
		Amount:      decimal.RequireFromString("55.25"),
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Category:    "Groceries",
		AccountID:   "bank",
		Description: "COMPRA MERCADONA",
	})
	require.NoError(t, err)

	orch := toPreview(t, ctrl, statementSource())
	require.Len(t, orch.Report().Duplicates, 1)

	// With no credit account designated the card-payment row stays in the
	// regular set, so it counts alongside the salary row.
	impact, err := orch.ImpactFor(CommitOptions{ExcludeDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, "1080", impact.Net.String())

	result, err := orch.Commit(CommitOptions{ExcludeDuplicates: true})
	require.NoError(t, err)
	// Salary plus the card-payment fallback row; the duplicate is skipped.
	assert.Equal(t, 2, result.ImportedCount)

	txns := store.Transactions()
	require.Len(t, txns, 3)
}

func TestOrchestratorProgressCallback(t *testing.T) {
	_, ctrl := newImportLedger(t)
	var calls []int
	orch := NewOrchestrator(ctrl, Config{
		OnRow: func(done, total int) {
			require.Equal(t, 4, total)
			calls = append(calls, done)
		},
	})
	require.NoError(t, orch.Upload(statementSource()))
	require.NoError(t, orch.SelectMapping(statementMapping))
	require.NoError(t, orch.ConfirmMapping())

	assert.Equal(t, []int{1, 2, 3, 4}, calls)
}
