package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterahq/cartera/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := model.Account{
		ID:               "card",
		Name:             "Visa",
		Kind:             model.KindCredit,
		Balance:          decimal.RequireFromString("-120.50"),
		CreditLimit:      decimal.NewFromInt(1500),
		CutoffDay:        25,
		PaymentDay:       5,
		PaymentMode:      model.PayInFull,
		StatementBalance: decimal.RequireFromString("120.50"),
		LinkedAccountID:  "bank",
	}
	txn := model.Transaction{
		ID:          "t1",
		Type:        model.TypeExpense,
		Amount:      decimal.RequireFromString("55.25"),
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Category:    "Groceries",
		Subcategory: "Food",
		AccountID:   "card",
		Description: "MERCADONA",
		Recurrence:  model.Recurrence{Frequency: "monthly", Recurring: true},
	}
	goal := model.Goal{
		ID: "g1", Name: "Vacation",
		Target: decimal.NewFromInt(1000), Accumulated: decimal.NewFromInt(250),
	}

	require.NoError(t, store.Save(ctx, Record{Kind: KindAccount, Account: account}))
	require.NoError(t, store.Save(ctx, Record{Kind: KindTransaction, Transaction: txn}))
	require.NoError(t, store.Save(ctx, Record{Kind: KindGoal, Goal: goal}))

	accounts, txns, goals, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)

	require.Len(t, accounts, 1)
	assert.Equal(t, account.ID, accounts[0].ID)
	assert.Equal(t, model.KindCredit, accounts[0].Kind)
	assert.True(t, accounts[0].Balance.Equal(account.Balance))
	assert.True(t, accounts[0].StatementBalance.Equal(account.StatementBalance))
	assert.Equal(t, 25, accounts[0].CutoffDay)
	assert.Equal(t, "bank", accounts[0].LinkedAccountID)

	require.Len(t, txns, 1)
	assert.Equal(t, txn.ID, txns[0].ID)
	assert.True(t, txns[0].Amount.Equal(txn.Amount))
	assert.True(t, txns[0].Date.Equal(txn.Date))
	assert.Equal(t, "Groceries", txns[0].Category)
	assert.True(t, txns[0].Recurrence.Recurring)

	require.Len(t, goals, 1)
	assert.True(t, goals[0].Accumulated.Equal(goal.Accumulated))
}

func TestSaveUpsertsByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account := model.Account{ID: "bank", Name: "Bank", Kind: model.KindBank, Balance: decimal.NewFromInt(100)}
	require.NoError(t, store.Save(ctx, Record{Kind: KindAccount, Account: account}))

	account.Balance = decimal.NewFromInt(250)
	require.NoError(t, store.Save(ctx, Record{Kind: KindAccount, Account: account}))

	accounts, _, _, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "250", accounts[0].Balance.String())
}

func TestSaveTransactionDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	txn := model.Transaction{
		ID: "t1", Type: model.TypeExpense,
		Amount: decimal.NewFromInt(10), Date: time.Now().UTC(), AccountID: "bank",
	}
	require.NoError(t, store.Save(ctx, Record{Kind: KindTransaction, Transaction: txn}))
	require.NoError(t, store.Save(ctx, Record{Kind: KindTransactionDelete, DeleteID: "t1"}))

	_, txns, _, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	// Deleting an absent row is not an error.
	require.NoError(t, store.Save(ctx, Record{Kind: KindTransactionDelete, DeleteID: "t1"}))
}

func TestSaveUnknownKind(t *testing.T) {
	store := newTestStore(t)
	require.Error(t, store.Save(context.Background(), Record{Kind: "bogus"}))
}

func TestNewSQLiteStoreEmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	require.Error(t, err)
}
