package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

func TestStoreAddAccount(t *testing.T) {
	store := NewStore()

	_, err := store.AddAccount(model.Account{Name: "no id"})
	require.ErrorIs(t, err, common.ErrInvalidAccount)

	_, err = store.AddAccount(model.Account{ID: "a", Name: "A", Kind: model.KindBank})
	require.NoError(t, err)
	_, err = store.AddAccount(model.Account{ID: "a", Name: "again", Kind: model.KindBank})
	require.ErrorIs(t, err, common.ErrInvalidAccount)

	assert.Equal(t, 1, store.AccountCount())
}

func TestStoreTransactionsPreserveInsertionOrder(t *testing.T) {
	store := NewStore()
	addAccount(t, store, model.Account{ID: "a", Name: "A", Kind: model.KindBank})

	for _, id := range []string{"t3", "t1", "t2"} {
		store.insertTransaction(model.Transaction{ID: id, Type: model.TypeExpense, Amount: dec("1"), AccountID: "a"})
	}

	txns := store.Transactions()
	require.Len(t, txns, 3)
	assert.Equal(t, "t3", txns[0].ID)
	assert.Equal(t, "t1", txns[1].ID)
	assert.Equal(t, "t2", txns[2].ID)

	store.removeTransaction("t1")
	txns = store.Transactions()
	require.Len(t, txns, 2)
	assert.Equal(t, "t3", txns[0].ID)
	assert.Equal(t, "t2", txns[1].ID)
}

func TestBalanceTargetFollowsProxyLink(t *testing.T) {
	store := NewStore()
	addAccount(t, store, model.Account{ID: "bank", Name: "Bank", Kind: model.KindBank})
	addAccount(t, store, model.Account{ID: "proxy", Name: "Card", Kind: model.KindDebitProxy, LinkedAccountID: "bank"})
	addAccount(t, store, model.Account{ID: "orphan", Name: "Orphan", Kind: model.KindDebitProxy, LinkedAccountID: "gone"})

	target, err := store.balanceTarget("proxy")
	require.NoError(t, err)
	assert.Equal(t, "bank", target.ID)

	target, err = store.balanceTarget("bank")
	require.NoError(t, err)
	assert.Equal(t, "bank", target.ID)

	_, err = store.balanceTarget("orphan")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoadRebuildsOpeningBalances(t *testing.T) {
	store := NewStore()
	store.Load(
		[]model.Account{
			{ID: "bank", Name: "Bank", Kind: model.KindBank, Balance: dec("800")},
		},
		[]model.Transaction{
			{ID: "t1", Type: model.TypeIncome, Amount: dec("300"), AccountID: "bank"},
			{ID: "t2", Type: model.TypeExpense, Amount: dec("100"), AccountID: "bank"},
		},
		[]model.Goal{
			{ID: "g1", Name: "Vacation", Target: dec("1000"), Accumulated: dec("250")},
		},
	)

	// Snapshot balance 800 with +200 of replayed history means the opening
	// was 600, so the invariant holds immediately after load.
	computed, err := store.ComputedBalance("bank")
	require.NoError(t, err)
	assert.Equal(t, "800", computed.String())

	goal, err := store.Goal("g1")
	require.NoError(t, err)
	assert.Equal(t, "250", goal.Accumulated.String())
	require.Len(t, store.Transactions(), 2)
}

func TestLoadReplacesPreviousContents(t *testing.T) {
	store := NewStore()
	addAccount(t, store, model.Account{ID: "old", Name: "Old", Kind: model.KindBank})
	store.insertTransaction(model.Transaction{ID: "t-old", Type: model.TypeExpense, Amount: dec("5"), AccountID: "old"})

	store.Load(
		[]model.Account{{ID: "new", Name: "New", Kind: model.KindBank, Balance: dec("10")}},
		nil, nil,
	)

	_, err := store.Account("old")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.Transaction("t-old")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 1, store.AccountCount())
}
