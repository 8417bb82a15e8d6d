// Package ledger holds the authoritative in-memory ledger state and the
// controller that mutates it.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

// Store is the single source of truth for accounts, transactions and goals
// during a session. All mutations go through the Controller; the store only
// offers record-level primitives.
//
// The application is single-writer: every mutation runs on one logical
// thread of control, so the store carries no locking.
type Store struct {
	accounts map[string]*model.Account
	txns     map[string]*model.Transaction
	goals    map[string]*model.Goal
	order    []string // transaction insertion order

	// opening balances recorded at account creation, so balances can be
	// recomputed from transaction history.
	opening map[string]decimal.Decimal
}

// NewStore creates an empty ledger store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*model.Account),
		txns:     make(map[string]*model.Transaction),
		goals:    make(map[string]*model.Goal),
		opening:  make(map[string]decimal.Decimal),
	}
}

// AddAccount registers an account. Its current balance is recorded as the
// opening balance for later recomputation.
func (s *Store) AddAccount(a model.Account) (*model.Account, error) {
	if a.ID == "" {
		return nil, fmt.Errorf("%w: missing account id", common.ErrInvalidAccount)
	}
	if _, ok := s.accounts[a.ID]; ok {
		return nil, fmt.Errorf("%w: account %s already exists", common.ErrInvalidAccount, a.ID)
	}
	acc := a
	s.accounts[a.ID] = &acc
	s.opening[a.ID] = a.Balance
	return &acc, nil
}

// Account returns the account with the given id.
func (s *Store) Account(id string) (*model.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	return acc, nil
}

// Accounts returns all accounts.
func (s *Store) Accounts() []*model.Account {
	out := make([]*model.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	return out
}

// AccountCount returns the number of registered accounts.
func (s *Store) AccountCount() int {
	return len(s.accounts)
}

// AddGoal registers a savings goal.
func (s *Store) AddGoal(g model.Goal) (*model.Goal, error) {
	if g.ID == "" {
		return nil, fmt.Errorf("%w: missing goal id", common.ErrInvalidConfig)
	}
	goal := g
	s.goals[g.ID] = &goal
	return &goal, nil
}

// Goal returns the goal with the given id.
func (s *Store) Goal(id string) (*model.Goal, error) {
	g, ok := s.goals[id]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}
	return g, nil
}

// Transaction returns the transaction with the given id.
func (s *Store) Transaction(id string) (*model.Transaction, error) {
	t, ok := s.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return t, nil
}

// Transactions returns copies of all transactions in insertion order.
func (s *Store) Transactions() []model.Transaction {
	out := make([]model.Transaction, 0, len(s.order))
	for _, id := range s.order {
		if t, ok := s.txns[id]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// TransactionsForAccount returns copies of the transactions owned by an account.
func (s *Store) TransactionsForAccount(accountID string) []model.Transaction {
	var out []model.Transaction
	for _, id := range s.order {
		if t, ok := s.txns[id]; ok && t.AccountID == accountID {
			out = append(out, *t)
		}
	}
	return out
}

func (s *Store) insertTransaction(t model.Transaction) *model.Transaction {
	txn := t
	s.txns[t.ID] = &txn
	s.order = append(s.order, t.ID)
	return &txn
}

func (s *Store) updateTransaction(t model.Transaction) {
	txn := t
	s.txns[t.ID] = &txn
}

func (s *Store) removeTransaction(id string) {
	delete(s.txns, id)
	for i, tid := range s.order {
		if tid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// balanceTarget resolves which account actually absorbs a delta, following
// the debit-proxy link.
func (s *Store) balanceTarget(accountID string) (*model.Account, error) {
	acc, err := s.Account(accountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsProxy() {
		return acc, nil
	}
	linked, err := s.Account(acc.LinkedAccountID)
	if err != nil {
		return nil, fmt.Errorf("proxy account %s: linked account: %w", accountID, err)
	}
	return linked, nil
}

// ComputedBalance recomputes an account's balance from its opening balance
// plus the signed sum of every transaction routed to it, following proxy
// redirection. Used to verify the balance invariant.
func (s *Store) ComputedBalance(accountID string) (decimal.Decimal, error) {
	if _, err := s.Account(accountID); err != nil {
		return decimal.Zero, err
	}
	sum := s.opening[accountID]
	for _, id := range s.order {
		t, ok := s.txns[id]
		if !ok {
			continue
		}
		target, err := s.balanceTarget(t.AccountID)
		if err != nil {
			return decimal.Zero, err
		}
		if target.ID == accountID {
			sum = sum.Add(t.SignedAmount())
		}
	}
	return sum, nil
}

// Load replaces the store contents with a persisted snapshot. Balances in
// the snapshot are trusted; openings are rebuilt so ComputedBalance stays
// meaningful for subsequent mutations.
func (s *Store) Load(accounts []model.Account, txns []model.Transaction, goals []model.Goal) {
	s.accounts = make(map[string]*model.Account, len(accounts))
	s.txns = make(map[string]*model.Transaction, len(txns))
	s.goals = make(map[string]*model.Goal, len(goals))
	s.order = s.order[:0]
	s.opening = make(map[string]decimal.Decimal, len(accounts))

	for _, a := range accounts {
		acc := a
		s.accounts[a.ID] = &acc
	}
	for _, t := range txns {
		s.insertTransaction(t)
	}
	for _, g := range goals {
		goal := g
		s.goals[g.ID] = &goal
	}

	// Opening balance = stored balance minus the replayed transaction history.
	for id, acc := range s.accounts {
		replayed := decimal.Zero
		for _, t := range s.txns {
			target, err := s.balanceTarget(t.AccountID)
			if err != nil {
				continue
			}
			if target.ID == id {
				replayed = replayed.Add(t.SignedAmount())
			}
		}
		s.opening[id] = acc.Balance.Sub(replayed)
	}
}
