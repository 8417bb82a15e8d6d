package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

// Outbox receives persistence intents after a local mutation has already
// applied. Implementations must not block; the local store stays
// authoritative regardless of persistence outcome.
type Outbox interface {
	RecordTransaction(t model.Transaction)
	RecordTransactionDelete(id string)
	RecordAccount(a model.Account)
	RecordGoal(g model.Goal)
}

// Controller orchestrates atomic multi-record ledger mutations. Every
// operation follows the same shape: validate inputs, compute balance deltas,
// apply them, mutate the record set, then hand persistence intents to the
// outbox.
type Controller struct {
	store  *Store
	outbox Outbox
}

// NewController creates a controller over the given store. The outbox may be
// nil, in which case mutations are local-only.
func NewController(store *Store, outbox Outbox) *Controller {
	return &Controller{store: store, outbox: outbox}
}

// Store exposes the underlying store for read-only collaborators.
func (c *Controller) Store() *Store {
	return c.store
}

// TransactionData carries the fields for a new transaction. The ID is
// assigned by the controller.
type TransactionData struct {
	Type        model.TransactionType
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	Subcategory string
	AccountID   string
	Description string
	Recurrence  model.Recurrence
}

func validateType(t model.TransactionType) error {
	if t != model.TypeIncome && t != model.TypeExpense {
		return fmt.Errorf("%w: unknown transaction type %q", common.ErrInvalidAmount, t)
	}
	return nil
}

// AddTransaction creates one transaction and applies its balance delta. If
// the owning account is a debit proxy, the delta lands on the linked account.
func (c *Controller) AddTransaction(data TransactionData) (*model.Transaction, error) {
	if err := validateType(data.Type); err != nil {
		return nil, err
	}
	if !data.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", common.ErrInvalidAmount, data.Amount)
	}
	if _, err := c.store.balanceTarget(data.AccountID); err != nil {
		return nil, err
	}

	txn := model.Transaction{
		ID:          uuid.NewString(),
		Type:        data.Type,
		Amount:      data.Amount,
		Date:        data.Date,
		Category:    data.Category,
		Subcategory: data.Subcategory,
		AccountID:   data.AccountID,
		Description: data.Description,
		Recurrence:  data.Recurrence,
	}

	if err := c.applyEffect(&txn, false); err != nil {
		return nil, err
	}
	created := c.store.insertTransaction(txn)

	c.persistTransaction(*created)
	c.persistAccounts(txn.AccountID)

	return created, nil
}

// EditTransaction replaces a transaction's fields. The old balance effect is
// reversed on the old account before the new effect applies, so reassigning
// the account or changing amount/type keeps every balance consistent.
func (c *Controller) EditTransaction(updated model.Transaction) error {
	old, err := c.store.Transaction(updated.ID)
	if err != nil {
		return err
	}
	if err := validateType(updated.Type); err != nil {
		return err
	}
	if !updated.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", common.ErrInvalidAmount, updated.Amount)
	}
	if _, err := c.store.balanceTarget(updated.AccountID); err != nil {
		return err
	}

	prev := *old
	if err := c.applyEffect(&prev, true); err != nil {
		return err
	}
	if err := c.applyEffect(&updated, false); err != nil {
		// Restore the reversed effect so a failed edit leaves balances intact.
		if restoreErr := c.applyEffect(&prev, false); restoreErr != nil {
			return fmt.Errorf("edit failed and balance restore failed: %v: %w", restoreErr, err)
		}
		return err
	}
	c.store.updateTransaction(updated)

	c.persistTransaction(updated)
	c.persistAccounts(prev.AccountID, updated.AccountID)

	return nil
}

// DeleteTransaction reverses a transaction's balance effect exactly once and
// removes the record.
func (c *Controller) DeleteTransaction(id string) error {
	txn, err := c.store.Transaction(id)
	if err != nil {
		return err
	}
	prev := *txn
	if err := c.applyEffect(&prev, true); err != nil {
		return err
	}
	c.store.removeTransaction(id)

	if c.outbox != nil {
		c.outbox.RecordTransactionDelete(id)
	}
	c.persistAccounts(prev.AccountID)

	return nil
}

// Transfer moves an amount between two accounts as a pair of transactions:
// an expense leg on the source and an income leg on the destination, both
// tagged with the Transfer category. Both legs exist or neither does. An
// optional goal accumulates the transferred amount.
func (c *Controller) Transfer(fromID, toID string, amount decimal.Decimal, date time.Time, goalID, description string) error {
	if fromID == toID {
		return fmt.Errorf("%w: source and destination are the same account", common.ErrInvalidAccount)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive, got %s", common.ErrInvalidAmount, amount)
	}
	from, err := c.store.balanceTarget(fromID)
	if err != nil {
		return err
	}
	to, err := c.store.balanceTarget(toID)
	if err != nil {
		return err
	}
	var goal *model.Goal
	if goalID != "" {
		if goal, err = c.store.Goal(goalID); err != nil {
			return err
		}
	}

	fromAcc, _ := c.store.Account(fromID)
	toAcc, _ := c.store.Account(toID)
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", fromAcc.Name, toAcc.Name)
	}

	out := model.Transaction{
		ID:          uuid.NewString(),
		Type:        model.TypeExpense,
		Amount:      amount,
		Date:        date,
		Category:    model.CategoryTransfer,
		AccountID:   fromID,
		Description: description,
	}
	in := model.Transaction{
		ID:          uuid.NewString(),
		Type:        model.TypeIncome,
		Amount:      amount,
		Date:        date,
		Category:    model.CategoryTransfer,
		AccountID:   toID,
		Description: description,
	}

	// All inputs validated above; from here both legs apply together.
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)
	outLeg := c.store.insertTransaction(out)
	inLeg := c.store.insertTransaction(in)
	if goal != nil {
		goal.Accumulated = goal.Accumulated.Add(amount)
	}

	c.persistTransaction(*outLeg)
	c.persistTransaction(*inLeg)
	c.persistAccounts(fromID, toID)
	if goal != nil && c.outbox != nil {
		c.outbox.RecordGoal(*goal)
	}

	slog.Info("Transfer applied",
		"from", fromID,
		"to", toID,
		"amount", amount,
		"goal", goalID)

	return nil
}

// SettleCreditCycle pays down a credit card's current cycle debt by
// transferring the statement balance from the linked bank account, then
// resets the statement balance. Already-recorded purchase transactions are
// not touched.
func (c *Controller) SettleCreditCycle(cardID string) error {
	card, err := c.store.Account(cardID)
	if err != nil {
		return err
	}
	if card.Kind != model.KindCredit {
		return fmt.Errorf("%w: account %s is not a credit account", common.ErrInvalidAccount, cardID)
	}
	if card.LinkedAccountID == "" {
		return common.NewUserError(
			fmt.Sprintf("credit card %q has no linked bank account; link one before settling the cycle", card.Name),
			common.ErrNoLinkedAccount)
	}
	if _, err := c.store.Account(card.LinkedAccountID); err != nil {
		return common.NewUserError(
			fmt.Sprintf("credit card %q is linked to an unknown account", card.Name),
			err)
	}

	debt := card.StatementBalance
	if !debt.IsPositive() {
		slog.Info("Nothing to settle", "card", cardID, "statement_balance", debt)
		return nil
	}

	desc := fmt.Sprintf("Credit card settlement: %s", card.Name)
	if err := c.Transfer(card.LinkedAccountID, cardID, debt, time.Now(), "", desc); err != nil {
		return err
	}
	card.StatementBalance = decimal.Zero
	c.persistAccounts(cardID)

	slog.Info("Credit cycle settled", "card", cardID, "amount", debt)
	return nil
}

// applyEffect applies (or reverses) the full balance effect of a
// transaction: the signed delta on the resolved target account, and the
// statement-balance movement when the owning account is a credit card.
// Transfer legs never touch statement balance; settlement handles that.
func (c *Controller) applyEffect(t *model.Transaction, reverse bool) error {
	target, err := c.store.balanceTarget(t.AccountID)
	if err != nil {
		return err
	}
	delta := t.SignedAmount()
	if reverse {
		delta = delta.Neg()
	}
	target.Balance = target.Balance.Add(delta)

	owner, err := c.store.Account(t.AccountID)
	if err != nil {
		return err
	}
	if owner.Kind == model.KindCredit && !t.IsTransferLeg() {
		// Cycle debt grows with purchases and shrinks with refunds.
		owner.StatementBalance = owner.StatementBalance.Sub(delta)
	}
	return nil
}

func (c *Controller) persistTransaction(t model.Transaction) {
	if c.outbox != nil {
		c.outbox.RecordTransaction(t)
	}
}

func (c *Controller) persistAccounts(ids ...string) {
	if c.outbox == nil {
		return
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if acc, err := c.store.Account(id); err == nil {
			c.outbox.RecordAccount(*acc)
			// A proxy mutation also dirties the linked account.
			if acc.IsProxy() && !seen[acc.LinkedAccountID] {
				seen[acc.LinkedAccountID] = true
				if linked, err := c.store.Account(acc.LinkedAccountID); err == nil {
					c.outbox.RecordAccount(*linked)
				}
			}
		}
	}
}
