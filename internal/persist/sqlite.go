package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Persister using SQLite. It doubles as the snapshot
// source the CLI loads at startup.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save persists one record.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	switch rec.Kind {
	case KindTransaction:
		return s.saveTransaction(ctx, rec.Transaction)
	case KindTransactionDelete:
		return s.deleteTransaction(ctx, rec.DeleteID)
	case KindAccount:
		return s.saveAccount(ctx, rec.Account)
	case KindGoal:
		return s.saveGoal(ctx, rec.Goal)
	default:
		return fmt.Errorf("unknown record kind %q", rec.Kind)
	}
}

func (s *SQLiteStore) saveTransaction(ctx context.Context, t model.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount, date, category, subcategory, account_id, description, recur_frequency, recurring, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			amount = excluded.amount,
			date = excluded.date,
			category = excluded.category,
			subcategory = excluded.subcategory,
			account_id = excluded.account_id,
			description = excluded.description,
			recur_frequency = excluded.recur_frequency,
			recurring = excluded.recurring,
			updated_at = CURRENT_TIMESTAMP`,
		t.ID, string(t.Type), t.Amount.String(), t.Date.Format(time.RFC3339),
		t.Category, t.Subcategory, t.AccountID, t.Description,
		t.Recurrence.Frequency, boolToInt(t.Recurrence.Recurring))
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLiteStore) deleteTransaction(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) saveAccount(ctx context.Context, a model.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, kind, balance, credit_limit, cutoff_day, payment_day, payment_mode, statement_balance, linked_account_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			balance = excluded.balance,
			credit_limit = excluded.credit_limit,
			cutoff_day = excluded.cutoff_day,
			payment_day = excluded.payment_day,
			payment_mode = excluded.payment_mode,
			statement_balance = excluded.statement_balance,
			linked_account_id = excluded.linked_account_id,
			updated_at = CURRENT_TIMESTAMP`,
		a.ID, a.Name, string(a.Kind), a.Balance.String(), a.CreditLimit.String(),
		a.CutoffDay, a.PaymentDay, string(a.PaymentMode), a.StatementBalance.String(),
		a.LinkedAccountID)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteStore) saveGoal(ctx context.Context, g model.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target, accumulated, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			target = excluded.target,
			accumulated = excluded.accumulated,
			updated_at = CURRENT_TIMESTAMP`,
		g.ID, g.Name, g.Target.String(), g.Accumulated.String())
	if err != nil {
		return fmt.Errorf("failed to save goal %s: %w", g.ID, err)
	}
	return nil
}

// LoadSnapshot reads the persisted ledger so a new session can hydrate the
// in-memory store.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) ([]model.Account, []model.Transaction, []model.Goal, error) {
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	txns, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return accounts, txns, goals, nil
}

func (s *SQLiteStore) loadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, balance, credit_limit, cutoff_day, payment_day, payment_mode, statement_balance, linked_account_id
		FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var kind, mode, balance, limit, statement string
		if err := rows.Scan(&a.ID, &a.Name, &kind, &balance, &limit,
			&a.CutoffDay, &a.PaymentDay, &mode, &statement, &a.LinkedAccountID); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Kind = model.AccountKind(kind)
		a.PaymentMode = model.PaymentMode(mode)
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s: bad balance %q: %w", a.ID, balance, err)
		}
		if a.CreditLimit, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("account %s: bad credit limit %q: %w", a.ID, limit, err)
		}
		if a.StatementBalance, err = decimal.NewFromString(statement); err != nil {
			return nil, fmt.Errorf("account %s: bad statement balance %q: %w", a.ID, statement, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount, date, category, subcategory, account_id, description, recur_frequency, recurring
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var typ, amount, date string
		var recurring int
		if err := rows.Scan(&t.ID, &typ, &amount, &date, &t.Category, &t.Subcategory,
			&t.AccountID, &t.Description, &t.Recurrence.Frequency, &recurring); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = model.TransactionType(typ)
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: bad amount %q: %w", t.ID, amount, err)
		}
		if t.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("transaction %s: bad date %q: %w", t.ID, date, err)
		}
		t.Recurrence.Recurring = recurring != 0
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (s *SQLiteStore) loadGoals(ctx context.Context) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, target, accumulated FROM goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		var target, accumulated string
		if err := rows.Scan(&g.ID, &g.Name, &target, &accumulated); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if g.Target, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("goal %s: bad target %q: %w", g.ID, target, err)
		}
		if g.Accumulated, err = decimal.NewFromString(accumulated); err != nil {
			return nil, fmt.Errorf("goal %s: bad accumulated %q: %w", g.ID, accumulated, err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
