// Package persist implements the best-effort persistence collaborator: an
// outbox that queues intents after local ledger mutations, and a SQLite
// store that drains them. Persistence failures are logged and never affect
// the in-memory ledger, which stays authoritative for the session.
package persist

import (
	"context"

	"github.com/carterahq/cartera/internal/model"
)

// RecordKind identifies what a persistence intent carries.
type RecordKind string

// Record kinds.
const (
	KindTransaction       RecordKind = "transaction"
	KindTransactionDelete RecordKind = "transaction_delete"
	KindAccount           RecordKind = "account"
	KindGoal              RecordKind = "goal"
)

// Record is one persistence intent, emitted after the local mutation has
// already applied.
type Record struct {
	Kind        RecordKind
	Transaction model.Transaction
	Account     model.Account
	Goal        model.Goal
	DeleteID    string
}

// Persister saves one record at a time. Errors are reported to the caller
// (the outbox worker) for retry and logging, never to the mutation path.
type Persister interface {
	Save(ctx context.Context, rec Record) error
	Close() error
}
