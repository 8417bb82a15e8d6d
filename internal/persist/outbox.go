package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

const defaultQueueSize = 1024

// Outbox queues persistence intents and drains them on a background worker.
// Enqueueing never blocks the mutation path; a full queue drops the intent
// with an error log rather than stalling the ledger.
type Outbox struct {
	persister Persister
	queue     chan Record
	retry     common.RetryOptions
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewOutbox creates an outbox over the given persister.
func NewOutbox(p Persister, retry common.RetryOptions) *Outbox {
	return &Outbox{
		persister: p,
		queue:     make(chan Record, defaultQueueSize),
		retry:     retry,
	}
}

// Start launches the drain worker. The worker keeps draining until Close is
// called; ctx only bounds individual save attempts.
func (o *Outbox) Start(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for rec := range o.queue {
			o.drain(ctx, rec)
		}
	}()
}

func (o *Outbox) drain(ctx context.Context, rec Record) {
	err := common.WithRetry(ctx, func() error {
		return o.persister.Save(ctx, rec)
	}, o.retry)
	if err != nil {
		slog.Error("Persistence failed; local ledger remains authoritative",
			"kind", rec.Kind,
			"error", err)
	}
}

// Close stops accepting intents and waits for the queue to drain.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() {
		close(o.queue)
	})
	o.wg.Wait()
}

func (o *Outbox) enqueue(rec Record) {
	select {
	case o.queue <- rec:
	default:
		slog.Error("Outbox queue full, dropping persistence intent", "kind", rec.Kind)
	}
}

// RecordTransaction queues a transaction upsert.
func (o *Outbox) RecordTransaction(t model.Transaction) {
	o.enqueue(Record{Kind: KindTransaction, Transaction: t})
}

// RecordTransactionDelete queues a transaction removal.
func (o *Outbox) RecordTransactionDelete(id string) {
	o.enqueue(Record{Kind: KindTransactionDelete, DeleteID: id})
}

// RecordAccount queues an account upsert.
func (o *Outbox) RecordAccount(a model.Account) {
	o.enqueue(Record{Kind: KindAccount, Account: a})
}

// RecordGoal queues a goal upsert.
func (o *Outbox) RecordGoal(g model.Goal) {
	o.enqueue(Record{Kind: KindGoal, Goal: g})
}
