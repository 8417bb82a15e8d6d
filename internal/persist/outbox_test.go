package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/model"
)

type fakePersister struct {
	mu      sync.Mutex
	records []Record
	fail    int // fail this many saves before succeeding
}

func (f *fakePersister) Save(_ context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return errors.New("disk on fire")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakePersister) Close() error { return nil }

func (f *fakePersister) saved() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, len(f.records))
	copy(out, f.records)
	return out
}

func TestOutboxDrainsQueuedRecords(t *testing.T) {
	fake := &fakePersister{}
	outbox := NewOutbox(fake, common.RetryOptions{MaxAttempts: 1})
	outbox.Start(context.Background())

	outbox.RecordAccount(model.Account{ID: "bank", Name: "Bank", Kind: model.KindBank})
	outbox.RecordTransaction(model.Transaction{ID: "t1", Type: model.TypeExpense, Amount: decimal.NewFromInt(5)})
	outbox.RecordTransactionDelete("t0")
	outbox.RecordGoal(model.Goal{ID: "g1", Name: "Vacation"})
	outbox.Close()

	records := fake.saved()
	require.Len(t, records, 4)
	assert.Equal(t, KindAccount, records[0].Kind)
	assert.Equal(t, KindTransaction, records[1].Kind)
	assert.Equal(t, "t1", records[1].Transaction.ID)
	assert.Equal(t, KindTransactionDelete, records[2].Kind)
	assert.Equal(t, "t0", records[2].DeleteID)
	assert.Equal(t, KindGoal, records[3].Kind)
}

func TestOutboxRetriesTransientFailures(t *testing.T) {
	fake := &fakePersister{fail: 2}
	outbox := NewOutbox(fake, common.RetryOptions{MaxAttempts: 3, InitialDelay: 1})
	outbox.Start(context.Background())

	outbox.RecordTransaction(model.Transaction{ID: "t1", Type: model.TypeExpense, Amount: decimal.NewFromInt(5)})
	outbox.Close()

	require.Len(t, fake.saved(), 1)
}

func TestOutboxSurvivesPermanentFailure(t *testing.T) {
	fake := &fakePersister{fail: 100}
	outbox := NewOutbox(fake, common.RetryOptions{MaxAttempts: 2, InitialDelay: 1})
	outbox.Start(context.Background())

	// A record the persister keeps rejecting is logged and dropped; later
	// records still drain.
	outbox.RecordTransaction(model.Transaction{ID: "t1", Type: model.TypeExpense, Amount: decimal.NewFromInt(5)})
	outbox.Close()

	assert.Empty(t, fake.saved())
}

func TestOutboxCloseIsIdempotent(t *testing.T) {
	outbox := NewOutbox(&fakePersister{}, common.RetryOptions{})
	outbox.Start(context.Background())
	outbox.Close()
	outbox.Close()
}
