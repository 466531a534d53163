package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/amqp"
	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	sheetsmem "moneytrack/internal/sheets/memory"
	"moneytrack/internal/storage/memory"
)

type failingWriter struct{}

func (failingWriter) Append(context.Context, core.Expense) (string, error) {
	return "", errors.New("quota exceeded")
}

type fakeConsumer struct {
	msgs []*amqp.ExpenseCommittedMessage
	errs []error
}

func (c *fakeConsumer) ConsumeExpenseCommitted(ctx context.Context, handler func(context.Context, *amqp.ExpenseCommittedMessage) error) error {
	for _, m := range c.msgs {
		c.errs = append(c.errs, handler(ctx, m))
	}
	return nil
}

func seed(t *testing.T) (*ledger.Ledger, core.Expense) {
	t.Helper()
	l := ledger.New(memory.New())
	e, err := l.AddExpense(context.Background(), "7", core.Expense{
		Amount: 15000, Description: "Nasi goreng", Category: "makanan", OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	return l, e
}

func TestSyncWorker_HandleCommitted(t *testing.T) {
	l, e := seed(t)
	sink := sheetsmem.New()
	w := NewSyncWorker(l, sink, nil)

	err := w.HandleCommitted(context.Background(), amqp.NewExpenseCommittedMessage("7", e.ID))
	require.NoError(t, err)
	require.Len(t, sink.Items(), 1)
	assert.Equal(t, e.ID, sink.Items()[0].ID)
}

func TestSyncWorker_SkipsDeletedExpense(t *testing.T) {
	l, _ := seed(t)
	sink := sheetsmem.New()
	w := NewSyncWorker(l, sink, nil)

	err := w.HandleCommitted(context.Background(), amqp.NewExpenseCommittedMessage("7", "missing"))
	require.NoError(t, err)
	assert.Empty(t, sink.Items())
}

func TestSyncWorker_AppendFailureIsReturned(t *testing.T) {
	l, e := seed(t)
	w := NewSyncWorker(l, failingWriter{}, nil)

	err := w.HandleCommitted(context.Background(), amqp.NewExpenseCommittedMessage("7", e.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append to sheets")
}

func TestSyncWorker_Run(t *testing.T) {
	l, e := seed(t)
	sink := sheetsmem.New()
	w := NewSyncWorker(l, sink, nil)
	c := &fakeConsumer{msgs: []*amqp.ExpenseCommittedMessage{amqp.NewExpenseCommittedMessage("7", e.ID)}}

	require.NoError(t, w.Run(context.Background(), c))
	assert.Equal(t, []error{nil}, c.errs)
	assert.Len(t, sink.Items(), 1)
}
