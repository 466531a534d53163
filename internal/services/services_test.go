package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/amqp"
	"moneytrack/internal/budget"
	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	"moneytrack/internal/report"
	sheetsmem "moneytrack/internal/sheets/memory"
	"moneytrack/internal/storage/memory"
)

var (
	day1 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
)

func newLedger() *ledger.Ledger {
	return ledger.New(memory.New()).WithClock(func() time.Time { return day1 })
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ExpenseCommittedMessage
	err  error
}

func (p *recordingPublisher) PublishExpenseCommitted(_ context.Context, msg *amqp.ExpenseCommittedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func expense(amount int64, cat core.Category, at time.Time) core.Expense {
	return core.Expense{Amount: amount, Description: "item", Category: cat, OccurredAt: at}
}

func TestExpenseService_CommitPublishes(t *testing.T) {
	l := newLedger()
	pub := &recordingPublisher{}
	s := NewExpenseService(l, pub, time.UTC, nil)

	saved, err := s.Commit(context.Background(), "1", expense(15000, "makanan", day1))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, saved.ID, pub.msgs[0].ExpenseID)
	assert.Equal(t, "1", pub.msgs[0].UserID)
}

func TestExpenseService_PublishFailureDoesNotFailCommit(t *testing.T) {
	l := newLedger()
	s := NewExpenseService(l, &recordingPublisher{err: errors.New("broker down")}, time.UTC, nil)

	_, err := s.Commit(context.Background(), "1", expense(1000, "makanan", day1))
	require.NoError(t, err)

	all, err := l.Expenses(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExpenseService_CommitRejectsInvalid(t *testing.T) {
	l := newLedger()
	pub := &recordingPublisher{}
	s := NewExpenseService(l, pub, time.UTC, nil)

	_, err := s.Commit(context.Background(), "1", expense(0, "makanan", day1))
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, pub.msgs)
}

func TestExpenseService_DailyAlert(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	s := NewExpenseService(l, nil, time.UTC, nil)
	now := day1.Add(12 * time.Hour)

	_, ok, err := s.DailyAlert(ctx, "1", now)
	require.NoError(t, err)
	assert.False(t, ok, "no budget means no evaluation")

	_, err = s.SetBudget(ctx, "1", core.Daily, 100000)
	require.NoError(t, err)
	_, err = s.SetBudget(ctx, "1", core.Weekly, 10000)
	require.NoError(t, err)

	_, err = s.Commit(ctx, "1", expense(80000, "makanan", day1))
	require.NoError(t, err)
	alert, ok, err := s.DailyAlert(ctx, "1", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, budget.LevelWarning, alert.Level)
	assert.Equal(t, int64(20000), alert.Remaining)
	assert.Equal(t, core.Daily, alert.Period)

	_, err = s.Commit(ctx, "1", expense(20000, "minuman", day1))
	require.NoError(t, err)
	alert, ok, err = s.DailyAlert(ctx, "1", now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, budget.LevelExceeded, alert.Level)
	assert.Equal(t, int64(0), alert.Overage)
}

func TestDeletionService_DeleteTodayEmptiesTodayWindow(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	for _, e := range []core.Expense{
		expense(15000, "makanan", day1),
		expense(5000, "minuman", day2),
		expense(2500, "parkir", day1.Add(time.Hour)),
	} {
		_, err := l.AddExpense(ctx, "1", e)
		require.NoError(t, err)
	}
	s := NewDeletionService(l, time.UTC, nil)
	now := day1.Add(12 * time.Hour)

	r, err := s.DeleteToday(ctx, "1", now)
	require.NoError(t, err)
	assert.Equal(t, core.Removal{Count: 2, Sum: 17500}, r)

	rest, err := l.Expenses(ctx, "1")
	require.NoError(t, err)
	a := report.Compute(rest, report.Today, now, time.UTC)
	assert.Equal(t, int64(0), a.Total)
	assert.Equal(t, 0, a.Count)
	assert.Len(t, rest, 1)

	r, err = s.DeleteToday(ctx, "1", now)
	require.NoError(t, err)
	assert.True(t, r.Empty())
}

func TestDeletionService_DeleteWeekAndAll(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	for _, e := range []core.Expense{
		expense(1000, "makanan", now.Add(-8*24*time.Hour)),
		expense(2000, "makanan", now.Add(-7*24*time.Hour)),
		expense(3000, "makanan", now.Add(-time.Hour)),
	} {
		_, err := l.AddExpense(ctx, "1", e)
		require.NoError(t, err)
	}
	s := NewDeletionService(l, time.UTC, nil)

	r, err := s.DeleteWeek(ctx, "1", now)
	require.NoError(t, err)
	assert.Equal(t, core.Removal{Count: 2, Sum: 5000}, r)

	r, err = s.DeleteAll(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, core.Removal{Count: 1, Sum: 1000}, r)

	r, err = s.DeleteAll(ctx, "1")
	require.NoError(t, err)
	assert.True(t, r.Empty())
}

func TestReportService_BudgetLineOnlyWhenConfigured(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	_, err := l.AddExpense(ctx, "1", expense(15000, "makanan", day1))
	require.NoError(t, err)
	_, err = l.AddExpense(ctx, "1", expense(5000, "minuman", day2))
	require.NoError(t, err)
	s := NewReportService(l, time.UTC)
	now := day1.Add(12 * time.Hour)

	d, err := s.Daily(ctx, "1", now)
	require.NoError(t, err)
	assert.Nil(t, d.Budget)
	assert.Equal(t, int64(15000), d.Total)
	assert.Equal(t, "100.0", d.Percentage(15000).StringFixed(1))

	_, err = l.SetBudget(ctx, "1", core.Daily, 10000)
	require.NoError(t, err)
	d, err = s.Daily(ctx, "1", now)
	require.NoError(t, err)
	require.NotNil(t, d.Budget)
	assert.Equal(t, int64(-5000), d.Budget.Remaining)

	w, err := s.Weekly(ctx, "1", day2.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(20000), w.Total)
	assert.Nil(t, w.Budget)

	h, err := s.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, h.Entries, 2)
	assert.Equal(t, int64(5000), h.Entries[0].Amount)

	statuses, err := s.Budgets(ctx, "1", now)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, core.Daily, statuses[0].Period)
}

func TestExportService(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	exporter := sheetsmem.New()
	s := NewExportService(l, exporter, time.UTC, nil)

	_, _, err := s.Export(ctx, "1", day1)
	require.ErrorIs(t, err, ErrNothingToExport)

	_, err = l.AddExpense(ctx, "1", expense(15000, "makanan", day1))
	require.NoError(t, err)
	_, err = l.AddExpense(ctx, "2", expense(99000, "bensin", day1))
	require.NoError(t, err)

	f, w, err := s.Export(ctx, "1", day1)
	require.NoError(t, err)
	assert.Equal(t, "mem-export-1-1.xlsx", f.Name)
	assert.Equal(t, "1", w.OwnerID)
	assert.Equal(t, int64(15000), w.Total)
	require.Len(t, w.Details, 1)
	assert.Equal(t, core.Category("makanan"), w.Details[0].Category)
	assert.Len(t, exporter.Workbooks(), 1)

	var disabled *ExportService
	assert.False(t, disabled.Enabled())
}

func TestUserLocks_SerializesPerUser(t *testing.T) {
	locks := NewUserLocks()
	var mu sync.Mutex
	inside := 0
	maxInside := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("1")
			defer unlock()
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
	assert.Equal(t, 0, locks.Len())
}

func TestUserLocks_IndependentUsers(t *testing.T) {
	locks := NewUserLocks()
	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
	unlockA()
}
