package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	"moneytrack/internal/session"
	"moneytrack/internal/storage/memory"
)

var fixedNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func newLedger() *ledger.Ledger {
	return ledger.New(memory.New()).WithClock(func() time.Time { return fixedNow })
}

func TestLedger_Expenses(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	first, err := l.AddExpense(ctx, "1", core.Expense{Amount: 15000, Description: "Lunch", Category: "makanan", OccurredAt: fixedNow})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "1", first.OwnerID)
	assert.Equal(t, fixedNow, first.CreatedAt)

	second, err := l.AddExpense(ctx, "1", core.Expense{Amount: 5000, Description: "Tea", Category: "minuman", OccurredAt: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	_, err = l.AddExpense(ctx, "2", core.Expense{Amount: 1, Description: "Other", Category: "air", OccurredAt: fixedNow})
	require.NoError(t, err)

	got, err := l.Expenses(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, core.Category("minuman"), got[1].Category)
	assert.True(t, got[1].OccurredAt.Equal(fixedNow.Add(time.Hour)))

	one, found, err := l.Expense(ctx, "1", second.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Tea", one.Description)

	require.NoError(t, l.RemoveExpenses(ctx, "1", []string{first.ID}))
	got, err = l.Expenses(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, l.RemoveAllExpenses(ctx, "1"))
	got, err = l.Expenses(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, got)

	other, err := l.Expenses(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestLedger_AddExpenseRejectsInvalid(t *testing.T) {
	l := newLedger()
	_, err := l.AddExpense(context.Background(), "1", core.Expense{Amount: 0, Description: "Lunch", Category: "makanan", OccurredAt: fixedNow})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestLedger_Budgets(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	_, found, err := l.Budget(ctx, "1", core.Daily)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = l.SetBudget(ctx, "1", core.Daily, 100000)
	require.NoError(t, err)
	_, err = l.SetBudget(ctx, "1", core.Daily, 50000)
	require.NoError(t, err)

	b, found, err := l.Budget(ctx, "1", core.Daily)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(50000), b.Amount)

	all, err := l.Budgets(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = l.SetBudget(ctx, "1", core.Weekly, 0)
	assert.ErrorIs(t, err, core.ErrInvalidBudget)
	_, err = l.SetBudget(ctx, "1", core.Period("yearly"), 10)
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)
}

func TestLedger_Session(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	s, err := l.Session(ctx, "1")
	require.NoError(t, err)
	assert.True(t, s.IsIdle())

	want := session.State{Stage: session.StageAwaitingEntry, Category: "bensin", Version: 2, UpdatedAt: fixedNow}
	require.NoError(t, l.SaveSession(ctx, "1", want))

	got, err := l.Session(ctx, "1")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.Equal(t, int64(2), got.Version)
}

func TestLedger_SessionCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := ledger.New(store)
	require.NoError(t, store.Write(ctx, ledger.Join(ledger.SessionsRoot, "1"), []byte(`{"stage":"cooking"}`)))

	_, err := l.Session(ctx, "1")
	assert.ErrorIs(t, err, ledger.ErrCorruptSession)
}

func TestLedger_UsersOwnersDonors(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	require.NoError(t, l.TouchUser(ctx, "2", "Budi"))
	require.NoError(t, l.TouchUser(ctx, "1", "Ana"))
	require.NoError(t, l.TouchUser(ctx, "1", ""))

	users, err := l.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "1", users[0].ID)
	assert.Equal(t, "Ana", users[0].Name)
	assert.True(t, users[0].LastActivity.Equal(fixedNow))

	owner, err := l.IsOwner(ctx, "1")
	require.NoError(t, err)
	assert.False(t, owner)
	require.NoError(t, l.SetOwner(ctx, "1"))
	owner, err = l.IsOwner(ctx, "1")
	require.NoError(t, err)
	assert.True(t, owner)

	_, err = l.AddDonor(ctx, "7", "1")
	require.NoError(t, err)
	_, err = l.AddDonor(ctx, "3", "1")
	require.NoError(t, err)

	donors, err := l.Donors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "3", donors[0].UserID)
	assert.Equal(t, "active", donors[0].Status)

	removed, err := l.RemoveDonor(ctx, "3")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = l.RemoveDonor(ctx, "3")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMerge(t *testing.T) {
	out, err := ledger.Merge([]byte(`{"a":1,"b":2}`), map[string]any{"b": nil, "c": "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"c":"x"}`, string(out))

	out, err = ledger.Merge(nil, map[string]any{"a": true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true}`, string(out))
}
