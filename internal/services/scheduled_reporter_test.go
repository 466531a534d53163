package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu        sync.Mutex
	delivered map[string]DailyView
	failFor   map[string]bool
}

func newFakeSender(failFor ...string) *fakeSender {
	f := &fakeSender{delivered: map[string]DailyView{}, failFor: map[string]bool{}}
	for _, r := range failFor {
		f.failFor[r] = true
	}
	return f
}

func (f *fakeSender) SendDailyReport(_ context.Context, recipient string, view DailyView) error {
	if f.failFor[recipient] {
		return errors.New("chat not found")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered[recipient] = view
	return nil
}

func TestScheduledReporter_FailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	for _, u := range []string{"1", "2", "3"} {
		_, err := l.AddExpense(ctx, u, expense(10000, "makanan", day1))
		require.NoError(t, err)
	}
	sender := newFakeSender("2")
	r := NewScheduledReporter(
		NewReportService(l, time.UTC),
		sender,
		Recipients([]string{"1", "2", "3"}, nil),
		ScheduledReporterConfig{Interval: time.Hour, Concurrency: 1},
		nil,
	).WithClock(func() time.Time { return day1.Add(12 * time.Hour) })

	res := r.RunOnce(ctx)

	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, []string{"2"}, res.Failed)
	require.Contains(t, sender.delivered, "1")
	require.Contains(t, sender.delivered, "3")
	assert.Equal(t, int64(10000), sender.delivered["3"].Total)
}

func TestScheduledReporter_RecipientsIncludeDonors(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	_, err := l.AddDonor(ctx, "5", "owner")
	require.NoError(t, err)
	_, err = l.AddDonor(ctx, "1", "owner")
	require.NoError(t, err)

	got, err := Recipients([]string{"1", "9"}, l)(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "9", "5"}, got)
}

func TestScheduledReporter_StartStop(t *testing.T) {
	sender := newFakeSender()
	var calls int
	var mu sync.Mutex
	source := func(context.Context) ([]string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil, nil
	}
	r := NewScheduledReporter(NewReportService(newLedger(), time.UTC), sender, source,
		ScheduledReporterConfig{Interval: 10 * time.Millisecond}, nil)

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	assert.Error(t, r.Start(ctx), "second start must fail")
	assert.True(t, r.IsRunning())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	}, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, r.Stop(stopCtx))
	assert.False(t, r.IsRunning())
	require.NoError(t, r.Stop(stopCtx), "stop is idempotent")
}

func TestScheduledReporter_RecipientSourceError(t *testing.T) {
	r := NewScheduledReporter(NewReportService(newLedger(), time.UTC), newFakeSender(),
		func(context.Context) ([]string, error) { return nil, errors.New("store down") },
		DefaultScheduledReporterConfig(), nil)
	res := r.RunOnce(context.Background())
	assert.Equal(t, 0, res.Attempted)
}

func TestFanOut_PanicIsContained(t *testing.T) {
	res := FanOut(context.Background(), []string{"a", "b"}, 2, func(_ context.Context, r string) error {
		if r == "a" {
			panic("boom")
		}
		return nil
	}, nil)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, []string{"a"}, res.Failed)
}

func TestFanOut_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := FanOut(ctx, []string{"a", "b"}, 1, func(context.Context, string) error { return nil }, nil)
	assert.Equal(t, 0, res.Attempted)
}
