package report

import (
	"sort"
	"time"

	"moneytrack/internal/core"
)

const (
	// WeeklyTopCategories is how many categories the weekly report lists.
	WeeklyTopCategories = 5
	// HistoryLimit is the number of entries shown by the history view.
	HistoryLimit = 15
)

// Bucket is the total of one calendar day or one week starting on Sunday.
type Bucket struct {
	Key    string // YYYY-MM-DD of the day or of the week start
	Start  time.Time
	Amount int64
	Count  int
}

type Daily struct {
	Aggregate
	Date time.Time
	Days []Bucket
}

type Weekly struct {
	Aggregate
	Days          []Bucket // newest first
	TopCategories []CategoryTotal
	AveragePerDay int64
}

type Monthly struct {
	Aggregate
	Weeks         []Bucket // newest first
	AveragePerDay int64
}

// History is the most recent expenses, newest first.
type History struct {
	Entries []core.Expense
	Total   int64
}

func NewDaily(expenses []core.Expense, now time.Time, loc *time.Location) Daily {
	loc = orUTC(loc)
	a := Compute(expenses, Today, now, loc)
	return Daily{
		Aggregate: a,
		Date:      now.In(loc),
		Days:      bucketByDay(a.Matched, loc),
	}
}

func NewWeekly(expenses []core.Expense, now time.Time, loc *time.Location) Weekly {
	loc = orUTC(loc)
	a := Compute(expenses, Week, now, loc)
	return Weekly{
		Aggregate:     a,
		Days:          bucketByDay(a.Matched, loc),
		TopCategories: a.Top(WeeklyTopCategories),
		AveragePerDay: AveragePerDay(a.Total, 7),
	}
}

func NewMonthly(expenses []core.Expense, now time.Time, loc *time.Location) Monthly {
	loc = orUTC(loc)
	a := Compute(expenses, Month, now, loc)
	return Monthly{
		Aggregate:     a,
		Weeks:         bucketByWeek(a.Matched, loc),
		AveragePerDay: AveragePerDay(a.Total, 30),
	}
}

// NewHistory returns the latest limit expenses by occurrence time.
func NewHistory(expenses []core.Expense, limit int) History {
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	h := History{Entries: sorted}
	for _, e := range sorted {
		h.Total += e.Amount
	}
	return h
}

func bucketByDay(expenses []core.Expense, loc *time.Location) []Bucket {
	return buckets(expenses, func(t time.Time) time.Time {
		local := t.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	})
}

func bucketByWeek(expenses []core.Expense, loc *time.Location) []Bucket {
	return buckets(expenses, func(t time.Time) time.Time {
		local := t.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, -int(day.Weekday()))
	})
}

// buckets groups amounts by the start returned by keyOf, newest first.
func buckets(expenses []core.Expense, keyOf func(time.Time) time.Time) []Bucket {
	index := make(map[string]int)
	var out []Bucket
	for _, e := range expenses {
		start := keyOf(e.OccurredAt)
		key := start.Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Bucket{Key: key, Start: start})
		}
		out[i].Amount += e.Amount
		out[i].Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out
}
