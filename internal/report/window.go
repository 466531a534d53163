// Package report aggregates expenses over time windows and builds the
// structured daily, weekly and monthly reports and export workbooks.
//
// The windows are deliberately not uniform: Today is a calendar day in the
// reference location, matched on the ISO date prefix, while Week and Month
// are rolling 7x24h and 30x24h intervals ending at the current instant.
package report

import (
	"strings"
	"time"

	"moneytrack/internal/core"
)

type Window int

const (
	Today Window = iota
	Week
	Month
)

const (
	weekSpan  = 7 * 24 * time.Hour
	monthSpan = 30 * 24 * time.Hour
)

func (w Window) String() string {
	switch w {
	case Today:
		return "today"
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return "unknown"
	}
}

// WindowFor maps a budget period to the window it is measured over.
func WindowFor(p core.Period) Window {
	switch p {
	case core.Weekly:
		return Week
	case core.Monthly:
		return Month
	default:
		return Today
	}
}

// Bounds returns the start and end of the window as of now, both expressed
// in loc.
func (w Window) Bounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(orUTC(loc))
	switch w {
	case Week:
		return local.Add(-weekSpan), local
	case Month:
		return local.Add(-monthSpan), local
	default:
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location()), local
	}
}

// Contains reports whether an expense that occurred at t falls in the window.
func (w Window) Contains(t, now time.Time, loc *time.Location) bool {
	loc = orUTC(loc)
	switch w {
	case Today:
		return strings.HasPrefix(isoString(t, loc), dayKey(now, loc))
	case Week, Month:
		start, end := w.Bounds(now, loc)
		return !t.Before(start) && !t.After(end)
	default:
		return false
	}
}

// Filter returns the expenses inside the window, keeping input order.
func (w Window) Filter(expenses []core.Expense, now time.Time, loc *time.Location) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if w.Contains(e.OccurredAt, now, loc) {
			out = append(out, e)
		}
	}
	return out
}

func isoString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339Nano)
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

func monthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
