package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"moneytrack/internal/budget"
	"moneytrack/internal/core"
)

// Workbook is the full export of one user's ledger. Exporters only lay it out.
type Workbook struct {
	OwnerID     string
	GeneratedAt time.Time
	Details     []DetailRow
	Categories  []CategoryRow
	Months      []MonthRow
	Budgets     []budget.Status
	Total       int64
	FirstDate   time.Time
	LastDate    time.Time
}

type DetailRow struct {
	No          int
	Date        time.Time
	Amount      int64
	Description string
	Category    core.Category
}

type CategoryRow struct {
	Category   core.Category
	Amount     int64
	Percentage decimal.Decimal
}

type MonthRow struct {
	Key    string // YYYY-MM
	Label  string
	Amount int64
	Count  int
}

func (w Workbook) Empty() bool {
	return len(w.Details) == 0
}

// NewWorkbook builds the export tables. Budget rows use the same windows as
// the reports, ordered daily, weekly, monthly.
func NewWorkbook(ownerID string, expenses []core.Expense, budgets map[core.Period]core.Budget, now time.Time, loc *time.Location) Workbook {
	loc = orUTC(loc)
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	w := Workbook{OwnerID: ownerID, GeneratedAt: now}
	for i, e := range sorted {
		w.Details = append(w.Details, DetailRow{
			No:          i + 1,
			Date:        e.OccurredAt.In(loc),
			Amount:      e.Amount,
			Description: e.Description,
			Category:    e.Category,
		})
	}
	if len(sorted) > 0 {
		w.FirstDate = sorted[0].OccurredAt.In(loc)
		w.LastDate = sorted[len(sorted)-1].OccurredAt.In(loc)
	}

	total, _, cats := summarize(sorted)
	w.Total = total
	for _, c := range cats {
		w.Categories = append(w.Categories, CategoryRow{
			Category:   c.Category,
			Amount:     c.Amount,
			Percentage: Percentage(c.Amount, total),
		})
	}

	index := make(map[string]int)
	for _, e := range sorted {
		key := monthKey(e.OccurredAt, loc)
		i, ok := index[key]
		if !ok {
			i = len(w.Months)
			index[key] = i
			w.Months = append(w.Months, MonthRow{Key: key, Label: MonthLabel(key)})
		}
		w.Months[i].Amount += e.Amount
		w.Months[i].Count++
	}
	sort.Slice(w.Months, func(i, j int) bool { return w.Months[i].Key > w.Months[j].Key })

	for _, p := range core.Periods {
		b, ok := budgets[p]
		if !ok {
			continue
		}
		used := Compute(expenses, WindowFor(p), now, loc).Total
		w.Budgets = append(w.Budgets, budget.NewStatus(p, used, b))
	}
	return w
}
