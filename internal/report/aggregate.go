package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"moneytrack/internal/core"
)

type CategoryTotal struct {
	Category core.Category
	Amount   int64
	Count    int
}

// Aggregate is the derived view of one window. It is never persisted.
type Aggregate struct {
	Window      Window
	Total       int64
	Count       int
	ByCategory  []CategoryTotal // descending by amount, ties in first-seen order
	WindowStart time.Time
	WindowEnd   time.Time
	Matched     []core.Expense // input order
}

// Compute aggregates the expenses that fall in w as of now.
func Compute(expenses []core.Expense, w Window, now time.Time, loc *time.Location) Aggregate {
	loc = orUTC(loc)
	start, end := w.Bounds(now, loc)
	a := Aggregate{Window: w, WindowStart: start, WindowEnd: end}
	a.Matched = w.Filter(expenses, now, loc)
	a.Total, a.Count, a.ByCategory = summarize(a.Matched)
	return a
}

func summarize(expenses []core.Expense) (int64, int, []CategoryTotal) {
	var total int64
	index := make(map[core.Category]int)
	var cats []CategoryTotal
	for _, e := range expenses {
		total += e.Amount
		i, ok := index[e.Category]
		if !ok {
			i = len(cats)
			index[e.Category] = i
			cats = append(cats, CategoryTotal{Category: e.Category})
		}
		cats[i].Amount += e.Amount
		cats[i].Count++
	}
	sortCategories(cats)
	return total, len(expenses), cats
}

// sortCategories orders by amount descending. SliceStable keeps first-seen
// order for equal amounts.
func sortCategories(cats []CategoryTotal) {
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Amount > cats[j].Amount })
}

func (a Aggregate) Empty() bool {
	return a.Count == 0
}

// Percentage returns amount as a share of the window total, rounded half-up to one decimal.
func (a Aggregate) Percentage(amount int64) decimal.Decimal {
	return Percentage(amount, a.Total)
}

// Top returns at most n categories; the aggregate total is unaffected.
func (a Aggregate) Top(n int) []CategoryTotal {
	if n < 0 || n >= len(a.ByCategory) {
		return a.ByCategory
	}
	return a.ByCategory[:n]
}

func Percentage(amount, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(1)
}

// AveragePerDay divides total by days rounding half-up to a whole amount.
func AveragePerDay(total int64, days int) int64 {
	if days <= 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(days))).Round(0).IntPart()
}
