// Package budget classifies spending against a configured budget.
package budget

import (
	"github.com/shopspring/decimal"

	"moneytrack/internal/core"
)

type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelExceeded
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelExceeded:
		return "exceeded"
	default:
		return "none"
	}
}

// WarningPercent is the share of the budget at which a warning is raised.
const WarningPercent = 80

// Alert is the result of an evaluation above the warning threshold.
// Overage is set for LevelExceeded, Remaining for LevelWarning.
type Alert struct {
	Level       Level
	Period      core.Period
	Total       int64
	Budget      int64
	Overage     int64
	Remaining   int64
	UsedPercent decimal.Decimal
}

// UsedPercent returns total/budget*100 rounded half-up to one decimal.
func UsedPercent(total, budget int64) decimal.Decimal {
	if budget <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(budget)).
		Round(1)
}

// Evaluate classifies total against b. ok is false when no alert applies,
// including when no budget is configured (b.Amount <= 0).
//
// The comparisons run on integers so 100% exactly is always exceeded
// and 80% exactly is always a warning.
func Evaluate(period core.Period, total int64, b core.Budget) (Alert, bool) {
	if b.Amount <= 0 {
		return Alert{}, false
	}
	a := Alert{
		Period:      period,
		Total:       total,
		Budget:      b.Amount,
		UsedPercent: UsedPercent(total, b.Amount),
	}
	switch {
	case total >= b.Amount:
		a.Level = LevelExceeded
		a.Overage = total - b.Amount
	case total*100 >= WarningPercent*b.Amount:
		a.Level = LevelWarning
		a.Remaining = b.Amount - total
	default:
		return Alert{}, false
	}
	return a, true
}

// Status is a budget line shown inside reports and exports.
type Status struct {
	Period      core.Period
	Budget      int64
	Used        int64
	Remaining   int64 // negative when over budget
	UsedPercent decimal.Decimal
}

func NewStatus(period core.Period, used int64, b core.Budget) Status {
	return Status{
		Period:      period,
		Budget:      b.Amount,
		Used:        used,
		Remaining:   b.Amount - used,
		UsedPercent: UsedPercent(used, b.Amount),
	}
}

// Over reports whether spending is strictly above the budget.
func (s Status) Over() bool {
	return s.Used > s.Budget
}

// Label is the status word used in exports.
func (s Status) Label() string {
	if s.Over() {
		return "Terlampaui"
	}
	return "Aman"
}
