package services

import (
	"context"
	"fmt"
	"time"

	"moneytrack/internal/budget"
	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	"moneytrack/internal/report"
)

// DailyView is the daily report with the daily budget line, if a budget is set.
type DailyView struct {
	report.Daily
	Budget *budget.Status
}

type WeeklyView struct {
	report.Weekly
	Budget *budget.Status
}

type MonthlyView struct {
	report.Monthly
	Budget *budget.Status
}

// ReportService loads a user's ledger and builds the structured reports.
type ReportService struct {
	ledger *ledger.Ledger
	loc    *time.Location
}

func NewReportService(l *ledger.Ledger, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{ledger: l, loc: loc}
}

// Location is the reference location of the Today window.
func (s *ReportService) Location() *time.Location {
	return s.loc
}

func (s *ReportService) Daily(ctx context.Context, userID string, now time.Time) (DailyView, error) {
	expenses, st, err := s.load(ctx, userID, core.Daily)
	if err != nil {
		return DailyView{}, err
	}
	d := report.NewDaily(expenses, now, s.loc)
	return DailyView{Daily: d, Budget: statusOf(core.Daily, d.Total, st)}, nil
}

func (s *ReportService) Weekly(ctx context.Context, userID string, now time.Time) (WeeklyView, error) {
	expenses, st, err := s.load(ctx, userID, core.Weekly)
	if err != nil {
		return WeeklyView{}, err
	}
	w := report.NewWeekly(expenses, now, s.loc)
	return WeeklyView{Weekly: w, Budget: statusOf(core.Weekly, w.Total, st)}, nil
}

func (s *ReportService) Monthly(ctx context.Context, userID string, now time.Time) (MonthlyView, error) {
	expenses, st, err := s.load(ctx, userID, core.Monthly)
	if err != nil {
		return MonthlyView{}, err
	}
	m := report.NewMonthly(expenses, now, s.loc)
	return MonthlyView{Monthly: m, Budget: statusOf(core.Monthly, m.Total, st)}, nil
}

// History returns the latest report.HistoryLimit expenses.
func (s *ReportService) History(ctx context.Context, userID string) (report.History, error) {
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return report.History{}, fmt.Errorf("read expenses: %w", err)
	}
	return report.NewHistory(expenses, report.HistoryLimit), nil
}

// Budgets returns the configured budgets with their current usage, daily first.
func (s *ReportService) Budgets(ctx context.Context, userID string, now time.Time) ([]budget.Status, error) {
	budgets, err := s.ledger.Budgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read expenses: %w", err)
	}
	var out []budget.Status
	for _, p := range core.Periods {
		b, ok := budgets[p]
		if !ok {
			continue
		}
		used := report.Compute(expenses, report.WindowFor(p), now, s.loc).Total
		out = append(out, budget.NewStatus(p, used, b))
	}
	return out, nil
}

type periodBudget struct {
	budget core.Budget
	found  bool
}

func (s *ReportService) load(ctx context.Context, userID string, period core.Period) ([]core.Expense, periodBudget, error) {
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return nil, periodBudget{}, fmt.Errorf("read expenses: %w", err)
	}
	b, found, err := s.ledger.Budget(ctx, userID, period)
	if err != nil {
		return nil, periodBudget{}, fmt.Errorf("read %s budget: %w", period, err)
	}
	return expenses, periodBudget{budget: b, found: found}, nil
}

// statusOf omits the budget line when no budget is configured.
func statusOf(period core.Period, used int64, pb periodBudget) *budget.Status {
	if !pb.found {
		return nil
	}
	st := budget.NewStatus(period, used, pb.budget)
	return &st
}
