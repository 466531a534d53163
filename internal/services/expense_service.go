package services

import (
	"context"
	"fmt"
	"time"

	"moneytrack/internal/amqp"
	"moneytrack/internal/budget"
	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	"moneytrack/internal/log"
	"moneytrack/internal/report"
)

// Publisher emits commit events. *amqp.Client satisfies it.
type Publisher interface {
	PublishExpenseCommitted(ctx context.Context, msg *amqp.ExpenseCommittedMessage) error
}

// ExpenseService orchestrates ledger writes and commit events.
type ExpenseService struct {
	ledger    *ledger.Ledger
	publisher Publisher
	loc       *time.Location
	logger    *log.Logger
}

// NewExpenseService wires the service; publisher may be nil to disable events.
func NewExpenseService(l *ledger.Ledger, publisher Publisher, loc *time.Location, logger *log.Logger) *ExpenseService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		ledger:    l,
		publisher: publisher,
		loc:       loc,
		logger:    logger.WithComponent(log.ComponentExpense),
	}
}

// Commit saves e for userID, then publishes a commit event.
// A publish failure is logged and never fails the commit.
func (s *ExpenseService) Commit(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	saved, err := s.ledger.AddExpense(ctx, userID, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	logger := s.logger.WithFields(log.NewFields().
		WithUser(userID).
		WithExpense(saved.ID, saved.Amount, string(saved.Category)))
	logger.InfoContext(ctx, "Expense committed")

	if err := s.publish(ctx, userID, saved.ID); err != nil {
		logger.ErrorContext(ctx, "Failed to publish commit event", log.FieldError, err)
	}
	return saved, nil
}

func (s *ExpenseService) publish(ctx context.Context, userID, expenseID string) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishExpenseCommitted(ctx, amqp.NewExpenseCommittedMessage(userID, expenseID))
}

// DailyAlert evaluates the daily budget against today's total.
// Only the daily budget is ever checked after a commit.
func (s *ExpenseService) DailyAlert(ctx context.Context, userID string, now time.Time) (budget.Alert, bool, error) {
	b, found, err := s.ledger.Budget(ctx, userID, core.Daily)
	if err != nil {
		return budget.Alert{}, false, fmt.Errorf("read daily budget: %w", err)
	}
	if !found {
		return budget.Alert{}, false, nil
	}
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return budget.Alert{}, false, fmt.Errorf("read expenses: %w", err)
	}
	total := report.Compute(expenses, report.Today, now, s.loc).Total
	alert, ok := budget.Evaluate(core.Daily, total, b)
	return alert, ok, nil
}

// SetBudget validates and stores the budget for period, replacing any previous one.
func (s *ExpenseService) SetBudget(ctx context.Context, userID string, period core.Period, amount int64) (core.Budget, error) {
	b, err := s.ledger.SetBudget(ctx, userID, period, amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget set",
		log.FieldUserID, userID,
		log.FieldPeriod, string(period),
		log.FieldAmount, amount)
	return b, nil
}
