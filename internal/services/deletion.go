package services

import (
	"context"
	"fmt"
	"time"

	"moneytrack/internal/core"
	"moneytrack/internal/ledger"
	"moneytrack/internal/log"
	"moneytrack/internal/report"
)

// DeletionService removes expenses by window. Removal is irreversible.
type DeletionService struct {
	ledger *ledger.Ledger
	loc    *time.Location
	logger *log.Logger
}

func NewDeletionService(l *ledger.Ledger, loc *time.Location, logger *log.Logger) *DeletionService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DeletionService{ledger: l, loc: loc, logger: logger.WithComponent(log.ComponentExpense)}
}

// DeleteToday removes the expenses of the Today window as of now.
func (s *DeletionService) DeleteToday(ctx context.Context, userID string, now time.Time) (core.Removal, error) {
	return s.deleteWindow(ctx, userID, report.Today, now)
}

// DeleteWeek removes the expenses of the rolling Week window as of now.
func (s *DeletionService) DeleteWeek(ctx context.Context, userID string, now time.Time) (core.Removal, error) {
	return s.deleteWindow(ctx, userID, report.Week, now)
}

// DeleteAll removes every expense of the user.
func (s *DeletionService) DeleteAll(ctx context.Context, userID string) (core.Removal, error) {
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return core.Removal{}, fmt.Errorf("read expenses: %w", err)
	}
	r := removalOf(expenses)
	if r.Empty() {
		return r, nil
	}
	if err := s.ledger.RemoveAllExpenses(ctx, userID); err != nil {
		return core.Removal{}, fmt.Errorf("remove expenses: %w", err)
	}
	s.logDeleted(ctx, userID, "all", r)
	return r, nil
}

func (s *DeletionService) deleteWindow(ctx context.Context, userID string, w report.Window, now time.Time) (core.Removal, error) {
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return core.Removal{}, fmt.Errorf("read expenses: %w", err)
	}
	matched := w.Filter(expenses, now, s.loc)
	r := removalOf(matched)
	if r.Empty() {
		return r, nil
	}
	ids := make([]string, len(matched))
	for i, e := range matched {
		ids[i] = e.ID
	}
	if err := s.ledger.RemoveExpenses(ctx, userID, ids); err != nil {
		return core.Removal{}, fmt.Errorf("remove expenses: %w", err)
	}
	s.logDeleted(ctx, userID, w.String(), r)
	return r, nil
}

// removalOf is computed before anything is removed.
func removalOf(expenses []core.Expense) core.Removal {
	r := core.Removal{Count: len(expenses)}
	for _, e := range expenses {
		r.Sum += e.Amount
	}
	return r
}

func (s *DeletionService) logDeleted(ctx context.Context, userID, window string, r core.Removal) {
	s.logger.InfoContext(ctx, "Expenses deleted",
		log.FieldUserID, userID,
		log.FieldWindow, window,
		log.FieldCount, r.Count,
		log.FieldAmount, r.Sum)
}
