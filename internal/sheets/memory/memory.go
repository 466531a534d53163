package memory

import (
	"context"
	"fmt"
	"sync"

	"moneytrack/internal/core"
	"moneytrack/internal/report"
	"moneytrack/internal/sheets"
)

// Store records mirrored expenses and exported workbooks in memory.
type Store struct {
	mu        sync.Mutex
	items     []core.Expense
	workbooks []report.Workbook
}

var (
	_ sheets.ExpenseWriter = (*Store)(nil)
	_ sheets.Exporter      = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Export keeps the workbook and returns a file named after its owner.
func (s *Store) Export(_ context.Context, w report.Workbook) (sheets.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workbooks = append(s.workbooks, w)
	return sheets.File{
		Name: fmt.Sprintf("mem-export-%s-%d.xlsx", w.OwnerID, len(s.workbooks)),
		Data: []byte(w.OwnerID),
	}, nil
}

func (s *Store) Items() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}

func (s *Store) Workbooks() []report.Workbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Workbook(nil), s.workbooks...)
}
