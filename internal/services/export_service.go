package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moneytrack/internal/ledger"
	"moneytrack/internal/log"
	"moneytrack/internal/report"
	"moneytrack/internal/sheets"
)

// ErrNothingToExport is returned when the user has no expenses.
var ErrNothingToExport = errors.New("nothing to export")

// ExportService prepares a user's workbook and renders it as a file for
// that user alone.
type ExportService struct {
	ledger   *ledger.Ledger
	exporter sheets.Exporter
	loc      *time.Location
	logger   *log.Logger
}

func NewExportService(l *ledger.Ledger, exporter sheets.Exporter, loc *time.Location, logger *log.Logger) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportService{ledger: l, exporter: exporter, loc: loc, logger: logger.WithComponent(log.ComponentSheets)}
}

// Enabled reports whether an exporter is configured.
func (s *ExportService) Enabled() bool {
	return s != nil && s.exporter != nil
}

// Export builds the user's workbook as of now and renders it.
func (s *ExportService) Export(ctx context.Context, userID string, now time.Time) (sheets.File, report.Workbook, error) {
	if !s.Enabled() {
		return sheets.File{}, report.Workbook{}, errors.New("export not configured")
	}
	expenses, err := s.ledger.Expenses(ctx, userID)
	if err != nil {
		return sheets.File{}, report.Workbook{}, fmt.Errorf("read expenses: %w", err)
	}
	if len(expenses) == 0 {
		return sheets.File{}, report.Workbook{}, ErrNothingToExport
	}
	budgets, err := s.ledger.Budgets(ctx, userID)
	if err != nil {
		return sheets.File{}, report.Workbook{}, fmt.Errorf("read budgets: %w", err)
	}

	w := report.NewWorkbook(userID, expenses, budgets, now, s.loc)
	f, err := s.exporter.Export(ctx, w)
	if err != nil {
		return sheets.File{}, w, fmt.Errorf("export workbook: %w", err)
	}
	s.logger.InfoContext(ctx, "Workbook exported",
		log.FieldUserID, userID,
		log.FieldCount, len(w.Details),
		log.FieldFile, f.Name,
		log.FieldSize, len(f.Data))
	return f, w, nil
}
