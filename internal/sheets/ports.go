package sheets

import (
	"context"

	"moneytrack/internal/core"
	"moneytrack/internal/report"
)

// File is a rendered export. It holds the data of a single owner and is
// only ever delivered to that owner.
type File struct {
	Name string
	Data []byte
}

// Ports for outbound adapters.
type (
	// ExpenseWriter mirrors a committed expense into an external ledger tab.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// Exporter renders a prepared workbook. It performs no aggregation.
	Exporter interface {
		Export(ctx context.Context, w report.Workbook) (File, error)
	}
)
