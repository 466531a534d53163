package sheets

import (
	"fmt"

	"moneytrack/internal/core"
	"moneytrack/internal/report"
)

// Tab names of an exported workbook.
const (
	TabDetails    = "Detail Transaksi"
	TabCategories = "Ringkasan Kategori"
	TabMonths     = "Laporan Bulanan"
	TabBudgets    = "Budget Tracking"
)

// Table is one tab of an export: a title row, a blank row, a header and data rows.
type Table struct {
	Name   string
	Title  string
	Header []any
	Rows   [][]any
}

// Values returns the table as a sheet values matrix.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+3)
	out = append(out, []any{t.Title}, []any{}, t.Header)
	return append(out, t.Rows...)
}

// Tables lays out the workbook. The budget tab is omitted when no budget is set.
func Tables(w report.Workbook) []Table {
	details := Table{
		Name:   TabDetails,
		Title:  "LAPORAN KEUANGAN DETAIL",
		Header: []any{"No", "Tanggal", "Jumlah", "Deskripsi", "Kategori"},
	}
	for _, d := range w.Details {
		details.Rows = append(details.Rows, []any{d.No, report.ShortDate(d.Date), d.Amount, d.Description, string(d.Category)})
	}
	details.Rows = append(details.Rows, []any{}, []any{"", "TOTAL", w.Total, "", ""})

	categories := Table{
		Name:   TabCategories,
		Title:  "RINGKASAN PER KATEGORI",
		Header: []any{"Kategori", "Total", "Persentase"},
	}
	for _, c := range w.Categories {
		categories.Rows = append(categories.Rows, []any{string(c.Category), c.Amount, c.Percentage.StringFixed(1) + "%"})
	}

	months := Table{
		Name:   TabMonths,
		Title:  "LAPORAN BULANAN",
		Header: []any{"Bulan", "Total Pengeluaran", "Jumlah Transaksi"},
	}
	for _, m := range w.Months {
		months.Rows = append(months.Rows, []any{m.Label, m.Amount, m.Count})
	}

	tables := []Table{details, categories, months}
	if len(w.Budgets) == 0 {
		return tables
	}

	budgets := Table{
		Name:   TabBudgets,
		Title:  "BUDGET TRACKING",
		Header: []any{"Jenis", "Budget", "Terpakai", "Status"},
	}
	for _, b := range w.Budgets {
		budgets.Rows = append(budgets.Rows, []any{
			b.Period.Label(),
			b.Budget,
			fmt.Sprintf("%s (%s%%)", core.FormatRupiah(b.Used), b.UsedPercent.StringFixed(1)),
			b.Label(),
		})
	}
	return append(tables, budgets)
}
