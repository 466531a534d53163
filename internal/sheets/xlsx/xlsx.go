// Package xlsx renders export workbooks as Excel files, one tab per table.
package xlsx

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"moneytrack/internal/report"
	"moneytrack/internal/sheets"
)

const (
	defaultSheet = "Sheet1"
	columnWidth  = 20
)

type Exporter struct {
	loc *time.Location
}

var _ sheets.Exporter = (*Exporter)(nil)

// New returns an exporter that dates file names in loc.
func New(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{loc: loc}
}

// FileName names the export of ownerID, e.g. "laporan_keuangan_42_2024-02-10.xlsx".
func FileName(ownerID string, at time.Time) string {
	return fmt.Sprintf("laporan_keuangan_%s_%s.xlsx", ownerID, at.Format(time.DateOnly))
}

// Export lays out w with sheets.Tables and returns the encoded file.
func (e *Exporter) Export(ctx context.Context, w report.Workbook) (sheets.File, error) {
	if err := ctx.Err(); err != nil {
		return sheets.File{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return sheets.File{}, fmt.Errorf("create style: %w", err)
	}

	for i, t := range sheets.Tables(w) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, t.Name); err != nil {
				return sheets.File{}, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return sheets.File{}, fmt.Errorf("add sheet %s: %w", t.Name, err)
		}
		if err := writeTable(f, t, bold); err != nil {
			return sheets.File{}, fmt.Errorf("write sheet %s: %w", t.Name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return sheets.File{}, fmt.Errorf("encode workbook: %w", err)
	}
	return sheets.File{
		Name: FileName(w.OwnerID, w.GeneratedAt.In(e.loc)),
		Data: buf.Bytes(),
	}, nil
}

// writeTable writes the title in row 1 and the header in row 3, both bold.
func writeTable(f *excelize.File, t sheets.Table, bold int) error {
	last, err := excelize.ColumnNumberToName(max(len(t.Header), 1))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(t.Name, "A", last, columnWidth); err != nil {
		return err
	}
	for i, row := range t.Values() {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}
	for _, r := range []int{1, 3} {
		if err := f.SetCellStyle(t.Name, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", last, r), bold); err != nil {
			return err
		}
	}
	return nil
}
