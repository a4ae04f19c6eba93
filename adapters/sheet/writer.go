package sheet

import (
	"fmt"
	"strings"
	"time"

	"sheetstack/domain/table"
	"sheetstack/internal/errors"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet every exported workbook carries.
const SheetName = "compiled"

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Write serializes the table into a single-sheet xlsx workbook: the header
// row holds the column labels in order, followed by the data rows in table
// order. Identical input yields identical output.
func Write(t *table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, errors.Wrap(err, "failed to name output sheet")
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, errors.Wrap(err, "failed to write header row")
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "failed to compute row coordinates")
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return nil, errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize workbook")
	}
	return buf.Bytes(), nil
}

// EnsureXLSX appends ".xlsx" to the name unless it already carries the
// suffix (case-insensitive). An empty name gets a timestamped default.
func EnsureXLSX(name string) string {
	if name == "" {
		return DefaultFilename(time.Now())
	}
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return name
	}
	return name + ".xlsx"
}

// DefaultFilename returns the timestamped download name used when the caller
// does not supply one.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("compiled_%s.xlsx", now.Format("20060102_150405"))
}
