// Package sheet decodes uploaded CSV/Excel blobs into tables and encodes the
// compiled table back into a downloadable workbook.
package sheet

import (
	"bytes"
	"encoding/csv"
	"log"
	"path/filepath"
	"strings"

	"sheetstack/domain/table"
	"sheetstack/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Format identifies the on-disk encoding of an upload. It is resolved once
// from the filename suffix; nothing downstream re-inspects the name.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat resolves the declared filename to a format tag.
// The suffix check is case-insensitive.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", errors.UnsupportedFormat(filename)
	}
}

// Read decodes an uploaded blob into a table, dispatching on the declared
// filename's suffix. Excel files are read from the first sheet only.
func Read(data []byte, filename string) (*table.Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSV(data)
	default:
		// .xls is routed through the same decoder; a genuine legacy BIFF
		// payload fails decode and surfaces as a read error.
		rows, err = readExcel(data)
	}
	if err != nil {
		return nil, errors.ReadError(filename, err)
	}
	if len(rows) == 0 {
		return nil, errors.ReadError(filename, errors.New(errors.CodeReadError, "file has no header row"))
	}

	t := buildTable(rows)
	log.Printf("[Reader] %s file %q decoded (%d columns, %d rows)", format, filename, t.ColumnCount(), t.RowCount())
	return t, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	// Tolerate ragged rows; buildTable pads them to the header width.
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.CodeReadError, "workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// buildTable converts raw cell rows into a table. The first row becomes the
// column labels (whitespace-trimmed); data rows are keyed by label, padded
// with empty values when short, and cells beyond the header are dropped.
func buildTable(rows [][]string) *table.Table {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	t := table.New(headers)
	t.Rows = make([]table.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(table.Row, len(headers))
		for j, header := range headers {
			if j < len(raw) {
				row[header] = raw[j]
			} else {
				row[header] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
