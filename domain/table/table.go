package table

import "strings"

// Row maps a column label to the cell value for that column. Missing cells
// are stored as empty strings so every row carries the full column set.
type Row map[string]string

// Table is an ordered set of column labels plus the rows under them.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates a table with the given columns and no rows.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// Clone returns a deep copy of the table. Mutating the copy never touches
// the original, which is what lets the accumulator hand out snapshots.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		copied := make(Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows = append(out.Rows, copied)
	}
	return out
}

// AddConstantColumn appends a column filled with the same value in every row.
// If the column already exists its values are overwritten in place.
func (t *Table) AddConstantColumn(name, value string) {
	exists := false
	for _, col := range t.Columns {
		if col == name {
			exists = true
			break
		}
	}
	if !exists {
		t.Columns = append(t.Columns, name)
	}
	for _, row := range t.Rows {
		row[name] = value
	}
}

// NormalizeColumns returns the labels stringified and stripped of leading and
// trailing whitespace, order preserved. Duplicates pass through unchanged.
func NormalizeColumns(labels []string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = strings.TrimSpace(label)
	}
	return out
}

// DuplicateLabel returns the first label that appears more than once in the
// sequence, or "" when all labels are distinct.
func DuplicateLabel(labels []string) string {
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			return label
		}
		seen[label] = true
	}
	return ""
}
