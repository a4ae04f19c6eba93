// Package compile owns the accumulated table for one session: the column
// schema locked by the first accepted file, the compiled rows, and the
// record of which files contributed them.
package compile

import (
	"time"

	"sheetstack/domain/table"
	"sheetstack/internal/errors"
)

// Options controls provenance tagging of accepted files.
type Options struct {
	AddSourceColumn  bool
	SourceColumnName string
}

// DefaultOptions tags every row with the source filename in a "source_file"
// column.
func DefaultOptions() Options {
	return Options{
		AddSourceColumn:  true,
		SourceColumnName: "source_file",
	}
}

// UploadRecord describes one accepted file, in acceptance order.
type UploadRecord struct {
	Filename string    `json:"filename"`
	Rows     int       `json:"rows"`
	AddedAt  time.Time `json:"added_at"`
}

// Compiler accumulates uploaded tables that share one column schema.
// The schema is locked by Seed and never re-derived until Reset; a rejected
// Append leaves the compiled table and the schema untouched.
//
// Compiler is not safe for concurrent use. One instance belongs to one
// session, and the session serializes operations on it.
type Compiler struct {
	opts     Options
	expected []string
	compiled *table.Table
	uploads  []UploadRecord
}

// New creates an empty compiler.
func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Seeded reports whether the schema has been locked by a first file.
func (c *Compiler) Seeded() bool {
	return c.compiled != nil
}

// ExpectedColumns returns a copy of the locked schema, nil when empty.
func (c *Compiler) ExpectedColumns() []string {
	if c.expected == nil {
		return nil
	}
	return append([]string(nil), c.expected...)
}

// Seed locks the expected schema to the table's normalized columns and
// stores the table as the compiled output. The schema is locked before the
// provenance column is added, so later files are matched on their data
// columns only.
func (c *Compiler) Seed(t *table.Table, filename string) error {
	if c.Seeded() {
		return errors.AlreadySeeded()
	}

	cols := table.NormalizeColumns(t.Columns)
	if dup := table.DuplicateLabel(cols); dup != "" {
		return errors.DuplicateColumn(dup)
	}

	compiled := renormalize(t, cols)
	c.expected = append([]string(nil), cols...)
	if c.opts.AddSourceColumn {
		compiled.AddConstantColumn(c.opts.SourceColumnName, filename)
	}
	c.compiled = compiled
	c.uploads = append(c.uploads, UploadRecord{Filename: filename, Rows: len(t.Rows), AddedAt: time.Now()})
	return nil
}

// Append validates the table's normalized columns against the locked schema
// and concatenates its rows onto the compiled table. On any rejection the
// compiled table and schema are byte-for-byte unchanged.
func (c *Compiler) Append(t *table.Table, filename string) error {
	if !c.Seeded() {
		return errors.InternalError("append called before a schema was seeded")
	}

	cols := table.NormalizeColumns(t.Columns)
	if dup := table.DuplicateLabel(cols); dup != "" {
		return errors.DuplicateColumn(dup)
	}

	match := table.Compare(c.expected, cols)
	if !match.Exact {
		return errors.SchemaMismatch(match, c.expected, cols)
	}

	incoming := renormalize(t, cols)
	if c.opts.AddSourceColumn {
		incoming.AddConstantColumn(c.opts.SourceColumnName, filename)
	}
	c.compiled.Rows = append(c.compiled.Rows, incoming.Rows...)
	c.uploads = append(c.uploads, UploadRecord{Filename: filename, Rows: len(t.Rows), AddedAt: time.Now()})
	return nil
}

// Reset clears the schema, the compiled table, and the upload history.
// Idempotent.
func (c *Compiler) Reset() {
	c.expected = nil
	c.compiled = nil
	c.uploads = nil
}

// Snapshot returns a deep copy of the compiled table, or nil when empty.
func (c *Compiler) Snapshot() *table.Table {
	if c.compiled == nil {
		return nil
	}
	return c.compiled.Clone()
}

// Uploads returns the accepted files in acceptance order.
func (c *Compiler) Uploads() []UploadRecord {
	return append([]UploadRecord(nil), c.uploads...)
}

// FileCount returns how many files have been accepted.
func (c *Compiler) FileCount() int {
	return len(c.uploads)
}

// TotalRows returns the compiled row count.
func (c *Compiler) TotalRows() int {
	if c.compiled == nil {
		return 0
	}
	return c.compiled.RowCount()
}

// TotalColumns returns the compiled column count, provenance included.
func (c *Compiler) TotalColumns() int {
	if c.compiled == nil {
		return 0
	}
	return c.compiled.ColumnCount()
}

// renormalize rebuilds the table under its normalized column labels, re-keying
// every row from the original label to the normalized one.
func renormalize(t *table.Table, normalized []string) *table.Table {
	out := table.New(normalized)
	out.Rows = make([]table.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		copied := make(table.Row, len(normalized))
		for i, col := range t.Columns {
			copied[normalized[i]] = row[col]
		}
		out.Rows = append(out.Rows, copied)
	}
	return out
}
