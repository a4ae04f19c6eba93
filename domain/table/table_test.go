package table

import (
	"reflect"
	"testing"
)

func TestNormalizeColumns(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   []string
	}{
		{
			name:   "trims surrounding whitespace",
			labels: []string{" id", "name ", "\tage\n"},
			want:   []string{"id", "name", "age"},
		},
		{
			name:   "preserves order and inner whitespace",
			labels: []string{"first name", "last name"},
			want:   []string{"first name", "last name"},
		},
		{
			name:   "duplicates pass through",
			labels: []string{"id", " id"},
			want:   []string{"id", "id"},
		},
		{
			name:   "empty input",
			labels: []string{},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeColumns(tt.labels)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeColumns(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}

func TestDuplicateLabel(t *testing.T) {
	if got := DuplicateLabel([]string{"a", "b", "c"}); got != "" {
		t.Errorf("expected no duplicate, got %q", got)
	}
	if got := DuplicateLabel([]string{"a", "b", "a", "b"}); got != "a" {
		t.Errorf("expected first duplicate %q, got %q", "a", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := New([]string{"id"})
	original.Rows = []Row{{"id": "1"}}

	copied := original.Clone()
	copied.Columns[0] = "changed"
	copied.Rows[0]["id"] = "changed"
	copied.Rows = append(copied.Rows, Row{"id": "2"})

	if original.Columns[0] != "id" {
		t.Errorf("clone mutation leaked into original columns: %v", original.Columns)
	}
	if original.Rows[0]["id"] != "1" {
		t.Errorf("clone mutation leaked into original rows: %v", original.Rows)
	}
	if len(original.Rows) != 1 {
		t.Errorf("clone append leaked into original: %d rows", len(original.Rows))
	}
}

func TestAddConstantColumn(t *testing.T) {
	tbl := New([]string{"id"})
	tbl.Rows = []Row{{"id": "1"}, {"id": "2"}}

	tbl.AddConstantColumn("source_file", "f1.csv")
	if !reflect.DeepEqual(tbl.Columns, []string{"id", "source_file"}) {
		t.Fatalf("unexpected columns: %v", tbl.Columns)
	}
	for i, row := range tbl.Rows {
		if row["source_file"] != "f1.csv" {
			t.Errorf("row %d missing constant value: %v", i, row)
		}
	}

	// Re-adding the same column overwrites values instead of duplicating it.
	tbl.AddConstantColumn("source_file", "f2.csv")
	if len(tbl.Columns) != 2 {
		t.Fatalf("column duplicated: %v", tbl.Columns)
	}
	if tbl.Rows[0]["source_file"] != "f2.csv" {
		t.Errorf("expected overwrite, got %q", tbl.Rows[0]["source_file"])
	}
}
