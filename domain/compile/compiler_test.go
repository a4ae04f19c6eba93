package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetstack/domain/table"
	"sheetstack/internal/errors"
)

func twoRowTable() *table.Table {
	t := table.New([]string{"id", "name"})
	t.Rows = []table.Row{
		{"id": "1", "name": "a"},
		{"id": "2", "name": "b"},
	}
	return t
}

func TestSeedLocksSchemaAndTagsProvenance(t *testing.T) {
	c := New(DefaultOptions())

	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	assert.True(t, c.Seeded())
	assert.Equal(t, []string{"id", "name"}, c.ExpectedColumns(), "schema locks before the provenance column is added")

	compiled := c.Snapshot()
	require.NotNil(t, compiled)
	assert.Equal(t, []string{"id", "name", "source_file"}, compiled.Columns)
	require.Equal(t, 2, compiled.RowCount())
	for _, row := range compiled.Rows {
		assert.Equal(t, "f1.csv", row["source_file"])
	}
}

func TestSeedNormalizesColumns(t *testing.T) {
	c := New(DefaultOptions())
	in := table.New([]string{" id", "name "})
	in.Rows = []table.Row{{" id": "1", "name ": "a"}}

	require.NoError(t, c.Seed(in, "f1.csv"))
	assert.Equal(t, []string{"id", "name"}, c.ExpectedColumns())

	compiled := c.Snapshot()
	assert.Equal(t, "1", compiled.Rows[0]["id"], "rows are re-keyed to normalized labels")
}

func TestSeedTwiceFails(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	err := c.Seed(twoRowTable(), "f2.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeAlreadySeeded, errors.GetCode(err))
	assert.Equal(t, 2, c.TotalRows(), "failed seed must not mutate state")
}

func TestAppendMatchingFile(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	next := table.New([]string{"id", "name"})
	next.Rows = []table.Row{{"id": "3", "name": "c"}}
	require.NoError(t, c.Append(next, "f2.csv"))

	assert.Equal(t, 3, c.TotalRows())
	assert.Equal(t, 2, c.FileCount())

	uploads := c.Uploads()
	require.Len(t, uploads, 2)
	assert.Equal(t, "f1.csv", uploads[0].Filename)
	assert.Equal(t, "f2.csv", uploads[1].Filename)
	assert.Equal(t, 1, uploads[1].Rows)

	compiled := c.Snapshot()
	assert.Equal(t, "f1.csv", compiled.Rows[0]["source_file"], "existing rows keep their provenance")
	assert.Equal(t, "f2.csv", compiled.Rows[2]["source_file"])
	assert.Equal(t, "3", compiled.Rows[2]["id"], "new rows append after existing rows in file order")
}

func TestAppendReorderedFileRejected(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	reordered := table.New([]string{"name", "id"})
	reordered.Rows = []table.Row{{"name": "x", "id": "9"}}

	err := c.Append(reordered, "f2.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))

	sm, ok := errors.AsSchemaMismatch(err)
	require.True(t, ok)
	assert.True(t, sm.Match.Reordered)
	assert.Empty(t, sm.Match.Missing)
	assert.Empty(t, sm.Match.Extra)

	assert.Equal(t, 2, c.TotalRows(), "rejected file must have zero observable effect")
	assert.Equal(t, 1, c.FileCount())
}

func TestAppendExtraColumnRejected(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	wider := table.New([]string{"id", "name", "extra"})
	wider.Rows = []table.Row{{"id": "9", "name": "x", "extra": "y"}}

	err := c.Append(wider, "f2.csv")
	require.Error(t, err)

	sm, ok := errors.AsSchemaMismatch(err)
	require.True(t, ok)
	assert.Equal(t, []string{"extra"}, sm.Match.Extra)
	assert.Empty(t, sm.Match.Missing)
	assert.False(t, sm.Match.Reordered)
}

func TestRejectionIsIdempotent(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	before := c.Snapshot()
	expectedBefore := c.ExpectedColumns()

	mismatch := table.New([]string{"wrong"})
	mismatch.Rows = []table.Row{{"wrong": "v"}}
	for i := 0; i < 5; i++ {
		err := c.Append(mismatch, "bad.csv")
		require.Error(t, err)
	}

	assert.Equal(t, before, c.Snapshot(), "compiled table unchanged after repeated rejections")
	assert.Equal(t, expectedBefore, c.ExpectedColumns(), "schema unchanged after repeated rejections")
	assert.Equal(t, 1, c.FileCount())
}

func TestResetReturnsToEmpty(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	c.Reset()
	assert.False(t, c.Seeded())
	assert.Nil(t, c.ExpectedColumns())
	assert.Nil(t, c.Snapshot())
	assert.Empty(t, c.Uploads())
	assert.Zero(t, c.TotalRows())
	assert.Zero(t, c.TotalColumns())

	// Idempotent.
	c.Reset()
	assert.False(t, c.Seeded())

	// A subsequent upload behaves as the first ever: it re-seeds.
	reseeded := table.New([]string{"other"})
	reseeded.Rows = []table.Row{{"other": "1"}}
	require.NoError(t, c.Seed(reseeded, "f3.csv"))
	assert.Equal(t, []string{"other"}, c.ExpectedColumns())
}

func TestAppendBeforeSeedFails(t *testing.T) {
	c := New(DefaultOptions())
	err := c.Append(twoRowTable(), "f1.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
}

func TestDuplicateNormalizedLabelsRejected(t *testing.T) {
	c := New(DefaultOptions())
	in := table.New([]string{"id", " id"})
	in.Rows = []table.Row{{"id": "1", " id": "2"}}

	err := c.Seed(in, "f1.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicateColumn, errors.GetCode(err))
	assert.False(t, c.Seeded(), "rejected seed leaves the compiler empty")
}

func TestProvenanceDisabled(t *testing.T) {
	c := New(Options{AddSourceColumn: false})
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	compiled := c.Snapshot()
	assert.Equal(t, []string{"id", "name"}, compiled.Columns)
	_, tagged := compiled.Rows[0]["source_file"]
	assert.False(t, tagged)
}

func TestCustomProvenanceColumnName(t *testing.T) {
	c := New(Options{AddSourceColumn: true, SourceColumnName: "origin"})
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	compiled := c.Snapshot()
	assert.Equal(t, []string{"id", "name", "origin"}, compiled.Columns)
	assert.Equal(t, "f1.csv", compiled.Rows[0]["origin"])
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Seed(twoRowTable(), "f1.csv"))

	snap := c.Snapshot()
	snap.Rows[0]["id"] = "mutated"
	snap.Rows = snap.Rows[:0]

	assert.Equal(t, "1", c.Snapshot().Rows[0]["id"])
	assert.Equal(t, 2, c.TotalRows())
}
