package tablegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/stringpool"
)

func TestTableBuilderRoundTrip(t *testing.T) {
	pool := stringpool.New()
	b := NewTableBuilder("slice", pool,
		Int64Column("ts", column.FlagSorted, false),
		StringColumn("name", pool, column.FlagNone, false),
		Int64Column("dur", column.FlagNone, true),
	)

	b.AppendRow(sqlvalue.Long(100), sqlvalue.String("a"), sqlvalue.Long(10))
	b.AppendRow(sqlvalue.Long(200), sqlvalue.String("b"), sqlvalue.Null())

	tbl := b.Build()
	require.Equal(t, uint32(2), tbl.RowCount())

	nameIdx, ok := tbl.FindColumnIdxByName("name")
	require.True(t, ok)
	assert.Equal(t, "a", tbl.Get(nameIdx, 0).Str())

	durIdx, ok := tbl.FindColumnIdxByName("dur")
	require.True(t, ok)
	assert.True(t, tbl.Get(durIdx, 1).IsNull())
	assert.Equal(t, int64(10), tbl.Get(durIdx, 0).Long())
}

func TestGenerateProducesCompilableShape(t *testing.T) {
	spec := Spec{
		Package: "trace",
		Name:    "slice",
		Struct:  "Slice",
		Columns: []ColumnSpec{
			{Name: "ts", Type: "int64", Sorted: true},
			{Name: "name", Type: "string"},
			{Name: "dur", Type: "int64", Nullable: true},
		},
	}
	src, err := Generate(spec)
	require.NoError(t, err)
	assert.Contains(t, src, "package trace")
	assert.Contains(t, src, "type SliceRow struct")
	assert.Contains(t, src, "Ts int64")
	assert.Contains(t, src, "func NewSliceBuilder")
	assert.Contains(t, src, "tablegen.Int64Column(\"ts\", column.FlagSorted, false)")
}
