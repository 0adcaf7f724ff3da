package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/bitvec"
	"github.com/dolthub/tracecolumn/store/colstore"
	"github.com/dolthub/tracecolumn/store/stringpool"
	"github.com/dolthub/tracecolumn/table"
)

func buildSliceArgsView(t *testing.T) *View {
	t.Helper()
	pool := stringpool.New()

	slice := table.New("slice", pool, 3)
	names := colstore.NewDense[stringpool.Id]()
	for _, s := range []string{"a", "b", "c"} {
		names.Append(pool.Intern(s))
	}
	slice.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewStringColumn("name", names, pool, column.FlagNone, idx, overlay)
	})
	argSetIds := colstore.NewDense[uint32]()
	for _, v := range []uint32{0, 1, 2} {
		argSetIds.Append(v)
	}
	slice.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewUint32Column("arg_set_id", argSetIds, column.FlagSorted|column.FlagNonNull|column.FlagSetId, idx, overlay)
	})

	args := table.New("args", pool, 3)
	setIds := colstore.NewDense[uint32]()
	for _, v := range []uint32{0, 1, 2} {
		setIds.Append(v)
	}
	args.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewUint32Column("set_id", setIds, column.FlagSorted|column.FlagNonNull|column.FlagSetId, idx, overlay)
	})
	intVals := colstore.NewDense[int64]()
	for _, v := range []int64{42, 7, 8} {
		intVals.Append(v)
	}
	args.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewInt64Column("int_value", intVals, column.FlagNone, idx, overlay)
	})

	nodes := []TableNode{
		{Alias: "slice", Source: slice, Parent: RootNode},
		{Alias: "args", Source: args, Parent: 0, JoinColumn: "set_id", ParentColumn: "arg_set_id"},
	}
	outputs := []OutputColumn{
		{Name: "name", NodeAlias: "slice", ColumnName: "name"},
		{Name: "int_value", NodeAlias: "args", ColumnName: "int_value"},
	}
	v, err := Create("slice_with_args", nodes, outputs)
	require.NoError(t, err)
	return v
}

func TestViewQueryJoinsAndProjects(t *testing.T) {
	v := buildSliceArgsView(t)
	result, err := v.Query(nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(3), result.RowCount())
	require.Equal(t, uint32(2), result.OverlayCount())

	nameIdx, ok := result.FindColumnIdxByName("name")
	require.True(t, ok)
	intIdx, ok := result.FindColumnIdxByName("int_value")
	require.True(t, ok)

	var names []string
	var vals []int64
	result.IterateRows(func(row uint32, values []sqlvalue.Value) bool {
		names = append(names, values[nameIdx].Str())
		vals = append(vals, values[intIdx].Long())
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []int64{42, 7, 8}, vals)
}

func TestViewQueryPushesDownConstraint(t *testing.T) {
	v := buildSliceArgsView(t)
	result, err := v.Query([]Constraint{{OutputCol: 1, Op: column.OpGt, Value: sqlvalue.Long(7)}}, nil, nil)
	require.NoError(t, err)

	nameIdx, ok := result.FindColumnIdxByName("name")
	require.True(t, ok)
	intIdx, ok := result.FindColumnIdxByName("int_value")
	require.True(t, ok)

	var names []string
	var vals []int64
	result.IterateRows(func(row uint32, values []sqlvalue.Value) bool {
		names = append(names, values[nameIdx].Str())
		vals = append(vals, values[intIdx].Long())
		return true
	})
	assert.Equal(t, []string{"a", "c"}, names)
	assert.Equal(t, []int64{42, 8}, vals)
}

func TestViewQueryCachesResult(t *testing.T) {
	v := buildSliceArgsView(t)
	a, err := v.Query(nil, nil, nil)
	require.NoError(t, err)
	b, err := v.Query(nil, nil, nil)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestViewQueryPrunesUnusedColumnToDummy(t *testing.T) {
	v := buildSliceArgsView(t)
	colsUsed := bitvec.WithSize(2, false)
	colsUsed.Set(0, true) // only "name" requested; "int_value" is pruned

	result, err := v.Query(nil, nil, &colsUsed)
	require.NoError(t, err)
	require.Equal(t, uint32(3), result.RowCount())

	intIdx, ok := result.FindColumnIdxByName("int_value")
	require.True(t, ok)
	assert.Equal(t, column.TypeDummy, result.GetColumn(intIdx).Type)

	nameIdx, ok := result.FindColumnIdxByName("name")
	require.True(t, ok)
	var names []string
	result.IterateRows(func(row uint32, values []sqlvalue.Value) bool {
		names = append(names, values[nameIdx].Str())
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestCreateRejectsDuplicateAlias(t *testing.T) {
	pool := stringpool.New()
	tbl := table.New("t", pool, 0)
	_, err := Create("v", []TableNode{
		{Alias: "a", Source: tbl, Parent: RootNode},
		{Alias: "a", Source: tbl, Parent: 0, JoinColumn: "id", ParentColumn: "id"},
	}, nil)
	assert.Error(t, err)
}

func TestCreateRejectsUnknownOutputAlias(t *testing.T) {
	pool := stringpool.New()
	tbl := table.New("t", pool, 0)
	_, err := Create("v", []TableNode{
		{Alias: "a", Source: tbl, Parent: RootNode},
	}, []OutputColumn{{Name: "x", NodeAlias: "missing", ColumnName: "id"}})
	assert.Error(t, err)
}
