package trace

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
	"github.com/dolthub/tracecolumn/view"
)

// buildEventTable builds the "event" table used by S1: rows (ts, arg_set_id)
// with arg_set_id a SetId column, ts Sorted.
func buildEventTable(t *testing.T) *table.Table {
	t.Helper()
	pool := stringpool.New()
	rows := []struct{ ts, argSetId int64 }{
		{0, 0}, {1, 0}, {2, 2}, {3, 3}, {4, 4}, {5, 4}, {6, 4}, {7, 4}, {8, 8},
	}
	tbl := table.New("event", pool, uint32(len(rows)))

	ts := colstore.NewDense[int64]()
	argSetId := colstore.NewDense[uint32]()
	for _, r := range rows {
		ts.Append(r.ts)
		argSetId.Append(uint32(r.argSetId))
	}
	tbl.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewInt64Column("ts", ts, column.FlagSorted, idx, overlay)
	})
	tbl.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewUint32Column("arg_set_id", argSetId, column.FlagSorted|column.FlagNonNull|column.FlagSetId, idx, overlay)
	})
	return tbl
}

func tsValues(t *testing.T, tbl *table.Table) []int64 {
	t.Helper()
	tsIdx, ok := tbl.FindColumnIdxByName("ts")
	require.True(t, ok)
	var out []int64
	tbl.IterateRows(func(row uint32, values []sqlvalue.Value) bool {
		out = append(out, values[tsIdx].Long())
		return true
	})
	return out
}

// S1 -- SetId filtering.
func TestScenarioSetIdFiltering(t *testing.T) {
	event := buildEventTable(t)
	tsIdx, ok := event.FindColumnIdxByName("ts")
	require.True(t, ok)
	argSetIdIdx, ok := event.FindColumnIdxByName("arg_set_id")
	require.True(t, ok)
	ts := event.GetColumn(tsIdx)
	argSetId := event.GetColumn(argSetIdIdx)

	r, err := event.Filter([]column.Constraint{argSetId.Eq(sqlvalue.Long(1))})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), r.RowCount())

	r, err = event.Filter([]column.Constraint{argSetId.Eq(sqlvalue.Long(4))})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5, 6, 7}, tsValues(t, r))

	r, err = event.Filter([]column.Constraint{argSetId.Eq(sqlvalue.Long(0))})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, tsValues(t, r))

	r, err = event.Filter([]column.Constraint{
		ts.Ge(sqlvalue.Long(6)),
		argSetId.Eq(sqlvalue.Long(4)),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 7}, tsValues(t, r))

	sorted := event.Sort([]column.Order{{ColIdx: tsIdx, Desc: true}})
	argSetIdCol := sorted.GetColumn(argSetIdIdx)
	assert.False(t, argSetIdCol.Flags.Has(column.FlagSetId))
}

// S2 -- sort stability.
func TestScenarioSortStability(t *testing.T) {
	pool := stringpool.New()
	v := []int64{0, 1, 2, 0, 1, 2, 0, 1, 2}
	tbl := table.New("t", pool, uint32(len(v)))
	vals := colstore.NewDense[int64]()
	for _, x := range v {
		vals.Append(x)
	}
	tbl.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewInt64Column("v", vals, column.FlagNone, idx, overlay)
	})

	perm := []uint32{1, 7, 4, 0, 6, 3, 2, 5, 8}
	col := tbl.GetColumn(1)
	out := col.StableSortWithin(tbl.Overlay(col.OverlayIndex), false, perm)
	assert.Equal(t, []uint32{0, 6, 3, 1, 7, 4, 2, 5, 8}, out)
}

// S3 -- sorted fast path.
func TestScenarioSortedFastPath(t *testing.T) {
	pool := stringpool.New()
	tbl := table.New("t", pool, 128)
	vals := colstore.NewDense[uint32]()
	for i := uint32(0); i < 128; i++ {
		vals.Append(i)
	}
	tbl.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewUint32Column("v", vals, column.FlagSorted|column.FlagNonNull, idx, overlay)
	})

	r, err := tbl.Filter([]column.Constraint{tbl.GetColumn(1).Ge(sqlvalue.Long(100))})
	require.NoError(t, err)
	assert.Equal(t, uint32(28), r.RowCount())
	assert.Equal(t, sqlvalue.Long(100), r.Get(1, 0))
}

// S4 -- nullable filtering preserves null ordering.
func TestScenarioNullableFiltering(t *testing.T) {
	pool := stringpool.New()
	const n = 1025
	tbl := table.New("t", pool, n)
	nullable := colstore.NewNullable[int64](false)
	wantNullCount := 0
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			nullable.Append(0, false)
			wantNullCount++
			continue
		}
		nullable.Append(int64(i), true)
	}
	tbl.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewNullableInt64Column("v", nullable, column.FlagNone, idx, overlay)
	})

	vCol := tbl.GetColumn(1)
	r, err := tbl.Filter([]column.Constraint{vCol.Null()})
	require.NoError(t, err)
	assert.Equal(t, uint32(wantNullCount), r.RowCount())

	r, err = tbl.Filter([]column.Constraint{vCol.NotNull()})
	require.NoError(t, err)
	assert.Equal(t, uint32(n-wantNullCount), r.RowCount())
}

// buildSliceThreadView builds the slice/thread view used by S5 and S6.
func buildSliceThreadView(t *testing.T) (*view.View, *table.Table, *table.Table) {
	t.Helper()
	pool := stringpool.New()
	slice, thread, _ := BuildExampleTrace(pool)

	nodes := []view.TableNode{
		{Alias: "slice", Source: slice, Parent: view.RootNode},
		{Alias: "thread", Source: thread, Parent: 0, JoinColumn: "id", ParentColumn: "utid", Flags: view.JoinFlagIdAlwaysPresent},
	}
	outputs := []view.OutputColumn{
		{Name: "ts", NodeAlias: "slice", ColumnName: "ts"},
		{Name: "name", NodeAlias: "thread", ColumnName: "name"},
	}
	v, err := view.Create("slice_thread", nodes, outputs)
	require.NoError(t, err)
	return v, slice, thread
}

// S5 -- view with join + projection pruning: querying with cols_used = {ts}
// and no constraints must short-circuit. The thread node carries
// JoinFlagIdAlwaysPresent and has no constraints of its own, so once its
// "name" output column is pruned out of cols_used nothing downstream needs
// it either -- the thread table is never filtered or joined in, and the
// output's "name" column comes back as a Dummy column. Result row_count
// still equals slice.row_count, since the join never happened to drop rows.
func TestScenarioViewProjectionPruning(t *testing.T) {
	v, slice, _ := buildSliceThreadView(t)

	colsUsed := bitvec.WithSize(2, false)
	colsUsed.Set(0, true) // only "ts" requested; "name" is pruned

	result, err := v.Query(nil, nil, &colsUsed)
	require.NoError(t, err)
	assert.Equal(t, slice.RowCount(), result.RowCount())

	nameIdx, ok := result.FindColumnIdxByName("name")
	require.True(t, ok)
	assert.Equal(t, column.TypeDummy, result.GetColumn(nameIdx).Type)
}

// S6 -- view with a correlated constraint on the joined table: the
// constraint is pushed down to thread before the join, so slice rows whose
// utid has no surviving thread row are dropped.
func TestScenarioViewCorrelatedConstraint(t *testing.T) {
	v, slice, _ := buildSliceThreadView(t)
	result, err := v.Query([]view.Constraint{{OutputCol: 1, Op: column.OpEq, Value: sqlvalue.String("main")}}, nil, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.RowCount(), slice.RowCount())

	nameIdx, ok := result.FindColumnIdxByName("name")
	require.True(t, ok)
	result.IterateRows(func(row uint32, values []sqlvalue.Value) bool {
		assert.Equal(t, "main", values[nameIdx].Str())
		return true
	})
}
