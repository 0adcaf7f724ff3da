// Package trace declares the small set of concrete tables a trace processing
// engine built on top of column/table/view would expose: slice (timed
// events), thread, and args (the generic, set-grouped key/value store most
// slice-like tables point into via arg_set_id). They exist to exercise the
// core engine end-to-end rather than as a complete trace schema.
package trace

import (
	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/stringpool"
	"github.com/dolthub/tracecolumn/table"
	"github.com/dolthub/tracecolumn/tablegen"
)

// SliceRow is one row of the slice table: a named, timed event. Dur is null
// (still open / instantaneous) when DurNull is set. Every slice is assigned
// its own arg_set_id, whether or not any row in the args table ends up using
// it -- args are looked up by set id, not the other way around.
type SliceRow struct {
	Ts       int64
	Dur      int64
	DurNull  bool
	Name     string
	Utid     int64
	ArgSetId uint32
}

// NewSliceBuilder returns a builder for the slice table. ts is Sorted (trace
// events are produced in timestamp order) and arg_set_id is a SetId column:
// sorted, non-null, and assigned in increasing order as slices are created,
// one id per slice.
func NewSliceBuilder(pool *stringpool.Pool) *tablegen.TableBuilder {
	return tablegen.NewTableBuilder("slice", pool,
		tablegen.Int64Column("ts", column.FlagSorted, false),
		tablegen.Int64Column("dur", column.FlagNone, true),
		tablegen.StringColumn("name", pool, column.FlagNone, false),
		tablegen.Int64Column("utid", column.FlagNone, false),
		tablegen.Uint32Column("arg_set_id", column.FlagSorted|column.FlagNonNull|column.FlagSetId, false),
	)
}

// AppendSlice appends one row to b, built via NewSliceBuilder.
func AppendSlice(b *tablegen.TableBuilder, row SliceRow) {
	dur := sqlvalue.Long(row.Dur)
	if row.DurNull {
		dur = sqlvalue.Null()
	}
	b.AppendRow(
		sqlvalue.Long(row.Ts),
		dur,
		sqlvalue.String(row.Name),
		sqlvalue.Long(row.Utid),
		sqlvalue.Long(int64(row.ArgSetId)),
	)
}

// ThreadRow is one row of the thread table.
type ThreadRow struct {
	Tid      int64
	Name     string
	NameNull bool
}

// NewThreadBuilder returns a builder for the thread table.
func NewThreadBuilder(pool *stringpool.Pool) *tablegen.TableBuilder {
	return tablegen.NewTableBuilder("thread", pool,
		tablegen.Int64Column("tid", column.FlagNone, false),
		tablegen.StringColumn("name", pool, column.FlagNone, true),
	)
}

// AppendThread appends one row to b, built via NewThreadBuilder.
func AppendThread(b *tablegen.TableBuilder, row ThreadRow) {
	name := sqlvalue.String(row.Name)
	if row.NameNull {
		name = sqlvalue.Null()
	}
	b.AppendRow(sqlvalue.Long(row.Tid), name)
}

// ArgRow is one row of the generic args table: one key/value pair within an
// arg set.
type ArgRow struct {
	SetId    uint32
	Key      string
	IntValue int64
}

// NewArgsBuilder returns a builder for the args table. set_id is Sorted
// (rows are appended set by set) but, unlike slice.arg_set_id, is not itself
// a SetId column: a set legitimately holds more than one row, which breaks
// the SetId invariant's "first row with value v is row v" requirement.
func NewArgsBuilder(pool *stringpool.Pool) *tablegen.TableBuilder {
	return tablegen.NewTableBuilder("args", pool,
		tablegen.Uint32Column("set_id", column.FlagSorted, false),
		tablegen.StringColumn("key", pool, column.FlagNone, false),
		tablegen.Int64Column("int_value", column.FlagNone, false),
	)
}

// AppendArg appends one row to b, built via NewArgsBuilder.
func AppendArg(b *tablegen.TableBuilder, row ArgRow) {
	b.AppendRow(sqlvalue.Long(int64(row.SetId)), sqlvalue.String(row.Key), sqlvalue.Long(row.IntValue))
}

// BuildExampleTrace assembles a small, fixed trace: three threads, five
// slices (two pointing at the one- and two-row arg sets, three at
// argument-free sets), enough to exercise every fast path FilterInto can take.
func BuildExampleTrace(pool *stringpool.Pool) (slice, thread, args *table.Table) {
	sb := NewSliceBuilder(pool)
	AppendSlice(sb, SliceRow{Ts: 100, Dur: 10, Name: "sched_switch", Utid: 0, ArgSetId: 0})
	AppendSlice(sb, SliceRow{Ts: 150, Dur: 5, Name: "sched_wakeup", Utid: 1, ArgSetId: 1})
	AppendSlice(sb, SliceRow{Ts: 150, DurNull: true, Name: "irq_handler_entry", Utid: 2, ArgSetId: 2})
	AppendSlice(sb, SliceRow{Ts: 200, Dur: 1, Name: "sched_switch", Utid: 0, ArgSetId: 3})
	AppendSlice(sb, SliceRow{Ts: 400, DurNull: true, Name: "sched_wakeup", Utid: 1, ArgSetId: 4})

	tb := NewThreadBuilder(pool)
	AppendThread(tb, ThreadRow{Tid: 10, Name: "main"})
	AppendThread(tb, ThreadRow{Tid: 20, Name: "worker"})
	AppendThread(tb, ThreadRow{Tid: 30, NameNull: true})

	ab := NewArgsBuilder(pool)
	AppendArg(ab, ArgRow{SetId: 0, Key: "prio", IntValue: 120})
	AppendArg(ab, ArgRow{SetId: 1, Key: "cpu", IntValue: 2})
	AppendArg(ab, ArgRow{SetId: 1, Key: "prio", IntValue: 99})

	return sb.Build(), tb.Build(), ab.Build()
}
