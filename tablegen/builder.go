// Package tablegen provides the declarative replacement for the
// table-extension macros of the system this design is modeled on: instead of
// a macro expanding per-table boilerplate at compile time, a TableBuilder is
// assembled at init time from a list of typed ColumnBuilders and produces a
// fully built *table.Table from a stream of AppendRow calls. Concrete domain
// tables (see package trace) declare their shape once, in ordinary Go, by
// constructing a TableBuilder; package cmd/gentable additionally emits this
// same declaration from a TOML schema file for callers that would rather
// keep the column list out of source.
package tablegen

import (
	"fmt"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/colstore"
	"github.com/dolthub/tracecolumn/store/stringpool"
	"github.com/dolthub/tracecolumn/table"
)

// ColumnBuilder accumulates one column's values row by row and finalizes
// into a *column.Column once every row has been appended.
type ColumnBuilder interface {
	Name() string
	AppendValue(v sqlvalue.Value)
	Build(indexInTable, overlayIndex uint32) *column.Column
}

// Int64Column declares a non-null or nullable int64 column.
func Int64Column(name string, flags column.Flags, nullable bool) ColumnBuilder {
	if nullable {
		return &nullableNumericBuilder[int64]{name: name, flags: flags, data: colstore.NewNullable[int64](flags.Has(column.FlagDense)), ctor: column.NewNullableInt64Column}
	}
	return &denseNumericBuilder[int64]{name: name, flags: flags, data: colstore.NewDense[int64](), ctor: column.NewInt64Column}
}

// Int32Column declares a non-null or nullable int32 column.
func Int32Column(name string, flags column.Flags, nullable bool) ColumnBuilder {
	if nullable {
		return &nullableNumericBuilder[int32]{name: name, flags: flags, data: colstore.NewNullable[int32](flags.Has(column.FlagDense)), ctor: column.NewNullableInt32Column}
	}
	return &denseNumericBuilder[int32]{name: name, flags: flags, data: colstore.NewDense[int32](), ctor: column.NewInt32Column}
}

// Uint32Column declares a non-null or nullable uint32 column. Used for SetId
// and reference (foreign-key-like) columns; a table's Id column is added by
// table.New, not declared here.
func Uint32Column(name string, flags column.Flags, nullable bool) ColumnBuilder {
	if nullable {
		return &nullableNumericBuilder[uint32]{name: name, flags: flags, data: colstore.NewNullable[uint32](flags.Has(column.FlagDense)), ctor: column.NewNullableUint32Column}
	}
	return &denseNumericBuilder[uint32]{name: name, flags: flags, data: colstore.NewDense[uint32](), ctor: column.NewUint32Column}
}

// DoubleColumn declares a non-null or nullable float64 column.
func DoubleColumn(name string, flags column.Flags, nullable bool) ColumnBuilder {
	if nullable {
		return &nullableNumericBuilder[float64]{name: name, flags: flags, data: colstore.NewNullable[float64](flags.Has(column.FlagDense)), ctor: column.NewNullableDoubleColumn}
	}
	return &denseNumericBuilder[float64]{name: name, flags: flags, data: colstore.NewDense[float64](), ctor: column.NewDoubleColumn}
}

// StringColumn declares a non-null or nullable interned-string column.
func StringColumn(name string, pool *stringpool.Pool, flags column.Flags, nullable bool) ColumnBuilder {
	if nullable {
		return &nullableStringBuilder{name: name, flags: flags, pool: pool, data: colstore.NewNullable[stringpool.Id](flags.Has(column.FlagDense))}
	}
	return &denseStringBuilder{name: name, flags: flags, pool: pool, data: colstore.NewDense[stringpool.Id]()}
}

type denseNumericBuilder[T int32 | uint32 | int64 | float64] struct {
	name  string
	flags column.Flags
	data  *colstore.Dense[T]
	ctor  func(string, *colstore.Dense[T], column.Flags, uint32, uint32) *column.Column
}

func (b *denseNumericBuilder[T]) Name() string { return b.name }

func (b *denseNumericBuilder[T]) AppendValue(v sqlvalue.Value) {
	b.data.Append(numericFromValue[T](b.name, v))
}

func (b *denseNumericBuilder[T]) Build(indexInTable, overlayIndex uint32) *column.Column {
	return b.ctor(b.name, b.data, b.flags, indexInTable, overlayIndex)
}

type nullableNumericBuilder[T int32 | uint32 | int64 | float64] struct {
	name  string
	flags column.Flags
	data  *colstore.Nullable[T]
	ctor  func(string, *colstore.Nullable[T], column.Flags, uint32, uint32) *column.Column
}

func (b *nullableNumericBuilder[T]) Name() string { return b.name }

func (b *nullableNumericBuilder[T]) AppendValue(v sqlvalue.Value) {
	if v.IsNull() {
		var zero T
		b.data.Append(zero, false)
		return
	}
	b.data.Append(numericFromValue[T](b.name, v), true)
}

func (b *nullableNumericBuilder[T]) Build(indexInTable, overlayIndex uint32) *column.Column {
	return b.ctor(b.name, b.data, b.flags, indexInTable, overlayIndex)
}

func numericFromValue[T int32 | uint32 | int64 | float64](name string, v sqlvalue.Value) T {
	switch v.Type() {
	case sqlvalue.TypeLong:
		return T(v.Long())
	case sqlvalue.TypeDouble:
		return T(v.Double())
	default:
		panic(fmt.Sprintf("tablegen: column %q: non-numeric value %v", name, v))
	}
}

type denseStringBuilder struct {
	name  string
	flags column.Flags
	pool  *stringpool.Pool
	data  *colstore.Dense[stringpool.Id]
}

func (b *denseStringBuilder) Name() string { return b.name }

func (b *denseStringBuilder) AppendValue(v sqlvalue.Value) {
	if v.Type() != sqlvalue.TypeString {
		panic(fmt.Sprintf("tablegen: column %q: non-string value %v", b.name, v))
	}
	b.data.Append(b.pool.Intern(v.Str()))
}

func (b *denseStringBuilder) Build(indexInTable, overlayIndex uint32) *column.Column {
	return column.NewStringColumn(b.name, b.data, b.pool, b.flags, indexInTable, overlayIndex)
}

type nullableStringBuilder struct {
	name  string
	flags column.Flags
	pool  *stringpool.Pool
	data  *colstore.Nullable[stringpool.Id]
}

func (b *nullableStringBuilder) Name() string { return b.name }

func (b *nullableStringBuilder) AppendValue(v sqlvalue.Value) {
	if v.IsNull() {
		b.data.Append(stringpool.Null, false)
		return
	}
	if v.Type() != sqlvalue.TypeString {
		panic(fmt.Sprintf("tablegen: column %q: non-string value %v", b.name, v))
	}
	b.data.Append(b.pool.Intern(v.Str()), true)
}

func (b *nullableStringBuilder) Build(indexInTable, overlayIndex uint32) *column.Column {
	return column.NewNullableStringColumn(b.name, b.data, b.pool, b.flags, indexInTable, overlayIndex)
}

// TableBuilder accumulates rows, one AppendRow call at a time, across a
// fixed set of ColumnBuilders and produces the finished *table.Table.
type TableBuilder struct {
	name string
	pool *stringpool.Pool
	cols []ColumnBuilder
	rows uint32
}

// NewTableBuilder returns a builder for a table named name with the given
// columns, in declaration order.
func NewTableBuilder(name string, pool *stringpool.Pool, cols ...ColumnBuilder) *TableBuilder {
	return &TableBuilder{name: name, pool: pool, cols: cols}
}

// AppendRow appends one row; values must be given in the same order as the
// columns passed to NewTableBuilder.
func (b *TableBuilder) AppendRow(values ...sqlvalue.Value) {
	if len(values) != len(b.cols) {
		panic(fmt.Sprintf("tablegen: table %q: AppendRow got %d values, want %d", b.name, len(values), len(b.cols)))
	}
	for i, v := range values {
		b.cols[i].AppendValue(v)
	}
	b.rows++
}

// Build finalizes every column and returns the table.
func (b *TableBuilder) Build() *table.Table {
	t := table.New(b.name, b.pool, b.rows)
	for _, cb := range b.cols {
		cb := cb
		t.AddColumn(func(idx, overlay uint32) *column.Column { return cb.Build(idx, overlay) })
	}
	return t
}
