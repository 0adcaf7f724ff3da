package column

import (
	"fmt"

	"github.com/dolthub/tracecolumn/store/colstore"
	"github.com/dolthub/tracecolumn/store/rowmap"
)

// numeric is the set of storage element types a TypedColumn can wrap.
type numeric interface {
	int32 | uint32 | int64 | float64
}

// TypedColumn gives zero-conversion access to a non-null column's values,
// paying the type-discriminant check once at construction instead of on
// every Get.
type TypedColumn[T numeric] struct {
	dense   *colstore.Dense[T]
	overlay rowmap.RowMap
}

// AsTyped wraps col for typed access through overlay. It panics if col is
// not a non-null column backed by Dense[T] -- callers are expected to build
// a TypedColumn once per query and reuse it across rows, not per access.
func AsTyped[T numeric](col *Column, overlay rowmap.RowMap) TypedColumn[T] {
	d, ok := col.data.(*colstore.Dense[T])
	if !ok {
		var zero T
		panic(fmt.Sprintf("column: AsTyped[%T] mismatch on column %q", zero, col.Name))
	}
	return TypedColumn[T]{dense: d, overlay: overlay}
}

// Get returns the value at the given table row.
func (t TypedColumn[T]) Get(row uint32) T {
	return t.dense.Get(t.overlay.Get(row))
}

// Len returns the number of rows visible through this column's overlay.
func (t TypedColumn[T]) Len() uint32 { return t.overlay.Size() }

// IdColumn gives zero-conversion access to an Id column: Get(i) == i read
// through the overlay, with no backing storage at all.
type IdColumn struct {
	overlay rowmap.RowMap
}

// AsIdColumn wraps col for typed Id access through overlay. Panics if col is
// not an Id column.
func AsIdColumn(col *Column, overlay rowmap.RowMap) IdColumn {
	if col.Type != TypeID {
		panic(fmt.Sprintf("column: AsIdColumn on non-id column %q", col.Name))
	}
	return IdColumn{overlay: overlay}
}

func (c IdColumn) Get(row uint32) uint32 { return c.overlay.Get(row) }
func (c IdColumn) Len() uint32           { return c.overlay.Size() }
