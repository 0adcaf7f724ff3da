// Package column implements Column, the typed, overlay-aware accessor that
// sits on top of a store/colstore storage block (or, for Id and Dummy
// columns, no storage at all). A Column never owns the RowMap overlay that
// maps its table's logical rows onto its physical storage rows -- every
// operation takes the overlay as an explicit argument -- so Columns stay
// plain values with no back-pointer to their owning Table.
package column

import (
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/colstore"
	"github.com/dolthub/tracecolumn/store/rowmap"
	"github.com/dolthub/tracecolumn/store/stringpool"
)

// Column describes one typed, possibly-flagged field of a table.
type Column struct {
	Name         string
	Type         Type
	Flags        Flags
	IndexInTable uint32
	OverlayIndex uint32

	data any             // nil for TypeID and TypeDummy
	pool *stringpool.Pool // only set for TypeString
}

func newColumn(name string, typ Type, flags Flags, data any, pool *stringpool.Pool, indexInTable, overlayIndex uint32) *Column {
	if !ValidFlags(flags, typ) {
		panic("column: invalid flag combination for " + name)
	}
	return &Column{
		Name:         name,
		Type:         typ,
		Flags:        flags,
		IndexInTable: indexInTable,
		OverlayIndex: overlayIndex,
		data:         data,
		pool:         pool,
	}
}

// NewIdColumn returns the implicit id column every table carries: sorted,
// non-null, and backed by no storage at all (Get(i) == i).
func NewIdColumn(name string, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeID, idFlags, nil, nil, indexInTable, overlayIndex)
}

// NewDummyColumn returns a placeholder column for a position a view has
// projected away. Any access other than Name/Type/Flags panics.
func NewDummyColumn(name string, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeDummy, FlagNone, nil, nil, indexInTable, overlayIndex)
}

func NewInt32Column(name string, data *colstore.Dense[int32], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeInt32, flags|FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewNullableInt32Column(name string, data *colstore.Nullable[int32], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeInt32, flags&^FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewUint32Column(name string, data *colstore.Dense[uint32], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeUint32, flags|FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewNullableUint32Column(name string, data *colstore.Nullable[uint32], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeUint32, flags&^FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewInt64Column(name string, data *colstore.Dense[int64], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeInt64, flags|FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewNullableInt64Column(name string, data *colstore.Nullable[int64], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeInt64, flags&^FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewDoubleColumn(name string, data *colstore.Dense[float64], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeDouble, flags|FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewNullableDoubleColumn(name string, data *colstore.Nullable[float64], flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeDouble, flags&^FlagNonNull, data, nil, indexInTable, overlayIndex)
}

func NewStringColumn(name string, data *colstore.Dense[stringpool.Id], pool *stringpool.Pool, flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeString, flags|FlagNonNull, data, pool, indexInTable, overlayIndex)
}

func NewNullableStringColumn(name string, data *colstore.Nullable[stringpool.Id], pool *stringpool.Pool, flags Flags, indexInTable, overlayIndex uint32) *Column {
	return newColumn(name, TypeString, flags&^FlagNonNull, data, pool, indexInTable, overlayIndex)
}

func getDense[T any](c *Column, idx uint32) T {
	return c.data.(*colstore.Dense[T]).Get(idx)
}

func getNullable[T any](c *Column, idx uint32) (T, bool) {
	return c.data.(*colstore.Nullable[T]).Get(idx)
}

// getAtIdx returns the value at the given *storage* row (i.e. already
// resolved through the overlay).
func (c *Column) getAtIdx(idx uint32) sqlvalue.Value {
	switch c.Type {
	case TypeID:
		return sqlvalue.Long(int64(idx))
	case TypeDummy:
		panic("column: access to dummy column " + c.Name)
	case TypeInt32:
		if c.Flags.Has(FlagNonNull) {
			return sqlvalue.Long(int64(getDense[int32](c, idx)))
		}
		v, ok := getNullable[int32](c, idx)
		if !ok {
			return sqlvalue.Null()
		}
		return sqlvalue.Long(int64(v))
	case TypeUint32:
		if c.Flags.Has(FlagNonNull) {
			return sqlvalue.Long(int64(getDense[uint32](c, idx)))
		}
		v, ok := getNullable[uint32](c, idx)
		if !ok {
			return sqlvalue.Null()
		}
		return sqlvalue.Long(int64(v))
	case TypeInt64:
		if c.Flags.Has(FlagNonNull) {
			return sqlvalue.Long(getDense[int64](c, idx))
		}
		v, ok := getNullable[int64](c, idx)
		if !ok {
			return sqlvalue.Null()
		}
		return sqlvalue.Long(v)
	case TypeDouble:
		if c.Flags.Has(FlagNonNull) {
			return sqlvalue.Double(getDense[float64](c, idx))
		}
		v, ok := getNullable[float64](c, idx)
		if !ok {
			return sqlvalue.Null()
		}
		return sqlvalue.Double(v)
	case TypeString:
		var id stringpool.Id
		var ok bool
		if c.Flags.Has(FlagNonNull) {
			id, ok = getDense[stringpool.Id](c, idx), true
		} else {
			id, ok = getNullable[stringpool.Id](c, idx)
		}
		if !ok {
			return sqlvalue.Null()
		}
		return sqlvalue.String(c.pool.Get(id))
	default:
		panic("column: unknown type")
	}
}

// Get returns the value at the given table row, reading through overlay.
func (c *Column) Get(overlay rowmap.RowMap, row uint32) sqlvalue.Value {
	return c.getAtIdx(overlay.Get(row))
}

// IndexOf returns the table row (output position, under overlay) whose value
// equals v, or false if no such row exists. Id columns resolve via the
// overlay's inverse map (O(1) on a Range overlay, a scan of the indices on
// an Indices one); Sorted columns binary search; everything else falls back
// to a linear scan.
func (c *Column) IndexOf(overlay rowmap.RowMap, v sqlvalue.Value) (uint32, bool) {
	if c.Type == TypeID {
		if v.Type() != sqlvalue.TypeLong || v.Long() < 0 {
			return 0, false
		}
		return overlay.IndexOf(uint32(v.Long()))
	}
	n := overlay.Size()
	if c.Flags.Has(FlagSorted) {
		lo, hi := uint32(0), n
		for lo < hi {
			mid := lo + (hi-lo)/2
			if sqlvalue.Less(c.Get(overlay, mid), v) {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < n && sqlvalue.Equal(c.Get(overlay, lo), v) {
			return lo, true
		}
		return 0, false
	}
	for i := uint32(0); i < n; i++ {
		if sqlvalue.Equal(c.Get(overlay, i), v) {
			return i, true
		}
	}
	return 0, false
}

// Min returns the smallest non-null value visible through overlay.
func (c *Column) Min(overlay rowmap.RowMap) (sqlvalue.Value, bool) {
	if overlay.Size() == 0 {
		return sqlvalue.Null(), false
	}
	if c.Flags.Has(FlagSorted) && c.Flags.Has(FlagNonNull) {
		return c.Get(overlay, 0), true
	}
	return c.scanExtreme(overlay, true)
}

// Max returns the largest non-null value visible through overlay.
func (c *Column) Max(overlay rowmap.RowMap) (sqlvalue.Value, bool) {
	n := overlay.Size()
	if n == 0 {
		return sqlvalue.Null(), false
	}
	if c.Flags.Has(FlagSorted) && c.Flags.Has(FlagNonNull) {
		return c.Get(overlay, n-1), true
	}
	return c.scanExtreme(overlay, false)
}

func (c *Column) scanExtreme(overlay rowmap.RowMap, wantMin bool) (sqlvalue.Value, bool) {
	n := overlay.Size()
	var best sqlvalue.Value
	found := false
	for i := uint32(0); i < n; i++ {
		v := c.Get(overlay, i)
		if v.IsNull() {
			continue
		}
		switch {
		case !found:
			best, found = v, true
		case wantMin && sqlvalue.Less(v, best):
			best = v
		case !wantMin && sqlvalue.Less(best, v):
			best = v
		}
	}
	return best, found
}

// RebindFlags returns the flags this column should carry after being copied
// into a new table produced by Filter, Sort or a join: SetId does not
// survive a row reordering/removal.
func (c *Column) RebindFlags() Flags {
	return c.Flags &^ noCrossTableInherit
}

// Constraint/Order factories, keyed off this column's position in its table.

func (c *Column) Eq(v sqlvalue.Value) Constraint { return Constraint{c.IndexInTable, OpEq, v} }
func (c *Column) Ne(v sqlvalue.Value) Constraint { return Constraint{c.IndexInTable, OpNe, v} }
func (c *Column) Lt(v sqlvalue.Value) Constraint { return Constraint{c.IndexInTable, OpLt, v} }
func (c *Column) Le(v sqlvalue.Value) Constraint { return Constraint{c.IndexInTable, OpLe, v} }
func (c *Column) Gt(v sqlvalue.Value) Constraint { return Constraint{c.IndexInTable, OpGt, v} }
func (c *Column) Ge(v sqlvalue.Value) Constraint { return Constraint{c.IndexInTable, OpGe, v} }

func (c *Column) Null() Constraint {
	return Constraint{ColIdx: c.IndexInTable, Op: OpIsNull}
}

func (c *Column) NotNull() Constraint {
	return Constraint{ColIdx: c.IndexInTable, Op: OpIsNotNull}
}

func (c *Column) Glob(pattern string) Constraint {
	return Constraint{c.IndexInTable, OpGlob, sqlvalue.String(pattern)}
}

func (c *Column) Regex(pattern string) Constraint {
	return Constraint{c.IndexInTable, OpRegex, sqlvalue.String(pattern)}
}

func (c *Column) Asc() Order  { return Order{ColIdx: c.IndexInTable} }
func (c *Column) Desc() Order { return Order{ColIdx: c.IndexInTable, Desc: true} }
