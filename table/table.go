// Package table implements Table, a set of named, typed columns sharing one
// or more RowMap overlays, plus the row-set algebra (Filter, Sort,
// LookupJoin) that produces new Tables from existing ones without copying
// storage: every derived Table keeps referencing its ancestors' storage
// blocks and narrows/reorders the view onto them via a fresh overlay.
package table

import (
	"fmt"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/rowmap"
	"github.com/dolthub/tracecolumn/store/stringpool"
)

// Table is a named row set: a vector of overlays (RowMaps) shared by one or
// more Columns, each Column pinned to the overlay it reads through via
// OverlayIndex.
type Table struct {
	Name string

	pool     *stringpool.Pool
	columns  []*column.Column
	rowMaps  []rowmap.RowMap
	rowCount uint32
}

// New returns an empty table of rowCount rows with a single identity overlay
// and the implicit id column at index 0.
func New(name string, pool *stringpool.Pool, rowCount uint32) *Table {
	t := &Table{
		Name:     name,
		pool:     pool,
		rowMaps:  []rowmap.RowMap{rowmap.NewRange(0, rowCount)},
		rowCount: rowCount,
	}
	t.columns = append(t.columns, column.NewIdColumn("id", 0, 0))
	return t
}

// Pool returns the string pool backing this table's String columns.
func (t *Table) Pool() *stringpool.Pool { return t.pool }

// RowCount returns the number of logical rows.
func (t *Table) RowCount() uint32 { return t.rowCount }

// Columns returns the table's columns in declaration order.
func (t *Table) Columns() []*column.Column { return t.columns }

// OverlayCount returns the number of distinct RowMap overlays backing this
// table -- more than one for tables produced by ExtendParent, where
// parent-inherited columns keep the parent's overlay and child-only columns
// get their own, and for tables produced by LookupJoin, which appends the
// other table's overlays.
func (t *Table) OverlayCount() uint32 { return uint32(len(t.rowMaps)) }

// Overlay returns the RowMap a column with the given OverlayIndex reads
// through.
func (t *Table) Overlay(idx uint32) rowmap.RowMap { return t.rowMaps[idx] }

// AddColumn registers a new column bound to overlay 0 (the table's primary,
// identity overlay), assigning it the next IndexInTable. Intended to be
// called by table-construction code (see package tablegen) while building
// up a fresh Table; not meant to be called on a Table already handed out to
// query code.
func (t *Table) AddColumn(build func(indexInTable, overlayIndex uint32) *column.Column) *column.Column {
	col := build(uint32(len(t.columns)), 0)
	t.columns = append(t.columns, col)
	return col
}

// FindColumnIdxByName returns the index of the column with the given name.
func (t *Table) FindColumnIdxByName(name string) (uint32, bool) {
	for i, c := range t.columns {
		if c.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// GetColumn returns the column at idx.
func (t *Table) GetColumn(idx uint32) *column.Column { return t.columns[idx] }

// Get returns the value of column colIdx at table row.
func (t *Table) Get(colIdx, row uint32) sqlvalue.Value {
	c := t.columns[colIdx]
	return c.Get(t.rowMaps[c.OverlayIndex], row)
}

// Schema describes one column's static shape, independent of any row data.
type Schema struct {
	Name  string
	Type  column.Type
	Flags column.Flags
}

// SchemaOf returns the static schema of this table.
func (t *Table) SchemaOf() []Schema {
	out := make([]Schema, len(t.columns))
	for i, c := range t.columns {
		out[i] = Schema{Name: c.Name, Type: c.Type, Flags: c.Flags}
	}
	return out
}

// Filter returns a new Table containing only the rows matching every
// constraint, in the original row order. Constraints are applied in the
// order given, each narrowing the result further -- callers should order
// cheap/selective constraints first.
func (t *Table) Filter(constraints []column.Constraint) (*Table, error) {
	rm := rowmap.NewRange(0, t.rowCount)
	for _, c := range constraints {
		col := t.columns[c.ColIdx]
		overlay := t.rowMaps[col.OverlayIndex]
		if err := col.FilterInto(overlay, c.Op, c.Value, &rm); err != nil {
			return nil, fmt.Errorf("table %q: filter on column %q: %w", t.Name, col.Name, err)
		}
		if rm.Empty() {
			break
		}
	}
	return t.selectRows(rm), nil
}

// Sort returns a new Table with rows reordered by the given keys, most
// significant first. The sort is stable: rows equal on every given key keep
// their relative order.
func (t *Table) Sort(orders []column.Order) *Table {
	n := t.rowCount
	var perm []uint32
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		col := t.columns[o.ColIdx]
		overlay := t.rowMaps[col.OverlayIndex]
		perm = col.StableSortWithin(overlay, o.Desc, perm)
	}
	if perm == nil {
		perm = make([]uint32, n)
		for i := range perm {
			perm[i] = uint32(i)
		}
	}
	out := t.selectRows(rowmap.NewIndices(perm))
	if len(orders) > 0 {
		// Reordering rows invalidates every column's Sorted flag.
		for _, c := range out.columns {
			c.Flags &^= column.FlagSorted
		}
	}
	return out
}

// selectRows builds a new Table whose overlays are this table's overlays
// composed through rm, and whose columns are rebound copies of this table's
// columns (dropping flags, like SetId, that a reordering/filtering
// invalidates).
func (t *Table) selectRows(rm rowmap.RowMap) *Table {
	newRowMaps := make([]rowmap.RowMap, len(t.rowMaps))
	for i, overlay := range t.rowMaps {
		newRowMaps[i] = overlay.SelectRows(rm)
	}
	out := &Table{
		Name:     t.Name,
		pool:     t.pool,
		rowMaps:  newRowMaps,
		rowCount: rm.Size(),
	}
	out.columns = make([]*column.Column, len(t.columns))
	for i, c := range t.columns {
		rebound := *c
		rebound.Flags = c.RebindFlags()
		out.columns[i] = &rebound
	}
	return out
}

// LookupJoin performs an inner join of t against other on
// t[leftColIdx] == other[otherColIdx], keeping every column of t plus every
// non-id column of other. Rows of t with no matching row in other are
// dropped from the result.
func (t *Table) LookupJoin(leftColIdx uint32, other *Table, otherColIdx uint32) (*Table, error) {
	leftCol := t.columns[leftColIdx]
	leftOverlay := t.rowMaps[leftCol.OverlayIndex]
	otherCol := other.columns[otherColIdx]
	otherOverlay := other.rowMaps[otherCol.OverlayIndex]

	// otherCol.IndexOf goes through the overlay's inverse map for an Id
	// column (O(1) on a Range overlay, a linear scan on an Indices one) and
	// binary searches a Sorted one; any other column is a linear scan of its
	// values per call, which turns this loop quadratic. Build a one-off
	// secondary index up front in that case so it stays O((L+R) log R).
	var idx *secondaryIndex
	if needsIndex(otherCol) {
		idx = buildSecondaryIndex(otherCol, otherOverlay, other.rowCount)
	}

	var leftIdx, rightIdx []uint32
	for i := uint32(0); i < t.rowCount; i++ {
		v := leftCol.Get(leftOverlay, i)
		var pos uint32
		var ok bool
		if idx != nil {
			pos, ok = idx.Get(v)
		} else {
			pos, ok = otherCol.IndexOf(otherOverlay, v)
		}
		if !ok {
			continue
		}
		leftIdx = append(leftIdx, i)
		rightIdx = append(rightIdx, pos)
	}
	leftRM := rowmap.NewIndices(leftIdx)
	rightRM := rowmap.NewIndices(rightIdx)

	joined := t.selectRows(leftRM)
	overlayOffset := uint32(len(joined.rowMaps))
	for _, overlay := range other.rowMaps {
		joined.rowMaps = append(joined.rowMaps, overlay.SelectRows(rightRM))
	}

	colOffset := uint32(len(joined.columns))
	for _, c := range other.columns {
		if c.Type == column.TypeID {
			continue
		}
		rebound := *c
		// other's rows now follow t's row order, so Sorted no longer holds.
		rebound.Flags = c.RebindFlags() &^ column.FlagSorted
		rebound.IndexInTable = colOffset
		rebound.OverlayIndex += overlayOffset
		joined.columns = append(joined.columns, &rebound)
		colOffset++
	}
	return joined, nil
}

// ExtendParent returns a new Table that inherits every column of parent
// (sharing parent's overlays, at their original OverlayIndex) and is ready
// to have child-only columns appended via AddChildColumn, each bound to a
// fresh overlay private to the child.
func ExtendParent(name string, parent *Table, childRowCount uint32) *Table {
	out := &Table{
		Name:     name,
		pool:     parent.pool,
		rowMaps:  append([]rowmap.RowMap(nil), parent.rowMaps...),
		rowCount: childRowCount,
	}
	out.columns = append([]*column.Column(nil), parent.columns...)
	out.rowMaps = append(out.rowMaps, rowmap.NewRange(0, childRowCount))
	return out
}

// AddChildColumn registers a new column bound to the child's own overlay
// (the last overlay of a table produced by ExtendParent), assigning it the
// next IndexInTable.
func (t *Table) AddChildColumn(build func(indexInTable, overlayIndex uint32) *column.Column) *column.Column {
	overlayIdx := uint32(len(t.rowMaps) - 1)
	col := build(uint32(len(t.columns)), overlayIdx)
	t.columns = append(t.columns, col)
	return col
}

// IterateRows calls fn once per row, in row order, with that row's values
// across every column. A Dummy column (a view's placeholder for a
// projected-away output) never gets read; its slot holds the zero Value
// instead. Iteration stops early if fn returns false.
func (t *Table) IterateRows(fn func(row uint32, values []sqlvalue.Value) bool) {
	values := make([]sqlvalue.Value, len(t.columns))
	for row := uint32(0); row < t.rowCount; row++ {
		for i, c := range t.columns {
			if c.Type == column.TypeDummy {
				values[i] = sqlvalue.Value{}
				continue
			}
			values[i] = c.Get(t.rowMaps[c.OverlayIndex], row)
		}
		if !fn(row, values) {
			return
		}
	}
}
