package table

import (
	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/store/rowmap"
)

// Project returns a new Table exposing exactly the given columns (by index
// into t.Columns()), in the given order, optionally renamed. It shares t's
// overlays and storage -- projecting away a column never touches data, it
// only narrows the schema a caller sees, which is what lets a view drop
// columns that existed only to satisfy a join without paying to copy or
// recompute anything.
//
// used selects, per output position, whether the real column at colIdxs[i]
// is projected through or replaced with a Dummy placeholder; a nil used
// means every position is real. A false entry means colIdxs[i] is never
// consulted, so callers may pass a zero value there for output positions
// whose source table was never even joined in (see package view's
// column-pruning short-circuit).
func (t *Table) Project(colIdxs []uint32, names []string, used []bool) *Table {
	out := &Table{
		Name:     t.Name,
		pool:     t.pool,
		rowMaps:  append([]rowmap.RowMap(nil), t.rowMaps...),
		rowCount: t.rowCount,
	}
	out.columns = make([]*column.Column, len(colIdxs))
	for i := range colIdxs {
		name := ""
		if names != nil {
			name = names[i]
		}
		if used != nil && !used[i] {
			out.columns[i] = column.NewDummyColumn(name, uint32(i), 0)
			continue
		}
		rebound := *t.columns[colIdxs[i]]
		rebound.IndexInTable = uint32(i)
		if name != "" {
			rebound.Name = name
		}
		out.columns[i] = &rebound
	}
	return out
}
