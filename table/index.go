package table

import (
	"github.com/google/btree"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/rowmap"
)

// secondaryIndex maps a column's values to the first row holding each value,
// built once and reused across every probe of a join -- the column-level
// IndexOf paths for Id and Sorted columns already avoid scanning the
// column's values, but a column with neither property would otherwise cost
// LookupJoin one linear scan per left row. Built lazily, only for join keys that need it.
type secondaryIndex struct {
	tree *btree.BTreeG[indexEntry]
}

type indexEntry struct {
	value sqlvalue.Value
	row   uint32
}

func lessEntry(a, b indexEntry) bool { return sqlvalue.Less(a.value, b.value) }

// needsIndex reports whether looking up values in col benefits from a
// secondaryIndex: true unless col already has an O(1)/O(log n) IndexOf path.
func needsIndex(col *column.Column) bool {
	return col.Type != column.TypeID && !col.Flags.Has(column.FlagSorted)
}

func buildSecondaryIndex(col *column.Column, overlay rowmap.RowMap, n uint32) *secondaryIndex {
	tree := btree.NewG[indexEntry](32, lessEntry)
	for i := uint32(0); i < n; i++ {
		v := col.Get(overlay, i)
		if v.IsNull() {
			continue
		}
		entry := indexEntry{value: v, row: i}
		if _, exists := tree.Get(entry); !exists {
			tree.ReplaceOrInsert(entry)
		}
	}
	return &secondaryIndex{tree: tree}
}

func (x *secondaryIndex) Get(v sqlvalue.Value) (uint32, bool) {
	found, ok := x.tree.Get(indexEntry{value: v})
	if !ok {
		return 0, false
	}
	return found.row, true
}
