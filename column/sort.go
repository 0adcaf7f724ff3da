package column

import (
	"sort"

	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/rowmap"
)

// StableSort returns a permutation of [0, overlay.Size()) -- table-row
// positions -- ordered by this column's value (null sorts first ascending,
// last descending), stable with respect to the input order for equal keys.
// Multi-key sorts chain StableSortWithin once per key, from least to most
// significant.
func (c *Column) StableSort(overlay rowmap.RowMap, desc bool) []uint32 {
	return c.stableSortWithin(overlay, desc, nil)
}

// StableSortWithin is like StableSort but reorders a caller-supplied
// permutation in place instead of starting from identity, letting callers
// chain multiple columns into a single multi-key sort.
func (c *Column) StableSortWithin(overlay rowmap.RowMap, desc bool, perm []uint32) []uint32 {
	return c.stableSortWithin(overlay, desc, perm)
}

func (c *Column) stableSortWithin(overlay rowmap.RowMap, desc bool, perm []uint32) []uint32 {
	n := overlay.Size()
	if perm == nil {
		perm = make([]uint32, n)
		for i := range perm {
			perm[i] = uint32(i)
		}
	}
	values := make([]sqlvalue.Value, n)
	for i := uint32(0); i < n; i++ {
		values[i] = c.Get(overlay, i)
	}
	sort.SliceStable(perm, func(i, j int) bool {
		a, b := values[perm[i]], values[perm[j]]
		if desc {
			return sqlvalue.Less(b, a)
		}
		return sqlvalue.Less(a, b)
	})
	return perm
}
