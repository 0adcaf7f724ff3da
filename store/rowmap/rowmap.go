// Package rowmap implements RowMap, an abstract index set over [0,N) used as
// the overlay that sits between a Table's logical rows and the physical rows
// of its backing ColumnStorage. A RowMap is one of three representations --
// a contiguous Range, an arbitrary BitVector mask, or an explicit (possibly
// repeating or permuted) vector of Indices -- chosen per-operation to keep
// the common cases (contiguous filters, identity overlays) cheap while still
// allowing the general case (sorts, joins) to be expressed.
package rowmap

import (
	"sort"

	"github.com/dolthub/tracecolumn/store/bitvec"
)

type kind uint8

const (
	kindRange kind = iota
	kindBitVector
	kindIndices
)

// RowMap is an ordered index set over [0,N). The zero value is the empty
// range and is a valid, usable RowMap.
type RowMap struct {
	k kind

	// kindRange
	start, end uint32

	// kindBitVector
	bv bitvec.BitVector

	// kindIndices
	idx []uint32
}

// NewRange returns the contiguous RowMap [start, end).
func NewRange(start, end uint32) RowMap {
	if end < start {
		end = start
	}
	return RowMap{k: kindRange, start: start, end: end}
}

// NewBitVector returns a RowMap backed by a bit mask: row i is present iff
// bv.IsSet(i).
func NewBitVector(bv bitvec.BitVector) RowMap {
	return RowMap{k: kindBitVector, bv: bv}
}

// NewIndices returns a RowMap whose i-th element is idx[i]. Unlike Range and
// BitVector, Indices may repeat or reorder storage rows; this is the
// representation produced by Sort and by joins.
func NewIndices(idx []uint32) RowMap {
	return RowMap{k: kindIndices, idx: idx}
}

// Size returns the number of elements the RowMap contains.
func (r RowMap) Size() uint32 {
	switch r.k {
	case kindRange:
		return r.end - r.start
	case kindBitVector:
		return r.bv.CountSetBits()
	case kindIndices:
		return uint32(len(r.idx))
	default:
		return 0
	}
}

// Empty reports whether the RowMap contains no elements.
func (r RowMap) Empty() bool { return r.Size() == 0 }

// Get returns the storage index at output position i.
func (r RowMap) Get(i uint32) uint32 {
	switch r.k {
	case kindRange:
		return r.start + i
	case kindBitVector:
		return r.bv.IndexOfNthSet(i)
	case kindIndices:
		return r.idx[i]
	default:
		return 0
	}
}

// IndexOf returns the output position that maps to the given storage index,
// i.e. the inverse of Get, or false if outputIdx is not present. This is
// what backs Column.IndexOf for Id columns (RowOf).
func (r RowMap) IndexOf(outputIdx uint32) (uint32, bool) {
	switch r.k {
	case kindRange:
		if outputIdx < r.start || outputIdx >= r.end {
			return 0, false
		}
		return outputIdx - r.start, true
	case kindBitVector:
		if outputIdx >= r.bv.Size() || !r.bv.IsSet(outputIdx) {
			return 0, false
		}
		return r.bv.CountSetBitsUpTo(outputIdx), true
	case kindIndices:
		for i, v := range r.idx {
			if v == outputIdx {
				return uint32(i), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// Clear empties the RowMap in place.
func (r *RowMap) Clear() {
	*r = RowMap{}
}

// Copy returns an independent copy of the RowMap.
func (r RowMap) Copy() RowMap {
	switch r.k {
	case kindBitVector:
		return RowMap{k: kindBitVector, bv: r.bv.Copy()}
	case kindIndices:
		idx := make([]uint32, len(r.idx))
		copy(idx, r.idx)
		return RowMap{k: kindIndices, idx: idx}
	default:
		return r
	}
}

// Intersect restricts r in place to rows that are also present in other,
// preserving r's original ordering. It never widens r.
func (r *RowMap) Intersect(other RowMap) {
	// Range ∩ Range stays a Range.
	if r.k == kindRange && other.k == kindRange {
		start := max32(r.start, other.start)
		end := min32(r.end, other.end)
		*r = NewRange(start, end)
		return
	}

	// General case: walk r in order, keep positions present in other.
	switch r.k {
	case kindRange:
		var kept []uint32
		for i := r.start; i < r.end; i++ {
			if other.contains(i) {
				kept = append(kept, i)
			}
		}
		*r = indicesOrRange(kept)
	case kindBitVector:
		out := bitvec.WithSize(r.bv.Size(), false)
		for _, e := range r.bv.IterateSetBits() {
			if other.contains(e.Index) {
				out.Set(e.Index, true)
			}
		}
		*r = RowMap{k: kindBitVector, bv: out}
	case kindIndices:
		kept := r.idx[:0:0]
		for _, v := range r.idx {
			if other.contains(v) {
				kept = append(kept, v)
			}
		}
		r.idx = kept
	}
}

// IntersectExact restricts r in place to the single storage index i, if
// present; otherwise r becomes empty. This is the fast path for equality
// filters on Id columns, where FilterInto has already resolved the candidate
// row via IndexOf.
func (r *RowMap) IntersectExact(i uint32) {
	if r.contains(i) {
		*r = NewRange(i, i+1)
		return
	}
	r.Clear()
}

// contains reports whether storage index i is present in r, regardless of
// output ordering.
func (r RowMap) contains(i uint32) bool {
	switch r.k {
	case kindRange:
		return i >= r.start && i < r.end
	case kindBitVector:
		return i < r.bv.Size() && r.bv.IsSet(i)
	case kindIndices:
		for _, v := range r.idx {
			if v == i {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// SelectRows composes r through other: the returned RowMap's k-th element is
// r.Get(other.Get(k)). This is the fundamental composition operator used to
// thread a filter/sort/join RowMap through a table's overlays.
func (r RowMap) SelectRows(other RowMap) RowMap {
	// Range.SelectRows(Range) stays a Range when the composition is itself
	// contiguous (other selects a contiguous sub-range of r).
	if r.k == kindRange && other.k == kindRange {
		return NewRange(r.start+other.start, r.start+other.end)
	}

	n := other.Size()
	idx := make([]uint32, n)
	for k := uint32(0); k < n; k++ {
		idx[k] = r.Get(other.Get(k))
	}
	return NewIndices(idx)
}

// RemoveIf removes, in place, every element for which pred returns true,
// applied positionally against the storage index each output position
// currently maps to. Range/BitVector representations are converted to
// Indices (or a Range, when the survivors are contiguous).
func (r *RowMap) RemoveIf(pred func(storageIdx uint32) bool) {
	switch r.k {
	case kindIndices:
		kept := r.idx[:0:0]
		for _, v := range r.idx {
			if !pred(v) {
				kept = append(kept, v)
			}
		}
		r.idx = kept
	default:
		// Positional predicate: walk in output order and keep storage indices
		// whose output position survives. Range/BitVector are converted to an
		// explicit Indices (or tighter Range, via indicesOrRange) as a result.
		var kept []uint32
		it := r.Iterator()
		for it.Next() {
			if !pred(it.StorageIndex()) {
				kept = append(kept, it.StorageIndex())
			}
		}
		*r = indicesOrRange(kept)
	}
}

// Iterator yields (ordinal, storage index) pairs in output order.
type Iterator struct {
	r   RowMap
	pos uint32
}

// Iterator returns a fresh Iterator over r.
func (r RowMap) Iterator() Iterator { return Iterator{r: r} }

// Next advances the iterator; returns false once exhausted.
func (it *Iterator) Next() bool {
	if it.pos >= it.r.Size() {
		return false
	}
	it.pos++
	return true
}

// Ordinal returns the current output position (0-based).
func (it *Iterator) Ordinal() uint32 { return it.pos - 1 }

// StorageIndex returns the storage row the current output position maps to.
func (it *Iterator) StorageIndex() uint32 { return it.r.Get(it.pos - 1) }

// indicesOrRange returns the tightest representation for an already-sorted,
// duplicate-free slice of storage indices: a Range if contiguous, Indices
// otherwise.
func indicesOrRange(idx []uint32) RowMap {
	if len(idx) == 0 {
		return RowMap{}
	}
	if sort.SliceIsSorted(idx, func(i, j int) bool { return idx[i] < idx[j] }) {
		contig := true
		for i := 1; i < len(idx); i++ {
			if idx[i] != idx[i-1]+1 {
				contig = false
				break
			}
		}
		if contig {
			return NewRange(idx[0], idx[len(idx)-1]+1)
		}
	}
	return NewIndices(idx)
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
