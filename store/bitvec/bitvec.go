// Package bitvec implements a packed boolean vector with ordinal<->index
// iteration, prefix popcount (rank) and select, used as the backing
// representation for RowMap's BitVector variant and for nullable column
// presence masks.
//
// The word storage is borrowed from github.com/kelindar/bitmap (a plain
// []uint64 of fixed-size words with Set/Contains/Count helpers); BitVector
// adds the explicit logical length and the rank/select/builder operations
// the engine needs on top of it.
package bitvec

import (
	"math/bits"

	"github.com/kelindar/bitmap"
)

const wordBits = 64

// BitVector is a packed vector of size() bits.
type BitVector struct {
	words bitmap.Bitmap
	size  uint32
}

// New returns an empty BitVector.
func New() BitVector {
	return BitVector{}
}

// WithSize returns a BitVector of n bits, all initialized to value.
func WithSize(n uint32, value bool) BitVector {
	bv := BitVector{size: n}
	if n == 0 {
		return bv
	}
	bv.words.Grow(n - 1)
	if value {
		for i := uint32(0); i < n; i++ {
			bv.words.Set(i)
		}
	}
	return bv
}

// Size returns the number of bits in the vector.
func (bv *BitVector) Size() uint32 { return bv.size }

// Append pushes a new bit onto the end of the vector.
func (bv *BitVector) Append(value bool) {
	idx := bv.size
	bv.size++
	bv.words.Grow(idx)
	if value {
		bv.words.Set(idx)
	}
}

// Set assigns the bit at i.
func (bv *BitVector) Set(i uint32, value bool) {
	if value {
		bv.words.Set(i)
	} else {
		bv.words.Remove(i)
	}
}

// IsSet returns the bit at i.
func (bv *BitVector) IsSet(i uint32) bool {
	return bv.words.Contains(i)
}

// CountSetBits returns the total number of set bits in the vector.
func (bv *BitVector) CountSetBits() uint32 {
	return bv.CountSetBitsUpTo(bv.size)
}

// CountSetBitsUpTo returns the number of set bits in [0, upTo) -- i.e. the
// rank of upTo. This is the operation nullable ColumnStorage uses to map a
// row index into its compact (sparse) value vector.
func (bv *BitVector) CountSetBitsUpTo(upTo uint32) uint32 {
	if upTo > bv.size {
		upTo = bv.size
	}
	if upTo == 0 {
		return 0
	}
	full := upTo / wordBits
	var count uint32
	for w := uint32(0); w < full; w++ {
		count += uint32(bits.OnesCount64(bv.wordAt(w)))
	}
	rem := upTo % wordBits
	if rem != 0 {
		mask := (uint64(1) << rem) - 1
		count += uint32(bits.OnesCount64(bv.wordAt(full) & mask))
	}
	return count
}

// IndexOfNthSet returns the index of the ordinal-n (0-based) set bit, i.e.
// select(n). Callers are expected to only call this with n < CountSetBits().
func (bv *BitVector) IndexOfNthSet(n uint32) uint32 {
	remaining := n
	nWords := (bv.size + wordBits - 1) / wordBits
	for w := uint32(0); w < nWords; w++ {
		word := bv.wordAt(w)
		c := uint32(bits.OnesCount64(word))
		if remaining < c {
			for word != 0 {
				bit := uint32(bits.TrailingZeros64(word))
				if remaining == 0 {
					return w*wordBits + bit
				}
				remaining--
				word &= word - 1
			}
		}
		remaining -= c
	}
	return bv.size
}

// SetBitEntry is one (ordinal, index) pair yielded by IterateSetBits.
type SetBitEntry struct {
	Ordinal uint32
	Index   uint32
}

// IterateSetBits returns the ascending-index sequence of set bits, paired
// with their rank (ordinal).
func (bv *BitVector) IterateSetBits() []SetBitEntry {
	out := make([]SetBitEntry, 0, bv.CountSetBits())
	var ordinal uint32
	nWords := (bv.size + wordBits - 1) / wordBits
	for w := uint32(0); w < nWords; w++ {
		word := bv.wordAt(w)
		for word != 0 {
			bit := uint32(bits.TrailingZeros64(word))
			idx := w*wordBits + bit
			if idx >= bv.size {
				break
			}
			out = append(out, SetBitEntry{Ordinal: ordinal, Index: idx})
			ordinal++
			word &= word - 1
		}
	}
	return out
}

// Not returns the bitwise complement, preserving size.
func (bv *BitVector) Not() BitVector {
	out := WithSize(bv.size, false)
	for i := uint32(0); i < bv.size; i++ {
		if !bv.IsSet(i) {
			out.Set(i, true)
		}
	}
	return out
}

// Copy returns an independent copy of the vector.
func (bv *BitVector) Copy() BitVector {
	out := BitVector{size: bv.size}
	if bv.size == 0 {
		return out
	}
	out.words = make(bitmap.Bitmap, len(bv.words))
	copy(out.words, bv.words)
	return out
}

// Selector is the minimal interface SelectRows needs from a RowMap: the
// ability to produce the storage index for output position i.
type Selector interface {
	Size() uint32
	Get(i uint32) uint32
}

// SelectRows returns a new BitVector whose bit at position k equals
// bv.IsSet(sel.Get(k)) -- i.e. bv composed through sel, analogous to
// RowMap.SelectRows but specialized to bit data (used when a nullable
// column's presence mask needs to be carried through a filter/sort/join).
func (bv *BitVector) SelectRows(sel Selector) BitVector {
	out := WithSize(sel.Size(), false)
	for k := uint32(0); k < sel.Size(); k++ {
		if bv.IsSet(sel.Get(k)) {
			out.Set(k, true)
		}
	}
	return out
}

func (bv *BitVector) wordAt(w uint32) uint64 {
	if int(w) >= len(bv.words) {
		return 0
	}
	return uint64(bv.words[w])
}
