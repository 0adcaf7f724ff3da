package rowmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tracecolumn/store/bitvec"
)

func collect(r RowMap) []uint32 {
	var out []uint32
	it := r.Iterator()
	for it.Next() {
		out = append(out, it.StorageIndex())
	}
	return out
}

func TestRangeBasics(t *testing.T) {
	r := NewRange(5, 10)
	assert.Equal(t, uint32(5), r.Size())
	assert.Equal(t, []uint32{5, 6, 7, 8, 9}, collect(r))
}

func TestIntersectRangeStaysRange(t *testing.T) {
	r := NewRange(0, 100)
	r.Intersect(NewRange(40, 60))
	assert.Equal(t, []uint32{40, 41, 42, 43, 44, 45, 46, 47, 48, 49,
		50, 51, 52, 53, 54, 55, 56, 57, 58, 59}, collect(r))
}

func TestIntersectRangeWithBitVector(t *testing.T) {
	bv := bitvec.WithSize(10, false)
	bv.Set(2, true)
	bv.Set(7, true)

	r := NewRange(0, 10)
	r.Intersect(NewBitVector(bv))
	assert.Equal(t, []uint32{2, 7}, collect(r))
}

func TestIntersectExact(t *testing.T) {
	r := NewRange(0, 10)
	r.IntersectExact(4)
	assert.Equal(t, []uint32{4}, collect(r))

	r2 := NewRange(0, 10)
	r2.IntersectExact(50)
	assert.True(t, r2.Empty())
}

func TestSelectRowsComposition(t *testing.T) {
	// A.SelectRows(B)[k] == A.Get(B.Get(k))
	a := NewIndices([]uint32{10, 11, 12, 13, 14})
	b := NewIndices([]uint32{4, 0, 2})

	got := a.SelectRows(b)
	want := []uint32{14, 10, 12}
	assert.Equal(t, want, collect(got))
}

func TestSelectRowsRangeStaysRange(t *testing.T) {
	a := NewRange(100, 200)
	b := NewRange(10, 20)
	got := a.SelectRows(b)
	assert.Equal(t, []uint32{110, 111, 112, 113, 114, 115, 116, 117, 118, 119}, collect(got))
}

func TestRemoveIf(t *testing.T) {
	r := NewRange(0, 10)
	r.RemoveIf(func(storageIdx uint32) bool { return storageIdx%2 == 0 })
	assert.Equal(t, []uint32{1, 3, 5, 7, 9}, collect(r))
}

func TestIdempotence(t *testing.T) {
	r := NewIndices([]uint32{3, 1, 4, 1, 5})
	cp := r.Copy()
	r.Intersect(r.Copy())
	assert.Equal(t, collect(cp), collect(r))

	// SelectRows(identity) is a no-op.
	identity := NewRange(0, r.Size())
	got := r.SelectRows(identity)
	assert.Equal(t, collect(r), collect(got))
}

func TestIndexOf(t *testing.T) {
	r := NewRange(5, 10)
	pos, ok := r.IndexOf(7)
	require.True(t, ok)
	assert.Equal(t, uint32(2), pos)

	_, ok = r.IndexOf(100)
	assert.False(t, ok)
}
