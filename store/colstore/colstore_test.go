package colstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenseAppendGet(t *testing.T) {
	d := NewDense[int64]()
	for i := int64(0); i < 50; i++ {
		d.Append(i * 2)
	}
	require.Equal(t, uint32(50), d.Size())
	for i := uint32(0); i < 50; i++ {
		assert.Equal(t, int64(i)*2, d.Get(i))
	}
	d.Set(10, 999)
	assert.Equal(t, int64(999), d.Get(10))
}

func TestNullableSparseGetSet(t *testing.T) {
	n := NewNullable[int64](false)
	for i := 0; i < 30; i++ {
		if i%3 == 0 {
			n.Append(0, false)
		} else {
			n.Append(int64(i), true)
		}
	}
	for i := uint32(0); i < 30; i++ {
		v, ok := n.Get(i)
		if i%3 == 0 {
			assert.False(t, ok, "index %d", i)
		} else {
			require.True(t, ok, "index %d", i)
			assert.Equal(t, int64(i), v)
		}
	}
}

func TestNullableSparseSetNullToNonNull(t *testing.T) {
	n := NewNullable[int64](false)
	n.Append(1, true)
	n.Append(0, false)
	n.Append(3, true)

	n.Set(1, 42)

	v, ok := n.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	v, ok = n.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	v, ok = n.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestNullableDenseSetIsInPlace(t *testing.T) {
	n := NewNullable[int64](true)
	n.Append(1, true)
	n.Append(0, false)
	n.Append(3, true)

	n.Set(1, 77)
	v, ok := n.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(77), v)
	assert.True(t, n.IsDense())
}
