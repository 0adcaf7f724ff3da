// Package colstore implements the two ColumnStorage variants backing a
// typed column: Dense, a plain value vector for non-null columns, and
// Nullable, a value vector plus a presence BitVector for nullable columns
// (itself either "sparse", where the value vector holds only present
// values, or "dense", where it is padded to stay parallel with the presence
// mask so that Set is O(1)).
package colstore

import "github.com/dolthub/tracecolumn/store/bitvec"

// Dense is the storage for a non-null column: a plain vector of T.
type Dense[T any] struct {
	values []T
}

// NewDense returns an empty Dense storage.
func NewDense[T any]() *Dense[T] { return &Dense[T]{} }

func (d *Dense[T]) Get(idx uint32) T     { return d.values[idx] }
func (d *Dense[T]) Append(v T)           { d.values = append(d.values, v) }
func (d *Dense[T]) Set(idx uint32, v T)  { d.values[idx] = v }
func (d *Dense[T]) Size() uint32         { return uint32(len(d.values)) }
func (d *Dense[T]) ShrinkToFit() {
	shrunk := make([]T, len(d.values))
	copy(shrunk, d.values)
	d.values = shrunk
}

// Nullable is the storage for a nullable column: a presence BitVector plus a
// value vector that is either sparse (holds only present values, indexed via
// rank) or dense (padded 1:1 with presence, giving O(1) Set at the cost of
// wasted space for mostly-null columns).
type Nullable[T any] struct {
	values   []T
	presence bitvec.BitVector
	dense    bool
}

// NewNullable returns an empty Nullable storage using the given layout.
func NewNullable[T any](dense bool) *Nullable[T] {
	return &Nullable[T]{dense: dense}
}

// IsDense reports whether this storage uses the dense (padded) layout.
func (n *Nullable[T]) IsDense() bool { return n.dense }

// Size returns the number of logical rows (equal to the presence vector's length).
func (n *Nullable[T]) Size() uint32 { return n.presence.Size() }

// Get returns the value at idx and whether it is present.
func (n *Nullable[T]) Get(idx uint32) (T, bool) {
	if !n.presence.IsSet(idx) {
		var zero T
		return zero, false
	}
	if n.dense {
		return n.values[idx], true
	}
	return n.values[n.presence.CountSetBitsUpTo(idx)], true
}

// Append adds a new logical row, present iff ok.
func (n *Nullable[T]) Append(v T, ok bool) {
	n.presence.Append(ok)
	if n.dense {
		n.values = append(n.values, v)
		return
	}
	if ok {
		n.values = append(n.values, v)
	}
}

// Set overwrites the value at idx, marking it present. In the dense layout
// this is an O(1) write; in the sparse layout a null->non-null transition
// must splice a new slot into the compact value vector.
func (n *Nullable[T]) Set(idx uint32, v T) {
	wasPresent := n.presence.IsSet(idx)
	if n.dense {
		n.presence.Set(idx, true)
		n.values[idx] = v
		return
	}
	rank := n.presence.CountSetBitsUpTo(idx)
	if wasPresent {
		n.values[rank] = v
		return
	}
	n.presence.Set(idx, true)
	n.values = append(n.values, v)
	copy(n.values[rank+1:], n.values[rank:len(n.values)-1])
	n.values[rank] = v
}

// ShrinkToFit compacts the backing slices to their current length.
func (n *Nullable[T]) ShrinkToFit() {
	shrunk := make([]T, len(n.values))
	copy(shrunk, n.values)
	n.values = shrunk
}
