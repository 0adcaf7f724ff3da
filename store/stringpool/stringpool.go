// Package stringpool interns strings and hands back small 32-bit ids, the
// representation every String-typed column stores instead of the string
// bytes themselves.
package stringpool

import (
	"github.com/cespare/xxhash/v2"
)

// Id is an opaque interned-string id. Null is reserved to mean "no string"
// and is never returned by Intern for a real string.
type Id uint32

// Null is the reserved id meaning "no value" -- distinct from the empty
// string, which interns to its own id like any other string.
const Null Id = 0xFFFFFFFF

// Pool interns strings, returning a stable Id for each distinct string. Ids
// are stable for the lifetime of the Pool and are only ever handed out by
// Intern, never reused or invalidated.
//
// Lookup is backed by a bucket index keyed by the xxhash of the string
// rather than Go's built-in map hashing; this mirrors how the engine's
// StringPool is expected to grow to tens of millions of entries during trace
// import, where avoiding a second full string comparison on every probe (by
// bucketing same-hash candidates together) pays for itself.
type Pool struct {
	strings []string
	buckets map[uint64][]Id
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{buckets: make(map[uint64][]Id)}
}

// Intern returns the Id for s, interning it if this is the first time it has
// been seen.
func (p *Pool) Intern(s string) Id {
	h := xxhash.Sum64String(s)
	for _, id := range p.buckets[h] {
		if p.strings[id] == s {
			return id
		}
	}
	id := Id(len(p.strings))
	p.strings = append(p.strings, s)
	p.buckets[h] = append(p.buckets[h], id)
	return id
}

// Get returns the string for id. It panics if id is Null or out of range,
// since both are programming errors: callers must check for Null before
// calling Get.
func (p *Pool) Get(id Id) string {
	if id == Null {
		panic("stringpool: Get called with Null id")
	}
	return p.strings[id]
}

// TryGet returns the string for id, or ("", false) if id is Null.
func (p *Pool) TryGet(id Id) (string, bool) {
	if id == Null {
		return "", false
	}
	return p.strings[id], true
}

// Size returns the number of distinct interned strings.
func (p *Pool) Size() uint32 { return uint32(len(p.strings)) }
