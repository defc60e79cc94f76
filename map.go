// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// package chainmap is a Go implementation of a hash table that resolves
// collisions by separate chaining. If you're not familiar with chaining see
// https://en.wikipedia.org/wiki/Hash_table#Separate_chaining.
//
// # Separate chaining
//
// A chainmap.Map is a slice of buckets where each bucket is a short slice of
// key/value pairs. A key is placed in the bucket selected by hash(key) mod
// the bucket count, and keys whose digests collide simply share a bucket.
// Lookup hashes the key once and linearly scans the one selected bucket,
// comparing keys by value equality (never by digest, since distinct keys may
// share a digest).
//
// The bucket count is kept a power of two so that the mod reduces to a mask.
// A freshly constructed Map has no buckets at all and allocates nothing; the
// first insert allocates a single bucket, and every time the number of items
// exceeds 3/4 of the bucket count the bucket array doubles and all pairs are
// re-placed under the new count. Doubling keeps the average chain below one
// item per bucket, bounding lookup cost near O(1), while amortizing the O(n)
// rehash across geometric growth so that insert remains amortized O(1).
//
// Removal swaps the bucket's last pair into the vacated position and shrinks
// the bucket by one. This makes removal O(1) at the cost of reordering the
// affected bucket, so no caller may rely on bucket-internal order surviving
// a removal. The bucket array never shrinks.
//
// # Hashing
//
// A Map does not constrain its key type. Hashing and equality are a
// capability supplied at construction as a Hasher[K]: a pure function from
// key and seed to a 64-bit digest, plus value equality. StringHasher,
// BytesHasher and IntHasher provide xxhash-backed capabilities for common
// key types, and HashEqual adapts a bare hash function for any comparable
// type. Each Map mixes a per-map seed into every digest; WithSeed pins it
// when deterministic placement is needed.
//
// Lookups by a view of the key type (for example querying a string-keyed map
// with []byte) go through the package-level GetBy, ContainsBy and DeleteBy
// functions with a View[K, Q] capability that must hash and compare
// consistently with the map's Hasher. BytesView and StringView cover the
// string/[]byte dual in both directions.
//
// # Iteration and the entry API
//
// All calls a yield function for every pair. Iter returns a cursor-style
// Iterator that walks bucket by bucket and is re-acquired to restart. Drain
// returns an iterator that removes pairs as it yields them, leaving the map
// empty once exhausted. The map must not be mutated while an All call or an
// Iterator is in progress (Drain is itself the mutator in its case).
//
// Entry performs the hash-and-scan for a key once and returns an
// occupied/vacant handle; OrInsert, OrInsertWith and OrDefault then resolve
// insert-or-update flows without hashing or scanning a second time.
package chainmap

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	debug = false

	// A resize is triggered when the number of stored items exceeds
	// loadFactorNum/loadFactorDen of the bucket count. The check runs before
	// every insertion attempt, measured on the pre-insertion count.
	loadFactorNum = 3
	loadFactorDen = 4
)

// Pair holds a key and value.
type Pair[K any, V any] struct {
	Key   K
	Value V
}

// Map is an unordered map from keys to values. Collisions are handled by
// chaining: each bucket holds a small slice of pairs and lookup scans the
// single bucket selected by the key's digest. Keys are hashed and compared
// by the Hasher supplied to New, so any key type can be used, including
// types that are not comparable.
//
// The zero value of a Map is not usable; construct one with New or
// FromPairs. A Map is NOT goroutine-safe: mutating operations require
// exclusive access, while read-only operations may only run concurrently
// with other reads.
type Map[K any, V any] struct {
	// hash and equal are the key capability supplied at construction. Both
	// are non-nil for any constructed Map.
	hash  func(key K, seed uint64) uint64
	equal func(a, b K) bool
	// seed is mixed into every digest so that bucket placement differs
	// across maps.
	seed uint64
	// buckets is the backing array. Its length is 0 until the first insert
	// and a power of two afterwards, which lets bucketIndex reduce the mod
	// to a mask.
	buckets [][]Pair[K, V]
	// used is the number of pairs across all buckets.
	used int
}

// New constructs an empty Map that hashes and compares keys with hasher. The
// returned Map has no buckets and performs no allocation; the first insert
// allocates a single bucket. Use WithCapacity to pre-size the bucket array
// and WithSeed to pin the digest seed. New panics if hasher.Hash or
// hasher.Equal is nil.
func New[K any, V any](hasher Hasher[K], options ...option[K, V]) *Map[K, V] {
	if hasher.Hash == nil || hasher.Equal == nil {
		panic("chainmap: hasher must provide both Hash and Equal")
	}
	m := &Map[K, V]{
		hash:  hasher.Hash,
		equal: hasher.Equal,
		seed:  rand.Uint64(),
	}
	for _, op := range options {
		op.apply(m)
	}
	m.checkInvariants()
	return m
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with an equal key already exists. It returns the previous value and
// true when an entry was overwritten; overwriting does not change Len.
func (m *Map[K, V]) Put(key K, value V) (prev V, ok bool) {
	// Growth must happen before the bucket index is computed: growing
	// changes which bucket a key maps to.
	m.maybeGrow()
	i := m.bucketIndex(key)
	b := m.buckets[i]
	for j := range b {
		if m.equal(key, b[j].Key) {
			if debug {
				fmt.Printf("put(updating): bucket=%d offset=%d key=%v\n", i, j, key)
			}
			prev = b[j].Value
			b[j].Value = value
			m.checkInvariants()
			return prev, true
		}
	}
	if debug {
		fmt.Printf("put(inserting): bucket=%d chain=%d key=%v\n", i, len(b), key)
	}
	m.buckets[i] = append(b, Pair[K, V]{Key: key, Value: value})
	m.used++
	m.checkInvariants()
	return prev, false
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present. Get never grows the map; on a map
// that has no buckets yet it reports not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if len(m.buckets) == 0 {
		return value, false
	}
	b := m.buckets[m.bucketIndex(key)]
	for j := range b {
		if m.equal(key, b[j].Key) {
			return b[j].Value, true
		}
	}
	return value, false
}

// Contains reports whether the map contains the specified key.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete deletes the entry corresponding to the specified key from the map,
// returning the removed value and true if the key was present. Deleting a
// non-existent key returns ok=false and does not mutate the map.
//
// Removal is performed by moving the bucket's last pair into the vacated
// position, so the order of pairs within the affected bucket changes.
func (m *Map[K, V]) Delete(key K) (value V, ok bool) {
	if len(m.buckets) == 0 {
		return value, false
	}
	i := m.bucketIndex(key)
	b := m.buckets[i]
	for j := range b {
		if m.equal(key, b[j].Key) {
			if debug {
				fmt.Printf("delete(found): bucket=%d offset=%d key=%v\n", i, j, key)
			}
			value = b[j].Value
			n := len(b) - 1
			b[j] = b[n]
			// Zero the vacated slot so the GC can reclaim what the pair
			// referenced.
			b[n] = Pair[K, V]{}
			m.buckets[i] = b[:n]
			m.used--
			m.checkInvariants()
			return value, true
		}
	}
	if debug {
		fmt.Printf("delete(not-found): bucket=%d key=%v\n", i, key)
	}
	return value, false
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// IsEmpty reports whether the map contains no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.used == 0
}

// Clear removes all entries from the map, retaining the allocated bucket
// array.
func (m *Map[K, V]) Clear() {
	for i := range m.buckets {
		clear(m.buckets[i])
		m.buckets[i] = m.buckets[i][:0]
	}
	m.used = 0
	m.checkInvariants()
}

// All calls yield sequentially for each key and value present in the map. If
// yield returns false, All stops the iteration. The signature conforms to
// the range-over-function convention. The map must not be mutated until All
// returns, including from within yield; mutate after iterating, or use Iter
// and re-acquire.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	for i := range m.buckets {
		b := m.buckets[i]
		for j := range b {
			if !yield(b[j].Key, b[j].Value) {
				return
			}
		}
	}
}

// bucketIndex returns the index of the bucket that key resides in. The
// bucket count is a power of two, so the mod reduces to a mask. The caller
// must ensure the map has at least one bucket.
func (m *Map[K, V]) bucketIndex(key K) int {
	return int(m.hash(key, m.seed) & uint64(len(m.buckets)-1))
}

// maybeGrow resizes the map if it has no buckets or if its load factor
// exceeds loadFactorNum/loadFactorDen. It must be called before every
// insertion attempt, ahead of any bucket index computation.
func (m *Map[K, V]) maybeGrow() {
	if n := len(m.buckets); n == 0 || m.used > n*loadFactorNum/loadFactorDen {
		m.resize()
	}
}

// resize doubles the bucket array, growing from none to a single bucket on
// the first call. Resize is O(n) in the number of stored pairs; amortized
// across the doubling sequence the cost per insert is O(1).
func (m *Map[K, V]) resize() {
	newSize := 2 * len(m.buckets)
	if newSize == 0 {
		newSize = 1
	}
	m.rehash(newSize)
}

// rehash replaces the bucket array with one of newSize buckets (a power of
// two), re-placing every pair by its digest under the new count. The new
// array is swapped in only once fully built, so no caller ever observes a
// partially rehashed map.
func (m *Map[K, V]) rehash(newSize int) {
	buckets := make([][]Pair[K, V], newSize)
	mask := uint64(newSize - 1)
	for i := range m.buckets {
		for _, p := range m.buckets[i] {
			j := m.hash(p.Key, m.seed) & mask
			buckets[j] = append(buckets[j], p)
		}
	}
	if debug {
		fmt.Printf("rehash: buckets=%d->%d used=%d\n", len(m.buckets), newSize, m.used)
	}
	m.buckets = buckets
	m.checkInvariants()
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if n := len(m.buckets); n != 0 && n&(n-1) != 0 {
			panic(fmt.Sprintf("invariant failed: bucket count %d is not a power of two\n%s",
				n, m.debugString()))
		}
		var used int
		for i := range m.buckets {
			b := m.buckets[i]
			for j := range b {
				// Every pair must reside in the bucket its digest selects,
				// and a key must not appear twice. Keys comparing equal hash
				// to the same bucket, so scanning the remainder of this
				// bucket is sufficient to rule out duplicates.
				if k := m.bucketIndex(b[j].Key); k != i {
					panic(fmt.Sprintf("invariant failed: key %v stored in bucket %d, but hashes to bucket %d\n%s",
						b[j].Key, i, k, m.debugString()))
				}
				for _, p := range b[j+1:] {
					if m.equal(b[j].Key, p.Key) {
						panic(fmt.Sprintf("invariant failed: duplicate key %v in bucket %d\n%s",
							b[j].Key, i, m.debugString()))
					}
				}
			}
			used += len(b)
		}
		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d pairs, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "buckets=%d  used=%d\n", len(m.buckets), m.used)
	for i := range m.buckets {
		if len(m.buckets[i]) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for _, p := range m.buckets[i] {
			fmt.Fprintf(&buf, "  %v=%v", p.Key, p.Value)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
