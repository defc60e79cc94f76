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

package chainmap

import "fmt"

// Iterator walks the pairs of a Map bucket by bucket:
//
//	for it := m.Iter(); it.Next(); {
//		fmt.Println(it.Key(), it.Value())
//	}
//
// An Iterator is finite and not restartable; once Next has returned false,
// obtain a fresh Iterator from Iter to iterate again. As long as the map is
// not mutated, an Iterator yields every pair exactly once, in an unspecified
// order. Mutating the map invalidates the Iterator.
type Iterator[K any, V any] struct {
	m *Map[K, V]
	// bucket and offset form the cursor: the position of the next pair to
	// yield.
	bucket int
	offset int
	key    K
	value  V
}

// Iter returns a new Iterator positioned before the first pair.
func (m *Map[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{m: m}
}

// Next advances the iterator to the next pair, returning false when the
// pairs are exhausted.
func (it *Iterator[K, V]) Next() bool {
	for it.bucket < len(it.m.buckets) {
		b := it.m.buckets[it.bucket]
		if it.offset < len(b) {
			it.key = b[it.offset].Key
			it.value = b[it.offset].Value
			it.offset++
			return true
		}
		it.bucket++
		it.offset = 0
	}
	return false
}

// Key returns the key of the pair the iterator is positioned at. It must
// only be called after a call to Next has returned true.
func (it *Iterator[K, V]) Key() K {
	return it.key
}

// Value returns the value of the pair the iterator is positioned at. It must
// only be called after a call to Next has returned true.
func (it *Iterator[K, V]) Value() V {
	return it.value
}

// DrainIterator removes and yields every pair of a Map. Each call to Next
// pops one pair from the map, so a fully consumed DrainIterator leaves the
// map valid but empty. Stopping early leaves the remaining pairs in the map.
//
// Pairs are yielded in an unspecified order (the last pair of each bucket is
// taken first). The DrainIterator is the map's mutator for its lifetime; no
// other operation may run against the map until it is exhausted or
// abandoned.
type DrainIterator[K any, V any] struct {
	m      *Map[K, V]
	bucket int
	key    K
	value  V
}

// Drain returns an iterator that transfers the map's pairs to the caller,
// removing each pair as it is yielded.
func (m *Map[K, V]) Drain() *DrainIterator[K, V] {
	return &DrainIterator[K, V]{m: m}
}

// Next pops the next pair out of the map, returning false once the map is
// empty.
func (it *DrainIterator[K, V]) Next() bool {
	m := it.m
	for it.bucket < len(m.buckets) {
		b := m.buckets[it.bucket]
		if n := len(b) - 1; n >= 0 {
			it.key = b[n].Key
			it.value = b[n].Value
			// Zero the vacated slot so the GC can reclaim what the pair
			// referenced.
			b[n] = Pair[K, V]{}
			m.buckets[it.bucket] = b[:n]
			m.used--
			if debug {
				fmt.Printf("drain: bucket=%d remaining=%d key=%v\n", it.bucket, m.used, it.key)
			}
			m.checkInvariants()
			return true
		}
		it.bucket++
	}
	return false
}

// Key returns the key of the pair most recently popped by Next. It must only
// be called after a call to Next has returned true.
func (it *DrainIterator[K, V]) Key() K {
	return it.key
}

// Value returns the value of the pair most recently popped by Next. It must
// only be called after a call to Next has returned true.
func (it *DrainIterator[K, V]) Value() V {
	return it.value
}

// FromPairs constructs a Map holding the given pairs, inserted in order: a
// later pair overwrites an earlier pair with an equal key. The bucket array
// is grown on demand exactly as it would be by successive Puts.
func FromPairs[K any, V any](hasher Hasher[K], pairs ...Pair[K, V]) *Map[K, V] {
	m := New[K, V](hasher)
	for i := range pairs {
		m.Put(pairs[i].Key, pairs[i].Value)
	}
	return m
}
