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

// Entry is a short-lived view of the slot a key occupies, or would occupy,
// in a Map. It is obtained from Map.Entry and carries the already-computed
// bucket index and the offset of the matching pair within the bucket (or -1
// when the key is absent), so that the insert-or-update methods below never
// hash or scan a second time.
//
// An Entry is single-use. It is invalidated by any mutation of the map,
// including a mutation performed through the Entry itself: resolve it with
// exactly one of OrInsert, OrInsertWith or OrDefault, then discard it.
type Entry[K any, V any] struct {
	m   *Map[K, V]
	key K
	// bucket is the index the key maps to, computed after any growth.
	bucket int
	// offset is the position of the matching pair within the bucket, or -1
	// if the key is not present.
	offset int
}

// Entry locates the slot for key and returns a handle to it. Like Put, Entry
// first grows the map if the load factor calls for it, so the bucket index
// captured by a vacant handle remains the right insertion target. The
// returned Entry is valid until the map is next mutated.
func (m *Map[K, V]) Entry(key K) Entry[K, V] {
	m.maybeGrow()
	e := Entry[K, V]{m: m, key: key, bucket: m.bucketIndex(key), offset: -1}
	b := m.buckets[e.bucket]
	for j := range b {
		if m.equal(key, b[j].Key) {
			e.offset = j
			break
		}
	}
	if debug {
		fmt.Printf("entry(%v): bucket=%d offset=%d\n", key, e.bucket, e.offset)
	}
	return e
}

// Occupied reports whether the entry's key was present when the Entry was
// obtained.
func (e Entry[K, V]) Occupied() bool {
	return e.offset >= 0
}

// Key returns the key the Entry was obtained for.
func (e Entry[K, V]) Key() K {
	return e.key
}

// OrInsert returns a pointer to the entry's value, inserting value if the
// entry is vacant. The argument is evaluated by the caller whether or not it
// is used; when constructing the value is expensive, use OrInsertWith.
//
// The returned pointer aliases the map's storage and is invalidated by the
// next mutation of the map.
func (e Entry[K, V]) OrInsert(value V) *V {
	if e.offset >= 0 {
		return &e.m.buckets[e.bucket][e.offset].Value
	}
	return e.insert(value)
}

// OrInsertWith returns a pointer to the entry's value, invoking produce and
// inserting its result if the entry is vacant. produce is not invoked when
// the entry is occupied.
//
// The returned pointer aliases the map's storage and is invalidated by the
// next mutation of the map.
func (e Entry[K, V]) OrInsertWith(produce func() V) *V {
	if e.offset >= 0 {
		return &e.m.buckets[e.bucket][e.offset].Value
	}
	return e.insert(produce())
}

// OrDefault returns a pointer to the entry's value, inserting the zero value
// of V if the entry is vacant.
//
// The returned pointer aliases the map's storage and is invalidated by the
// next mutation of the map.
func (e Entry[K, V]) OrDefault() *V {
	if e.offset >= 0 {
		return &e.m.buckets[e.bucket][e.offset].Value
	}
	var zero V
	return e.insert(zero)
}

// insert appends a pair for the entry's key to its captured bucket. Growth
// already ran in Map.Entry, before the bucket index was computed, so the
// pair is appended directly.
func (e Entry[K, V]) insert(value V) *V {
	m := e.m
	b := append(m.buckets[e.bucket], Pair[K, V]{Key: e.key, Value: value})
	m.buckets[e.bucket] = b
	m.used++
	m.checkInvariants()
	return &b[len(b)-1].Value
}
