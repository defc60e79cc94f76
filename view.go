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

// View describes how a lookup type Q hashes and compares against a map's key
// type K, allowing lookups without converting the query to K first (for
// example querying a string-keyed map with a []byte still held in an I/O
// buffer).
//
// A View must be consistent with the map's Hasher: whenever Equal(q, k)
// holds, Hash(q, seed) must equal the digest the map's Hasher produces for k
// under the same seed. The views in this package satisfy that by hashing the
// same byte content through the same xxhash digest.
//
// Methods cannot introduce type parameters, so view lookups are the
// package-level functions GetBy, ContainsBy and DeleteBy.
type View[K any, Q any] struct {
	Hash  func(q Q, seed uint64) uint64
	Equal func(q Q, k K) bool
}

// BytesView returns a View for querying a string-keyed map with a byte
// slice.
func BytesView() View[string, []byte] {
	return View[string, []byte]{
		Hash:  hashBytes,
		Equal: func(q []byte, k string) bool { return string(q) == k },
	}
}

// StringView returns a View for querying a []byte-keyed map with a string.
func StringView() View[[]byte, string] {
	return View[[]byte, string]{
		Hash:  hashString,
		Equal: func(q string, k []byte) bool { return q == string(k) },
	}
}

// GetBy retrieves the value for the key that view reports equal to q,
// returning ok=false if no such key is present. Like Get it never grows the
// map and reports not present on a map with no buckets.
func GetBy[K, V, Q any](m *Map[K, V], view View[K, Q], q Q) (value V, ok bool) {
	if len(m.buckets) == 0 {
		return value, false
	}
	b := m.buckets[view.Hash(q, m.seed)&uint64(len(m.buckets)-1)]
	for j := range b {
		if view.Equal(q, b[j].Key) {
			return b[j].Value, true
		}
	}
	return value, false
}

// ContainsBy reports whether the map contains a key that view reports equal
// to q.
func ContainsBy[K, V, Q any](m *Map[K, V], view View[K, Q], q Q) bool {
	_, ok := GetBy(m, view, q)
	return ok
}

// DeleteBy deletes the entry whose key view reports equal to q, returning
// the removed value and true if such a key was present. Like Delete it swaps
// the bucket's last pair into the vacated position, so bucket-internal order
// is not preserved.
func DeleteBy[K, V, Q any](m *Map[K, V], view View[K, Q], q Q) (value V, ok bool) {
	if len(m.buckets) == 0 {
		return value, false
	}
	i := int(view.Hash(q, m.seed) & uint64(len(m.buckets)-1))
	b := m.buckets[i]
	for j := range b {
		if view.Equal(q, b[j].Key) {
			value = b[j].Value
			n := len(b) - 1
			b[j] = b[n]
			b[n] = Pair[K, V]{}
			m.buckets[i] = b[:n]
			m.used--
			m.checkInvariants()
			return value, true
		}
	}
	return value, false
}
