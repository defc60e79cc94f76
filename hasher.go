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

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// Hasher is the key capability a Map is constructed with: a hash function
// producing a 64-bit digest for a key and an equality function comparing two
// keys by value. Hash must be pure (the same key and seed always produce the
// same digest) and must be consistent with Equal: keys that compare equal
// must produce equal digests for every seed. Digests need not be stable
// across process runs.
type Hasher[K any] struct {
	Hash  func(key K, seed uint64) uint64
	Equal func(a, b K) bool
}

// StringHasher returns a Hasher for string keys using a seeded xxhash digest
// of the string's bytes. The digest of a string equals the digest of a byte
// slice with the same contents, which is what allows BytesView lookups
// against a string-keyed map.
func StringHasher() Hasher[string] {
	return Hasher[string]{
		Hash:  hashString,
		Equal: func(a, b string) bool { return a == b },
	}
}

// BytesHasher returns a Hasher for []byte keys using a seeded xxhash digest
// of the slice contents. A key must not be mutated after it has been
// inserted into a Map.
func BytesHasher() Hasher[[]byte] {
	return Hasher[[]byte]{
		Hash:  hashBytes,
		Equal: bytes.Equal,
	}
}

// IntHasher returns a Hasher for any integer key type using a seeded xxhash
// digest of the key's 8-byte little-endian encoding. Negative values hash by
// their two's complement bit pattern.
func IntHasher[K constraints.Integer]() Hasher[K] {
	return Hasher[K]{
		Hash: func(key K, seed uint64) uint64 {
			return hashUint64(uint64(key), seed)
		},
		Equal: func(a, b K) bool { return a == b },
	}
}

// HashEqual pairs the supplied hash function with == equality on a
// comparable key type. It is the easiest way to adapt an existing hash
// function, and to construct degenerate hashers in tests.
func HashEqual[K comparable](hash func(key K, seed uint64) uint64) Hasher[K] {
	return Hasher[K]{
		Hash:  hash,
		Equal: func(a, b K) bool { return a == b },
	}
}

func hashString(s string, seed uint64) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.WriteString(s)
	return d.Sum64()
}

func hashBytes(p []byte, seed uint64) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.Write(p)
	return d.Sum64()
}

func hashUint64(x, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.Write(buf[:])
	return d.Sum64()
}
