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

import "math/bits"

// option provide an interface to do work on Map while it is being created.
type option[K any, V any] interface {
	apply(m *Map[K, V])
}

type seedOption[K any, V any] struct {
	seed uint64
}

func (op seedOption[K, V]) apply(m *Map[K, V]) {
	m.seed = op.seed
}

// WithSeed is an option to specify the seed mixed into every digest computed
// by a Map[K,V]. Two maps constructed with the same hasher and seed place
// equal keys in the same buckets. Without this option each map draws a
// process-random seed.
func WithSeed[K any, V any](seed uint64) option[K, V] {
	return seedOption[K, V]{seed}
}

type capacityOption[K any, V any] struct {
	capacity int
}

func (op capacityOption[K, V]) apply(m *Map[K, V]) {
	if op.capacity <= 0 {
		return
	}
	m.buckets = make([][]Pair[K, V], bucketsForCapacity(op.capacity))
}

// WithCapacity is an option to pre-size the bucket array of a Map[K,V] so
// that capacity items can be inserted without triggering a resize. The
// bucket count is rounded up to a power of two, so later growth continues
// the usual doubling sequence.
func WithCapacity[K any, V any](capacity int) option[K, V] {
	return capacityOption[K, V]{capacity}
}

// bucketsForCapacity returns the smallest power of two bucket count that
// admits capacity insertions without a resize. Inserting the i-th item grows
// the map when the i-1 items already stored exceed the load factor, so the
// count must satisfy capacity-1 <= n*loadFactorNum/loadFactorDen.
func bucketsForCapacity(capacity int) int {
	need := ((capacity-1)*loadFactorDen + loadFactorNum - 1) / loadFactorNum
	if need <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(need-1))
}
