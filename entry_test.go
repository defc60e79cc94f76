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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryOrInsert(t *testing.T) {
	m := New[string, int](StringHasher())

	e := m.Entry("a")
	require.False(t, e.Occupied())
	require.EqualValues(t, "a", e.Key())
	p := e.OrInsert(1)
	require.EqualValues(t, 1, *p)
	require.EqualValues(t, 1, m.Len())

	// Occupied: the argument is discarded and the count is unchanged.
	e = m.Entry("a")
	require.True(t, e.Occupied())
	p = e.OrInsert(2)
	require.EqualValues(t, 1, *p)
	require.EqualValues(t, 1, m.Len())

	// The pointer aliases the map's storage.
	*p = 3
	v, ok := m.Get("a")
	require.True(t, ok)
	require.EqualValues(t, 3, v)
}

func TestEntryOrInsertWith(t *testing.T) {
	m := New[string, int](StringHasher())

	calls := 0
	produce := func() int {
		calls++
		return 7
	}

	// Vacant: the producer runs exactly once.
	p := m.Entry("k").OrInsertWith(produce)
	require.EqualValues(t, 1, calls)
	require.EqualValues(t, 7, *p)
	v, ok := m.Get("k")
	require.True(t, ok)
	require.EqualValues(t, 7, v)

	// Occupied: the producer does not run at all.
	p = m.Entry("k").OrInsertWith(produce)
	require.EqualValues(t, 1, calls)
	require.EqualValues(t, 7, *p)
	require.EqualValues(t, 1, m.Len())
}

func TestEntryOrDefault(t *testing.T) {
	m := New[string, []int](StringHasher())

	p := m.Entry("xs").OrDefault()
	require.Nil(t, *p)
	*p = append(*p, 1)

	p = m.Entry("xs").OrDefault()
	require.Equal(t, []int{1}, *p)
	require.EqualValues(t, 1, m.Len())
}

func TestEntryCounting(t *testing.T) {
	// The classic entry use case: a frequency count with one lookup per
	// word, re-acquiring the entry for every update.
	words := []string{"the", "quick", "the", "fox", "the", "quick"}
	m := New[string, int](StringHasher())
	for _, w := range words {
		*(m.Entry(w).OrDefault())++
	}
	require.Equal(t, map[string]int{"the": 3, "quick": 2, "fox": 1}, toBuiltinMap(m))
}

func TestEntryGrowth(t *testing.T) {
	// Entry reserves room before locating the key, so the returned indices
	// stay valid through OrInsert.
	m := New[int, int](IntHasher[int]())
	for i := 0; i < 13; i++ {
		m.Put(i, i)
	}
	require.EqualValues(t, 16, len(m.buckets))

	// One past the load factor: acquiring the entry doubles the buckets.
	e := m.Entry(13)
	require.EqualValues(t, 32, len(m.buckets))
	require.False(t, e.Occupied())
	p := e.OrInsert(^13)
	require.EqualValues(t, ^13, *p)
	require.EqualValues(t, 14, m.Len())

	for i := 0; i < 13; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.EqualValues(t, i, v)
	}

	// An entry for an existing key below the threshold does not grow.
	_ = m.Entry(0)
	require.EqualValues(t, 32, len(m.buckets))
}

func TestEntryOnEmpty(t *testing.T) {
	// The first entry on a fresh map allocates the initial bucket.
	m := New[string, int](StringHasher())
	require.EqualValues(t, 0, len(m.buckets))
	p := m.Entry("a").OrInsertWith(func() int { return 42 })
	require.EqualValues(t, 1, len(m.buckets))
	require.EqualValues(t, 42, *p)
	require.EqualValues(t, 1, m.Len())
}
