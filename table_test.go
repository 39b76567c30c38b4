// Copyright 2024 The Swiss Authors
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

package swiss

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flarehash/swiss/internal/ctrlgroup"
)

func newTestTable(t *testing.T) *table[int, int] {
	cfg := defaultConfig[int, int]()
	return newTable(identity[int], cfg)
}

func TestTableInitialCapacity(t *testing.T) {
	tb := newTestTable(t)
	require.EqualValues(t, 0, tb.capacity)
	tb.reserve(1)
	require.EqualValues(t, uintptr(ctrlgroup.DefaultWidth)-1, tb.capacity)
}

func TestTableRehashInPlaceReclaimsTombstones(t *testing.T) {
	tb := newTestTable(t)
	tb.reserve(200)
	for i := 0; i < 150; i++ {
		tb.insert(i, func() int { return i })
	}
	for i := 0; i < 100; i++ {
		tb.eraseKey(i)
	}
	capacityBefore := tb.capacity
	tb.rehashInPlace()
	require.Equal(t, capacityBefore, tb.capacity)

	for i := 100; i < 150; i++ {
		_, ok := tb.find(i)
		require.True(t, ok)
	}
	for i := 0; i < 100; i++ {
		_, ok := tb.find(i)
		require.False(t, ok)
	}
}

func TestTableResizeGrows(t *testing.T) {
	tb := newTestTable(t)
	for i := 0; i < 500; i++ {
		tb.insert(i, func() int { return i })
	}
	require.EqualValues(t, 500, tb.size)
	for i := 0; i < 500; i++ {
		_, ok := tb.find(i)
		require.True(t, ok)
	}
}

func TestTableWasNeverFullOnSparseTable(t *testing.T) {
	tb := newTestTable(t)
	tb.reserve(64)
	i, _ := tb.insert(1, func() int { return 1 })
	_ = i
	idx, ok := tb.find(1)
	require.True(t, ok)
	require.True(t, tb.wasNeverFull(idx))
}

func TestTableClearResetsState(t *testing.T) {
	tb := newTestTable(t)
	for i := 0; i < 50; i++ {
		tb.insert(i, func() int { return i })
	}
	tb.clear()
	require.EqualValues(t, 0, tb.capacity)
	require.EqualValues(t, 0, tb.size)
	require.EqualValues(t, 0, tb.growthLeft)
	_, ok := tb.find(0)
	require.False(t, ok)
}
