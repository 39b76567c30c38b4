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
)

func TestHasherDeterministicWithinTable(t *testing.T) {
	h := newHasher[int]()
	k := 42
	require.Equal(t, h.hash(&k), h.hash(&k))
}

func TestHasherDistinguishesKeys(t *testing.T) {
	h := newHasher[string]()
	a, b := "foo", "bar"
	require.NotEqual(t, h.hash(&a), h.hash(&b))
}

type structKey struct {
	X, Y int32
}

func TestHasherStructFallback(t *testing.T) {
	h := newHasher[structKey]()
	a := structKey{1, 2}
	b := structKey{1, 3}
	require.Equal(t, h.hash(&a), h.hash(&a))
	require.NotEqual(t, h.hash(&a), h.hash(&b))
}

func TestMix64Avalanche(t *testing.T) {
	// Flipping a single input bit should flip roughly half the output bits.
	base := mix64(0)
	for bit := 0; bit < 64; bit++ {
		v := mix64(uint64(1) << bit)
		diff := base ^ v
		n := 0
		for diff != 0 {
			n++
			diff &= diff - 1
		}
		require.Greater(t, n, 16)
		require.Less(t, n, 48)
	}
}

func TestCustomHashFuncDefaultsToMixPolicy(t *testing.T) {
	cfg := defaultConfig[int, int]()
	cfg.customHash = adaptHashFunc[int](func(key *int, seed uintptr) uintptr { return uintptr(*key) })
	h := cfg.buildHasher()
	require.Equal(t, HashMix, h.policy)

	k := 7
	require.Equal(t, uintptr(mix64(7)), h.hash(&k))
}

func TestHashPolicyOverride(t *testing.T) {
	cfg := defaultConfig[int, int]()
	cfg.customHash = adaptHashFunc[int](func(key *int, seed uintptr) uintptr { return uintptr(*key) })
	cfg.hashPolicy, cfg.hasPolicy = HashIdentity, true
	h := cfg.buildHasher()
	require.Equal(t, HashIdentity, h.policy)

	k := 7
	require.EqualValues(t, 7, h.hash(&k))
}
