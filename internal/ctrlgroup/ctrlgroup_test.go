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

package ctrlgroup

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestLittleEndian(t *testing.T) {
	// The word-at-a-time matching below assumes a little-endian CPU: byte i
	// of the control array must land in the low-order bits of word i/8.
	b := []uint8{0x1, 0x2, 0x3, 0x4}
	v := *(*uint32)(unsafe.Pointer(&b[0]))
	require.EqualValues(t, 0x04030201, v)
}

func padded(ctrls []byte, width Width) []byte {
	out := make([]byte, int(width))
	copy(out, ctrls)
	for i := len(ctrls); i < len(out); i++ {
		out[i] = Empty
	}
	return out
}

func TestMatchH2(t *testing.T) {
	for _, width := range []Width{Width8, Width16} {
		ctrls := padded([]byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}, width)
		g := Load(ctrls, 0, width)
		for i := uint8(1); i <= 8; i++ {
			match := g.MatchH2(i)
			require.True(t, match.Any())
			require.EqualValues(t, i-1, match.First())
		}
	}
}

func TestMatchEmpty(t *testing.T) {
	testCases := []struct {
		ctrls    []byte
		expected []int
	}{
		{[]byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}, nil},
		{[]byte{0x1, 0x2, 0x3, Empty, 0x5, Deleted, 0x7, Sentinel}, []int{3}},
		{[]byte{0x1, 0x2, 0x3, Empty, 0x5, 0x6, Empty, 0x8}, []int{3, 6}},
	}
	for _, c := range testCases {
		g := Load(c.ctrls, 0, Width8)
		var got []int
		g.MatchEmpty().Iterate(func(lane int) bool { got = append(got, lane); return true })
		require.Equal(t, c.expected, got)
	}
}

func TestMatchEmptyOrDeleted(t *testing.T) {
	testCases := []struct {
		ctrls    []byte
		expected []int
	}{
		{[]byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}, nil},
		{[]byte{0x1, 0x2, 0x3, Empty, 0x5, Deleted, 0x7, Sentinel}, []int{3, 5}},
		{[]byte{0x1, Deleted, 0x3, Empty, 0x5, 0x6, Empty, 0x8}, []int{1, 3, 6}},
	}
	for _, c := range testCases {
		g := Load(c.ctrls, 0, Width8)
		var got []int
		g.MatchEmptyOrDeleted().Iterate(func(lane int) bool { got = append(got, lane); return true })
		require.Equal(t, c.expected, got)
	}
}

func TestMatchFull(t *testing.T) {
	ctrls := []byte{0x1, Empty, 0x3, Deleted, 0x5, Sentinel, 0x7, 0x8}
	g := Load(ctrls, 0, Width8)
	var got []int
	g.MatchFull().Iterate(func(lane int) bool { got = append(got, lane); return true })
	require.Equal(t, []int{0, 2, 4, 6, 7}, got)
}

func TestConvertNonFullToEmptyAndFullToDeleted(t *testing.T) {
	ctrls := []byte{0x1, Empty, 0x3, Deleted, 0x5, Sentinel, 0x7, 0x8}
	g := Load(ctrls, 0, Width8)
	g.ConvertNonFullToEmptyAndFullToDeleted()
	require.Equal(t, []byte{Deleted, Empty, Deleted, Empty, Deleted, Empty, Deleted, Deleted}, ctrls)
}

func TestWidth16MatchesAcrossBothWords(t *testing.T) {
	ctrls := make([]byte, 16)
	for i := range ctrls {
		ctrls[i] = Empty
	}
	ctrls[3] = 0x42
	ctrls[12] = 0x42
	g := Load(ctrls, 0, Width16)
	match := g.MatchH2(0x42)
	require.Equal(t, 2, match.Count())
	var got []int
	match.Iterate(func(lane int) bool { got = append(got, lane); return true })
	require.Equal(t, []int{3, 12}, got)
}

func TestBitsetFirstLastEmpty(t *testing.T) {
	var b Bitset
	require.False(t, b.Any())
	require.Equal(t, 16, b.First())
	require.Equal(t, -1, b.Last())
}
