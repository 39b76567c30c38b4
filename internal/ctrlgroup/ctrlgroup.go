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

// Package ctrlgroup implements the SIMD-within-a-register (SWAR) primitives
// that the swiss table probes use to scan a group of control bytes in a
// constant number of word-sized operations. It plays the role that actual
// SSE/NEON loads play in a native implementation: Load, MatchH2, MatchEmpty,
// MatchFull and friends all cost one or two uint64 operations regardless of
// the group width, so the probe loop in package swiss never pays a per-byte
// cost.
//
// Two widths are supported: an 8-lane group backed by a single uint64 (the
// layout cockroachdb/swiss and homier/stablemap use) and a 16-lane group
// backed by two consecutive uint64 words (lanes 0-7 in the first, lanes
// 8-15 in the second). Width is chosen once, when a table
// is constructed (see DefaultWidth), never per probe, so there is no
// indirect call in the hot path -- only a branch on a struct field that is
// the same for the lifetime of the table.
package ctrlgroup

import (
	"math/bits"
	"unsafe"
)

// Control byte states. The top bit distinguishes "holds an element" (0)
// from any of the three non-element states (1).
const (
	Empty    byte = 0b1000_0000
	Deleted  byte = 0b1111_1110
	Sentinel byte = 0b1111_1111
)

const (
	bitsetLSB = 0x0101010101010101
	bitsetMSB = 0x8080808080808080
)

// Width is a supported group width in control bytes.
type Width int

const (
	Width8  Width = 8
	Width16 Width = 16
)

// Bitset is a lane mask: byte i is 0x80 if lane i is set, 0x00 otherwise.
// hi is unused (always zero) for an 8-lane group; First/Remove/Count/Any
// all degrade to the single-word case for that width without a separate
// code path.
type Bitset struct {
	lo, hi uint64
}

// Any reports whether any lane is set.
func (b Bitset) Any() bool { return b.lo != 0 || b.hi != 0 }

// Count returns the number of set lanes.
func (b Bitset) Count() int {
	return bits.OnesCount64(b.lo) + bits.OnesCount64(b.hi)
}

// First returns the index of the lowest-indexed set lane. The caller must
// check Any first; First of an empty bitset returns 16.
func (b Bitset) First() int {
	if b.lo != 0 {
		return bits.TrailingZeros64(b.lo) >> 3
	}
	if b.hi != 0 {
		return 8 + bits.TrailingZeros64(b.hi)>>3
	}
	return 16
}

// Last returns the index of the highest-indexed set lane, or -1 if the
// bitset is empty.
func (b Bitset) Last() int {
	if b.hi != 0 {
		return 8 + (63-bits.LeadingZeros64(b.hi))>>3
	}
	if b.lo != 0 {
		return (63 - bits.LeadingZeros64(b.lo)) >> 3
	}
	return -1
}

// Remove clears lane i (which must be set) and returns the resulting set.
func (b Bitset) Remove(i int) Bitset {
	if i < 8 {
		b.lo &^= uint64(0x80) << (i * 8)
	} else {
		b.hi &^= uint64(0x80) << ((i - 8) * 8)
	}
	return b
}

// Iterate calls fn for every set lane in ascending order, stopping early if
// fn returns false.
func (b Bitset) Iterate(fn func(lane int) bool) {
	for b.Any() {
		i := b.First()
		if !fn(i) {
			return
		}
		b = b.Remove(i)
	}
}

// Group is a window of Width control bytes, addressed directly in the
// table's control array. It is only ever constructed by Load.
type Group struct {
	ptr   unsafe.Pointer
	width Width
}

// Load reads the Width control bytes starting at ctrl[offset]. The control
// array must have at least width bytes available from offset (the sentinel
// mirroring in package swiss guarantees this at every probed offset).
func Load(ctrl []byte, offset int, width Width) Group {
	return Group{ptr: unsafe.Pointer(&ctrl[offset]), width: width}
}

func (g Group) word(n int) uint64 {
	return *(*uint64)(unsafe.Add(g.ptr, n*8))
}

// MatchH2 returns the lanes whose control byte equals the 7-bit fragment h.
//
// This produces rare false positives when h is congruent to the byte
// pattern of its neighbor mod 2^8 (see cockroachdb/swiss's matchH2 comment);
// they are harmless because the caller always re-checks the key.
func (g Group) MatchH2(h uint8) Bitset {
	hv := bitsetLSB * uint64(h)
	lo := g.word(0) ^ hv
	out := Bitset{lo: ((lo - bitsetLSB) &^ lo) & bitsetMSB}
	if g.width == Width16 {
		hi := g.word(1) ^ hv
		out.hi = ((hi - bitsetLSB) &^ hi) & bitsetMSB
	}
	return out
}

// MatchEmpty returns the lanes holding the Empty control byte.
func (g Group) MatchEmpty() Bitset {
	lo := g.word(0)
	out := Bitset{lo: (lo &^ (lo << 6)) & bitsetMSB}
	if g.width == Width16 {
		hi := g.word(1)
		out.hi = (hi &^ (hi << 6)) & bitsetMSB
	}
	return out
}

// MatchEmptyOrDeleted returns the lanes holding Empty or Deleted (i.e. not
// holding a live element and not the Sentinel).
func (g Group) MatchEmptyOrDeleted() Bitset {
	lo := g.word(0)
	out := Bitset{lo: (lo &^ (lo << 7)) & bitsetMSB}
	if g.width == Width16 {
		hi := g.word(1)
		out.hi = (hi &^ (hi << 7)) & bitsetMSB
	}
	return out
}

// MatchFull returns the lanes holding a live element (top bit zero). Note
// this is not simply the complement of MatchEmptyOrDeleted: the Sentinel
// byte has its top bit set but is matched by neither, so it must be
// computed directly rather than by inverting EmptyOrDeleted.
func (g Group) MatchFull() Bitset {
	out := Bitset{lo: bitsetMSB &^ g.word(0)}
	if g.width == Width16 {
		out.hi = bitsetMSB &^ g.word(1)
	}
	return out
}

// ConvertNonFullToEmptyAndFullToDeleted rewrites every control byte in the
// group in place: Empty/Deleted/Sentinel become Empty, and full (live)
// bytes become Deleted. Used by the in-place rehash to mark previously-live
// slots for relocation while simultaneously discarding every tombstone.
func (g Group) ConvertNonFullToEmptyAndFullToDeleted() {
	convertWord(unsafe.Add(g.ptr, 0))
	if g.width == Width16 {
		convertWord(unsafe.Add(g.ptr, 8))
	}
}

func convertWord(p unsafe.Pointer) {
	w := (*uint64)(p)
	v := *w & bitsetMSB
	*w = (^v + (v >> 7)) &^ bitsetLSB
}
