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
	"fmt"
	"math/bits"
	"strings"

	"github.com/flarehash/swiss/internal/ctrlgroup"
)

// table is the shared open-addressed core beneath both Set[K] and
// Map[K, V]: a single contiguous control array plus a parallel slot array,
// generalized from cockroachdb/swiss's bucket[K, V] by parameterizing over
// the stored element type T and a keyOf extractor. For Set[K], T == K and
// keyOf is the identity; for Map[K, V], T is entry[K, V] and keyOf returns
// the entry's key. This mirrors the intent of §1: "a set and a map sharing
// a single underlying table."
//
// A table is NOT goroutine-safe (see spec §5).
type table[K comparable, T any] struct {
	ctrls      []byte
	slots      []T
	emptyCtrls []byte

	// hashes caches each live slot's hash, parallel to slots, when
	// hashCache is StoreHash. Nil (and never consulted) under the default
	// NoStoreHash policy.
	hashes []uintptr

	keyOf func(*T) K
	hash  *hasher[K]

	allocator Allocator[T]
	width     ctrlgroup.Width
	policy    CollisionPolicy
	hashCache HashCachePolicy
	loadNum   int
	loadDen   int

	// capacity is always of the form 2^n-1 (or 0, meaning uninitialized);
	// it doubles as the bitmask used to wrap probe offsets.
	capacity   uintptr
	size       int
	growthLeft int
}

func newTable[K comparable, T any](keyOf func(*T) K, cfg config[K, T]) *table[K, T] {
	width := cfg.width
	if width != ctrlgroup.Width8 && width != ctrlgroup.Width16 {
		width = ctrlgroup.DefaultWidth
	}
	empty := make([]byte, width)
	for i := range empty {
		empty[i] = ctrlEmpty
	}
	return &table[K, T]{
		ctrls:      empty,
		emptyCtrls: empty,
		keyOf:      keyOf,
		hash:       cfg.buildHasher(),
		allocator:  cfg.allocator,
		width:      width,
		policy:     cfg.policy,
		hashCache:  cfg.hashCache,
		loadNum:    cfg.loadNum,
		loadDen:    cfg.loadDen,
	}
}

// find returns the absolute slot index holding key, if present.
func (t *table[K, T]) find(key K) (uintptr, bool) {
	if t.capacity == 0 {
		return 0, false
	}
	h := t.hash.hash(&key)
	seq := makeProbeSeq(h1(h), t.capacity, uintptr(t.width), t.policy)
	target := h2(h)
	for ; ; seq = seq.next() {
		g := ctrlgroup.Load(t.ctrls, int(seq.offset), t.width)
		match := g.MatchH2(target)
		var (
			found   uintptr
			foundOK bool
		)
		match.Iterate(func(lane int) bool {
			i := seq.offsetAt(lane)
			if t.keyOf(&t.slots[i]) == key {
				found, foundOK = i, true
				return false
			}
			return true
		})
		if foundOK {
			return found, true
		}
		if g.MatchEmpty().Any() {
			return 0, false
		}
	}
}

// insert finds key, or inserts a value built by makeValue if absent. It
// returns a pointer to the (possibly new) slot and whether it was inserted.
func (t *table[K, T]) insert(key K, makeValue func() T) (*T, bool) {
	if t.capacity == 0 {
		t.resize(uintptr(t.width) - 1)
	}
	h := t.hash.hash(&key)
	target := h2(h)
	seq := makeProbeSeq(h1(h), t.capacity, uintptr(t.width), t.policy)
	for ; ; seq = seq.next() {
		g := ctrlgroup.Load(t.ctrls, int(seq.offset), t.width)

		var found *T
		g.MatchH2(target).Iterate(func(lane int) bool {
			i := seq.offsetAt(lane)
			if t.keyOf(&t.slots[i]) == key {
				found = &t.slots[i]
				return false
			}
			return true
		})
		if found != nil {
			return found, false
		}

		empty := g.MatchEmpty()
		if empty.Any() {
			// Checked before placement, per spec §4.E / §9: rehash first
			// so no already-constructed value is wasted on a stale group.
			if t.growthLeft == 0 {
				t.rehash()
				return t.insert(key, makeValue)
			}
			i := seq.offsetAt(empty.First())
			t.slots[i] = makeValue()
			t.growthLeft--
			t.setCtrl(i, target)
			if t.hashCache == StoreHash {
				t.hashes[i] = h
			}
			t.size++
			t.checkInvariants()
			return &t.slots[i], true
		}
	}
}

// uncheckedInsert places value (whose key is known not to already be
// present) into the first available slot. Used by resize/rehash, which
// already guarantee uniqueness from the source table.
func (t *table[K, T]) uncheckedInsert(h uintptr, value T) {
	seq := makeProbeSeq(h1(h), t.capacity, uintptr(t.width), t.policy)
	for ; ; seq = seq.next() {
		g := ctrlgroup.Load(t.ctrls, int(seq.offset), t.width)
		match := g.MatchEmptyOrDeleted()
		if match.Any() {
			i := seq.offsetAt(match.First())
			t.slots[i] = value
			if t.ctrls[i] == ctrlEmpty {
				t.growthLeft--
			}
			t.setCtrl(i, h2(h))
			if t.hashCache == StoreHash {
				t.hashes[i] = h
			}
			return
		}
	}
}

// eraseIndex destroys the element at absolute slot index i.
func (t *table[K, T]) eraseIndex(i uintptr) {
	var zero T
	t.slots[i] = zero
	t.size--

	if t.wasNeverFull(i) {
		t.setCtrl(i, ctrlEmpty)
		t.growthLeft++
	} else {
		t.setCtrl(i, ctrlDeleted)
	}
	t.checkInvariants()
}

// eraseKey finds and erases key, reporting whether it was present.
func (t *table[K, T]) eraseKey(key K) bool {
	i, ok := t.find(key)
	if !ok {
		return false
	}
	t.eraseIndex(i)
	return true
}

// wasNeverFull reports whether slot i could be converted straight to Empty
// (rather than a Deleted tombstone) without shortening any other probe
// chain -- i.e. slot i was never part of a group that was ever completely
// full. See spec §4.E's erase contract and cockroachdb/swiss's
// wasNeverFull, reimplemented here against the ctrlgroup.Bitset API instead
// of hand-inlined bit twiddling.
func (t *table[K, T]) wasNeverFull(i uintptr) bool {
	width := uintptr(t.width)
	if t.capacity < width {
		return true
	}

	indexBefore := (i - width) & t.capacity
	emptyAfter := ctrlgroup.Load(t.ctrls, int(i), t.width).MatchEmpty()
	emptyBefore := ctrlgroup.Load(t.ctrls, int(indexBefore), t.width).MatchEmpty()
	if !emptyAfter.Any() || !emptyBefore.Any() {
		return false
	}

	distAfter := emptyAfter.First()
	distBefore := int(width) - 1 - emptyBefore.Last()
	return distAfter+distBefore < int(width)
}

// setCtrl sets the control byte at i and mirrors it into the tail copy if i
// falls in the first width-1 slots, so a group read that wraps past the
// sentinel still sees valid bytes (spec §3 invariant 3).
func (t *table[K, T]) setCtrl(i uintptr, v byte) {
	width := uintptr(t.width)
	t.ctrls[i] = v
	t.ctrls[((i-(width-1))&t.capacity)+(width-1)] = v
}

// reserve grows the table, if necessary, so it can hold n elements without
// triggering a rehash. It never shrinks.
func (t *table[K, T]) reserve(n int) {
	if n <= 0 {
		return
	}
	needed := (uintptr(n)*uintptr(t.loadDen) + uintptr(t.loadNum) - 1) / uintptr(t.loadNum)
	target := nextPow2(needed+1) - 1
	if target > t.capacity {
		t.resize(target)
	}
}

// clear destroys every live element and releases the buffer back to the
// allocator, resetting the table to its zero-capacity state.
func (t *table[K, T]) clear() {
	if t.capacity == 0 {
		return
	}
	t.allocator.FreeSlots(t.slots)
	t.allocator.FreeControls(t.ctrls)
	t.ctrls = t.emptyCtrls
	t.slots = nil
	t.capacity = 0
	t.size = 0
	t.growthLeft = 0
}

// rehash either compacts tombstones in place or grows the table, following
// the same recoverable-capacity heuristic as cockroachdb/swiss's rehash:
// rehashing in place is only worthwhile when it can reclaim at least a
// third of capacity, since its cost is dominated by recomputing every
// live element's hash regardless of how many tombstones are reclaimed.
func (t *table[K, T]) rehash() {
	width := uintptr(t.width)
	maxAvgLoad := t.capacity * uintptr(t.loadNum) / uintptr(t.loadDen)
	recoverable := maxAvgLoad - uintptr(t.size)
	if t.capacity > width && recoverable >= t.capacity/3 {
		t.rehashInPlace()
	} else {
		t.resize(2*t.capacity + 1)
	}
}

// resize allocates a newCapacity-sized buffer and moves every live element
// into it via uncheckedInsert (safe: the old table already guaranteed
// uniqueness), then frees the old buffer.
func (t *table[K, T]) resize(newCapacity uintptr) {
	width := uintptr(t.width)
	if newCapacity+1 < width {
		newCapacity = width - 1
	}

	oldCtrls, oldSlots, oldHashes, oldCapacity := t.ctrls, t.slots, t.hashes, t.capacity

	t.slots = t.allocator.AllocSlots(int(newCapacity))
	t.ctrls = t.allocator.AllocControls(int(newCapacity + width))
	if t.hashCache == StoreHash {
		t.hashes = make([]uintptr, newCapacity)
	}
	for i := range t.ctrls {
		t.ctrls[i] = ctrlEmpty
	}
	t.ctrls[newCapacity] = ctrlSentinel

	t.growthLeft = int(newCapacity * uintptr(t.loadNum) / uintptr(t.loadDen))
	t.capacity = newCapacity

	for i := uintptr(0); i < oldCapacity; i++ {
		c := oldCtrls[i]
		if c == ctrlEmpty || c == ctrlDeleted {
			continue
		}
		var h uintptr
		if t.hashCache == StoreHash {
			h = oldHashes[i]
		} else {
			key := t.keyOf(&oldSlots[i])
			h = t.hash.hash(&key)
		}
		t.uncheckedInsert(h, oldSlots[i])
	}

	if oldCapacity > 0 {
		t.allocator.FreeSlots(oldSlots)
		t.allocator.FreeControls(oldCtrls)
	}
	t.checkInvariants()
}

// rehashInPlace drops every tombstone without growing the table: it first
// marks every Deleted/Sentinel byte Empty and every Full byte Deleted (a
// single group-wide SWAR op per group), then walks the newly-Deleted
// (i.e. previously Full) bytes, relocating each one to the first group
// with room along its own probe sequence. See cockroachdb/swiss's
// rehashInPlace for the original derivation of this in-place compaction.
func (t *table[K, T]) rehashInPlace() {
	width := uintptr(t.width)

	for i := uintptr(0); i < t.capacity; i += width {
		ctrlgroup.Load(t.ctrls, int(i), t.width).ConvertNonFullToEmptyAndFullToDeleted()
	}
	for i, n := uintptr(0), width-1; i < n; i++ {
		t.ctrls[((i-(width-1))&t.capacity)+(width-1)] = t.ctrls[i]
	}
	t.ctrls[t.capacity] = ctrlSentinel

	for i := uintptr(0); i < t.capacity; i++ {
		if t.ctrls[i] != ctrlDeleted {
			continue
		}

		var h uintptr
		if t.hashCache == StoreHash {
			h = t.hashes[i]
		} else {
			key := t.keyOf(&t.slots[i])
			h = t.hash.hash(&key)
		}
		seq := makeProbeSeq(h1(h), t.capacity, width, t.policy)
		desiredOffset := seq.offset

		probeIndex := func(pos uintptr) uintptr {
			return ((pos - desiredOffset) & t.capacity) / width
		}

		var target uintptr
		for ; ; seq = seq.next() {
			g := ctrlgroup.Load(t.ctrls, int(seq.offset), t.width)
			if match := g.MatchEmptyOrDeleted(); match.Any() {
				target = seq.offsetAt(match.First())
				break
			}
		}

		if i == target || probeIndex(i) == probeIndex(target) {
			t.setCtrl(i, h2(h))
			continue
		}

		switch t.ctrls[target] {
		case ctrlEmpty:
			t.setCtrl(target, h2(h))
			t.slots[target] = t.slots[i]
			if t.hashCache == StoreHash {
				t.hashes[target] = h
			}
			var zero T
			t.slots[i] = zero
			t.setCtrl(i, ctrlEmpty)
		case ctrlDeleted:
			t.setCtrl(target, h2(h))
			t.slots[target], t.slots[i] = t.slots[i], t.slots[target]
			if t.hashCache == StoreHash {
				t.hashes[target], t.hashes[i] = h, t.hashes[target]
			}
			// Reprocess index i, which now holds the element that used to
			// be at target.
			i--
		default:
			panic("swiss: corrupt control byte during in-place rehash")
		}
	}

	t.growthLeft = int(t.capacity*uintptr(t.loadNum)/uintptr(t.loadDen)) - t.size
	t.checkInvariants()
}

func nextPow2(n uintptr) uintptr {
	if n <= 1 {
		return 1
	}
	return uintptr(1) << bits.Len(uint(n-1))
}

// checkInvariants re-derives every structural fact about t from scratch and
// panics if it disagrees with what t believes about itself. It is a no-op
// unless built with -tags swiss_debug; see cockroachdb/swiss's
// checkInvariants, which this generalizes to an arbitrary keyOf.
func (t *table[K, T]) checkInvariants() {
	if !invariants {
		return
	}
	width := uintptr(t.width)

	if t.capacity > 0 {
		for i, n := uintptr(0), width-1; i < n; i++ {
			j := ((i - (width - 1)) & t.capacity) + (width - 1)
			if t.ctrls[i] != t.ctrls[j] {
				panic(fmt.Sprintf("invariant failed: ctrl(%d)=%02x != ctrl(%d)=%02x\n%s", i, t.ctrls[i], j, t.ctrls[j], t.debugString()))
			}
		}
		if c := t.ctrls[t.capacity]; c != ctrlSentinel {
			panic(fmt.Sprintf("invariant failed: ctrl(%d): expected sentinel, found %02x\n%s", t.capacity, c, t.debugString()))
		}
	}

	var used, deleted int
	for i := uintptr(0); i < t.capacity; i++ {
		switch t.ctrls[i] {
		case ctrlDeleted:
			deleted++
		case ctrlEmpty:
		case ctrlSentinel:
			panic(fmt.Sprintf("invariant failed: ctrl(%d): unexpected sentinel", i))
		default:
			key := t.keyOf(&t.slots[i])
			if _, ok := t.find(key); !ok {
				panic(fmt.Sprintf("invariant failed: slot(%d): key not found via find\n%s", i, t.debugString()))
			}
			used++
		}
	}

	if used != t.size {
		panic(fmt.Sprintf("invariant failed: found %d used slots, but size is %d\n%s", used, t.size, t.debugString()))
	}

	if t.capacity > 0 {
		maxAvgLoad := t.capacity * uintptr(t.loadNum) / uintptr(t.loadDen)
		growthLeft := int(maxAvgLoad) - used - deleted
		if growthLeft != t.growthLeft {
			panic(fmt.Sprintf("invariant failed: found %d growthLeft, expected %d\n%s", t.growthLeft, growthLeft, t.debugString()))
		}
	}
}

// debugString renders every control byte and occupied slot, for panic
// messages from checkInvariants.
func (t *table[K, T]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d size=%d growthLeft=%d width=%d\n", t.capacity, t.size, t.growthLeft, t.width)
	for i := uintptr(0); i < t.capacity; i++ {
		switch c := t.ctrls[i]; c {
		case ctrlEmpty:
			fmt.Fprintf(&buf, "  %d: empty\n", i)
		case ctrlDeleted:
			fmt.Fprintf(&buf, "  %d: deleted\n", i)
		default:
			fmt.Fprintf(&buf, "  %d: full h2=%02x key=%v\n", i, c, t.keyOf(&t.slots[i]))
		}
	}
	return buf.String()
}
