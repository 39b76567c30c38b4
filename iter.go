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

import "github.com/flarehash/swiss/internal/ctrlgroup"

// eraser is the minimal capability Iterator needs in order to erase the
// element it is positioned on, satisfied by *table[K, T] for any K. Kept
// as an interface rather than a *table[K, T] field so Iterator[T] does not
// need to carry the key type parameter K.
type eraser interface {
	eraseIndex(i uintptr)
}

// Iterator walks every live element of a table in internal layout order
// (not key order -- see spec §4.F). It is invalidated by any operation that
// may rehash the table it was created from: Insert once the load limit is
// reached, Reserve when it enlarges, or Clear. Using an invalidated
// iterator is a precondition violation (spec §7 tier 1) and is not
// detected in any build.
type Iterator[T any] struct {
	ctrls    []byte
	slots    []T
	pos      uintptr
	capacity uintptr
	width    ctrlgroup.Width
	tbl      eraser

	last    uintptr
	hasLast bool
}

func newTableIterator[K comparable, T any](t *table[K, T]) Iterator[T] {
	it := Iterator[T]{ctrls: t.ctrls, slots: t.slots, capacity: t.capacity, width: t.width, tbl: t}
	it.advanceToLive(0)
	return it
}

// Next reports whether another live element is available and, if so,
// advances past it, returning a pointer to it. The pointer is a borrow
// into the table's slot array, valid only until the next rehashing
// operation.
func (it *Iterator[T]) Next() (*T, bool) {
	if it.pos >= it.capacity {
		it.hasLast = false
		return nil, false
	}
	v := &it.slots[it.pos]
	it.last, it.hasLast = it.pos, true
	it.advanceToLive(it.pos + 1)
	return v, true
}

// Erase removes the element most recently returned by Next from the
// underlying table (spec §6, "erase(iterator)"). It must be called at most
// once per successful Next call, before the next call to Next; calling it
// without a live element to erase is a precondition violation.
func (it *Iterator[T]) Erase() {
	if !it.hasLast {
		panic("swiss: Iterator.Erase called with no element to erase")
	}
	it.tbl.eraseIndex(it.last)
	it.hasLast = false
}

// advanceToLive moves pos forward from start to the next Full control byte
// at an index below capacity, never reading past the sentinel, skipping
// empty/tombstoned runs a whole group at a time via MatchFull -- the
// group-aligned fast skip spec §4.F describes.
func (it *Iterator[T]) advanceToLive(start uintptr) {
	pos := start
	for pos < it.capacity {
		if isFull(it.ctrls[pos]) {
			it.pos = pos
			return
		}

		aligned := pos - pos%uintptr(it.width)
		g := ctrlgroup.Load(it.ctrls, int(aligned), it.width)

		next := it.capacity
		g.MatchFull().Iterate(func(lane int) bool {
			idx := aligned + uintptr(lane)
			if idx >= pos && idx < it.capacity {
				next = idx
				return false
			}
			return true
		})
		if next < it.capacity {
			it.pos = next
			return
		}
		pos = aligned + uintptr(it.width)
	}
	it.pos = it.capacity
}
