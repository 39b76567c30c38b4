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

// entry is the slot payload for Map[K, V]: a key alongside its value. The
// table core only ever sees T=entry[K,V]; keyOf extracts the part it needs
// for hashing and equality.
type entry[K comparable, V any] struct {
	key   K
	value V
}

func entryKey[K comparable, V any](e *entry[K, V]) K { return e.key }

// Map associates keys of type K with values of type V, built on the same
// open-addressed table core as Set. It is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	t *table[K, entry[K, V]]
}

// NewMap constructs a Map with room for initialCapacity entries without
// triggering a rehash. If initialCapacity is 0 the map starts with zero
// capacity and grows on the first insert.
func NewMap[K comparable, V any](initialCapacity int, opts ...MapOption[K, V]) *Map[K, V] {
	cfg := defaultConfig[K, entry[K, V]]()
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Map[K, V]{t: newTable(entryKey[K, V], cfg)}
	if initialCapacity > 0 {
		m.t.reserve(initialCapacity)
	}
	return m
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int { return m.t.size }

// Clear removes every entry and releases the underlying buffer.
func (m *Map[K, V]) Clear() { m.t.clear() }

// Reserve grows the map, if necessary, so it can hold n entries without a
// further rehash. It never shrinks the map.
func (m *Map[K, V]) Reserve(n int) { m.t.reserve(n) }

// Get returns the value associated with k, if present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	i, ok := m.t.find(k)
	if !ok {
		var zero V
		return zero, false
	}
	return m.t.slots[i].value, true
}

// Contains reports whether k has an associated value.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.t.find(k)
	return ok
}

// Put associates v with k, overwriting any existing value.
func (m *Map[K, V]) Put(k K, v V) {
	slot, inserted := m.t.insert(k, func() entry[K, V] { return entry[K, V]{key: k, value: v} })
	if !inserted {
		slot.value = v
	}
}

// GetOrInsert returns a pointer to the value associated with k, inserting
// makeDefault() under k first if it was absent. The returned pointer is a
// borrow into the map's slot array, valid only until the next rehashing
// operation (see Iterator's doc comment for the same caveat).
func (m *Map[K, V]) GetOrInsert(k K, makeDefault func() V) *V {
	slot, _ := m.t.insert(k, func() entry[K, V] { return entry[K, V]{key: k, value: makeDefault()} })
	return &slot.value
}

// Delete removes k's entry, reporting whether it was present.
func (m *Map[K, V]) Delete(k K) bool { return m.t.eraseKey(k) }

// TryDelete removes k's entry, returning ErrNotFound if it was not present.
func (m *Map[K, V]) TryDelete(k K) error {
	if m.t.eraseKey(k) {
		return nil
	}
	return ErrNotFound
}

// TryGet returns the value associated with k, or ErrNotFound if it is not
// present. Get is the hot-path equivalent for callers who prefer a bool.
func (m *Map[K, V]) TryGet(k K) (V, error) {
	v, ok := m.Get(k)
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

// Swap exchanges the underlying tables of m and other in place: every
// entry, and every construction-time policy (allocator, hasher, group
// width, collision policy, load factor), trades places. It is O(1).
func (m *Map[K, V]) Swap(other *Map[K, V]) {
	m.t, other.t = other.t, m.t
}

// MapIterator walks every live entry of a Map in internal layout order. It
// is subject to the same invalidation rules as Iterator.
type MapIterator[K comparable, V any] struct {
	inner Iterator[entry[K, V]]
}

// Next reports whether another entry is available and, if so, advances past
// it, returning its key and value.
func (it *MapIterator[K, V]) Next() (K, V, bool) {
	e, ok := it.inner.Next()
	if !ok {
		var zk K
		var zv V
		return zk, zv, false
	}
	return e.key, e.value, true
}

// Erase removes the entry most recently returned by Next from the
// underlying map. See Iterator.Erase for the precondition it shares.
func (it *MapIterator[K, V]) Erase() { it.inner.Erase() }

// Iterator returns a fresh MapIterator positioned before the map's first
// live entry.
func (m *Map[K, V]) Iterator() MapIterator[K, V] {
	return MapIterator[K, V]{inner: newTableIterator(m.t)}
}

// All calls yield for every entry, in internal layout order, stopping early
// if yield returns false. The map may be read, but not mutated, safely from
// within yield.
func (m *Map[K, V]) All(yield func(K, V) bool) {
	it := m.Iterator()
	for {
		k, v, ok := it.Next()
		if !ok || !yield(k, v) {
			return
		}
	}
}

// like returns a fresh, empty Map sharing m's allocator, hasher, group
// width, collision policy, hash-cache policy, and load factor -- used by
// Clone so the result inherits the same policies.
func (m *Map[K, V]) like() *Map[K, V] {
	cfg := config[K, entry[K, V]]{
		allocator: m.t.allocator,
		width:     m.t.width,
		policy:    m.t.policy,
		hashCache: m.t.hashCache,
		loadNum:   m.t.loadNum,
		loadDen:   m.t.loadDen,
	}
	out := &Map[K, V]{t: newTable(entryKey[K, V], cfg)}
	out.t.hash = m.t.hash
	return out
}

// Clone returns a deep, independent copy: mutating the clone never affects
// m, and vice versa.
func (m *Map[K, V]) Clone() *Map[K, V] {
	out := m.like()
	out.t.reserve(m.Len())
	m.All(func(k K, v V) bool { out.Put(k, v); return true })
	return out
}
