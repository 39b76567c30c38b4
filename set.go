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

// Set is an unordered collection of distinct keys, built on the same
// open-addressed table core as Map. It is NOT goroutine-safe.
type Set[K comparable] struct {
	t *table[K, K]
}

func identity[K comparable](k *K) K { return *k }

// NewSet constructs a Set with room for initialCapacity elements without
// triggering a rehash. If initialCapacity is 0 the set starts with zero
// capacity and grows on the first insert.
func NewSet[K comparable](initialCapacity int, opts ...SetOption[K]) *Set[K] {
	cfg := defaultConfig[K, K]()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Set[K]{t: newTable(identity[K], cfg)}
	if initialCapacity > 0 {
		s.t.reserve(initialCapacity)
	}
	return s
}

// Len returns the number of elements in the set.
func (s *Set[K]) Len() int { return s.t.size }

// Clear removes every element and releases the underlying buffer.
func (s *Set[K]) Clear() { s.t.clear() }

// Reserve grows the set, if necessary, so it can hold n elements without a
// further rehash. It never shrinks the set.
func (s *Set[K]) Reserve(n int) { s.t.reserve(n) }

// Contains reports whether k is a member of the set.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.t.find(k)
	return ok
}

// Get returns the member equal to k (by ==), if present. The result is the
// copy held by the set rather than k itself, which is useful for interning
// (e.g. reusing a stored string's backing memory).
func (s *Set[K]) Get(k K) (K, bool) {
	i, ok := s.t.find(k)
	if !ok {
		var zero K
		return zero, false
	}
	return s.t.slots[i], true
}

// Insert adds k to the set, reporting whether it was newly added.
func (s *Set[K]) Insert(k K) bool {
	_, inserted := s.t.insert(k, func() K { return k })
	return inserted
}

// InsertSlice inserts every element of ks, returning the count of elements
// that were newly added.
func (s *Set[K]) InsertSlice(ks []K) int {
	n := 0
	for _, k := range ks {
		if s.Insert(k) {
			n++
		}
	}
	return n
}

// Delete removes k from the set, reporting whether it was present.
func (s *Set[K]) Delete(k K) bool { return s.t.eraseKey(k) }

// TryDelete removes k, returning ErrNotFound if it was not present.
func (s *Set[K]) TryDelete(k K) error {
	if s.t.eraseKey(k) {
		return nil
	}
	return ErrNotFound
}

// TryGet returns the member equal to k, or ErrNotFound if it is not
// present. Get is the hot-path equivalent for callers who prefer a bool.
func (s *Set[K]) TryGet(k K) (K, error) {
	v, ok := s.Get(k)
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

// Swap exchanges the underlying tables of s and other in place: every
// element, and every construction-time policy (allocator, hasher, group
// width, collision policy, load factor), trades places. It is O(1).
func (s *Set[K]) Swap(other *Set[K]) {
	s.t, other.t = other.t, s.t
}

// Iterator returns a fresh Iterator positioned before the set's first live
// element. See Iterator's doc comment for invalidation rules.
func (s *Set[K]) Iterator() Iterator[K] { return newTableIterator(s.t) }

// All calls yield for every element, in internal layout order, stopping
// early if yield returns false. The set may be read, but not mutated,
// safely from within yield.
func (s *Set[K]) All(yield func(K) bool) {
	it := s.Iterator()
	for {
		v, ok := it.Next()
		if !ok || !yield(*v) {
			return
		}
	}
}

// like returns a fresh, empty Set sharing s's allocator, hasher, group
// width, collision policy, hash-cache policy, and load factor -- used by
// Clone and the set-algebra operations below so the result inherits the
// same policies.
func (s *Set[K]) like() *Set[K] {
	cfg := config[K, K]{
		allocator: s.t.allocator,
		width:     s.t.width,
		policy:    s.t.policy,
		hashCache: s.t.hashCache,
		loadNum:   s.t.loadNum,
		loadDen:   s.t.loadDen,
	}
	out := &Set[K]{t: newTable(identity[K], cfg)}
	out.t.hash = s.t.hash
	return out
}

// Clone returns a deep, independent copy: mutating the clone never affects
// s, and vice versa (spec §8, "copy then modify leaves the original
// unchanged").
func (s *Set[K]) Clone() *Set[K] {
	out := s.like()
	out.t.reserve(s.Len())
	s.All(func(k K) bool { out.Insert(k); return true })
	return out
}

// Union returns a new set containing every element of s and other.
func (s *Set[K]) Union(other *Set[K]) *Set[K] {
	out := s.Clone()
	other.All(func(k K) bool { out.Insert(k); return true })
	return out
}

// Intersect returns a new set containing only elements present in both s
// and other.
func (s *Set[K]) Intersect(other *Set[K]) *Set[K] {
	out := s.like()
	s.All(func(k K) bool {
		if other.Contains(k) {
			out.Insert(k)
		}
		return true
	})
	return out
}

// Difference returns a new set containing elements of s that are not in
// other.
func (s *Set[K]) Difference(other *Set[K]) *Set[K] {
	out := s.like()
	s.All(func(k K) bool {
		if !other.Contains(k) {
			out.Insert(k)
		}
		return true
	})
	return out
}
