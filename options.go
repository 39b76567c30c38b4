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

// config collects the construction-time policy choices for a table before
// it is built. Every policy named in spec §6 (collision policy, hash
// mixing, hash caching, load factor, group width/backend) is resolved here,
// once, rather than re-checked on every probe -- see the "no virtual
// dispatch in hot paths" design note.
type config[K comparable, T any] struct {
	allocator  Allocator[T]
	customHash hashFunc[K]
	hashPolicy HashPolicy
	hasPolicy  bool
	hashCache  HashCachePolicy
	width      ctrlgroup.Width
	policy     CollisionPolicy
	loadNum    int
	loadDen    int
}

func defaultConfig[K comparable, T any]() config[K, T] {
	return config[K, T]{
		allocator: defaultAllocator[T]{},
		width:     ctrlgroup.DefaultWidth,
		policy:    Quadratic,
		hashCache: NoStoreHash,
		loadNum:   7,
		loadDen:   8,
	}
}

func (c *config[K, T]) buildHasher() *hasher[K] {
	h := newHasher[K]()
	if c.customHash != nil {
		h.fn = c.customHash
		h.policy = HashMix
	}
	if c.hasPolicy {
		h.policy = c.hashPolicy
	}
	return h
}

// SetOption configures a Set[K] at construction time.
type SetOption[K comparable] func(*config[K, K])

// MapOption configures a Map[K, V] at construction time.
type MapOption[K comparable, V any] func(*config[K, entry[K, V]])

// WithSetAllocator overrides how a Set's control and slot arrays are
// allocated and freed.
func WithSetAllocator[K comparable](a Allocator[K]) SetOption[K] {
	return func(c *config[K, K]) { c.allocator = a }
}

// WithMapAllocator overrides how a Map's control and slot arrays are
// allocated and freed.
func WithMapAllocator[K comparable, V any](a Allocator[entry[K, V]]) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.allocator = a }
}

// WithSetHashFunc supplies a hash function for a Set's key type, replacing
// the bundled hash/maphash-based default. Custom hash functions are mixed
// with the MurmurHash3 finalizer (HashMix) unless overridden with
// WithSetHashPolicy, since they are not known to avalanche well in their
// low bits.
func WithSetHashFunc[K comparable](fn func(key *K, seed uintptr) uintptr) SetOption[K] {
	return func(c *config[K, K]) { c.customHash = adaptHashFunc[K](fn) }
}

// WithMapHashFunc is the Map analog of WithSetHashFunc.
func WithMapHashFunc[K comparable, V any](fn func(key *K, seed uintptr) uintptr) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.customHash = adaptHashFunc[K](fn) }
}

// WithSetHashPolicy forces the hash-mixing policy rather than letting it be
// inferred from whether a custom hash function was supplied.
func WithSetHashPolicy[K comparable](p HashPolicy) SetOption[K] {
	return func(c *config[K, K]) { c.hashPolicy, c.hasPolicy = p, true }
}

// WithMapHashPolicy is the Map analog of WithSetHashPolicy.
func WithMapHashPolicy[K comparable, V any](p HashPolicy) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.hashPolicy, c.hasPolicy = p, true }
}

// WithSetCollisionPolicy selects Linear or Quadratic probing for a Set.
func WithSetCollisionPolicy[K comparable](p CollisionPolicy) SetOption[K] {
	return func(c *config[K, K]) { c.policy = p }
}

// WithMapCollisionPolicy is the Map analog of WithSetCollisionPolicy.
func WithMapCollisionPolicy[K comparable, V any](p CollisionPolicy) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.policy = p }
}

// WithSetLoadFactor overrides the default 7/8 load factor for a Set.
func WithSetLoadFactor[K comparable](num, den int) SetOption[K] {
	return func(c *config[K, K]) { c.loadNum, c.loadDen = num, den }
}

// WithMapLoadFactor is the Map analog of WithSetLoadFactor.
func WithMapLoadFactor[K comparable, V any](num, den int) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.loadNum, c.loadDen = num, den }
}

// WithSetGroupWidth overrides the automatically selected SWAR group width
// (see internal/ctrlgroup.DefaultWidth). Only ctrlgroup.Width8 and
// ctrlgroup.Width16 are valid.
func WithSetGroupWidth[K comparable](w ctrlgroup.Width) SetOption[K] {
	return func(c *config[K, K]) { c.width = w }
}

// WithMapGroupWidth is the Map analog of WithSetGroupWidth.
func WithMapGroupWidth[K comparable, V any](w ctrlgroup.Width) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.width = w }
}

// WithSetHashCache selects whether a Set caches each element's hash
// alongside its slot (StoreHash) or recomputes it from the key on every
// resize/in-place rehash (NoStoreHash, the default).
func WithSetHashCache[K comparable](p HashCachePolicy) SetOption[K] {
	return func(c *config[K, K]) { c.hashCache = p }
}

// WithMapHashCache is the Map analog of WithSetHashCache.
func WithMapHashCache[K comparable, V any](p HashCachePolicy) MapOption[K, V] {
	return func(c *config[K, entry[K, V]]) { c.hashCache = p }
}

// adaptHashFunc turns a (key, seed uintptr) hash function into the internal
// hashFunc shape, which carries a maphash.Seed purely so the bundled
// default can reuse the same field; custom functions ignore its structure
// and receive a derived uintptr instead.
func adaptHashFunc[K comparable](fn func(key *K, seed uintptr) uintptr) hashFunc[K] {
	return func(key *K, seed rawSeed) uintptr {
		return fn(key, seed.asUintptr())
	}
}
