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
	"hash/maphash"
	"reflect"
	"unsafe"
)

// HashCachePolicy selects whether a slot's hash is recomputed from the key
// on every rehash or kept alongside the slot and reused.
type HashCachePolicy int

const (
	// NoStoreHash recomputes a live element's hash from its key whenever a
	// resize or in-place rehash needs it. This is the default: it costs
	// nothing on the hot insert/lookup path and keeps the slot array
	// exactly sizeof(T) per element, which matters more than rehash cost
	// for the common case of a cheap hash function.
	NoStoreHash HashCachePolicy = iota
	// StoreHash keeps a parallel uintptr per slot holding the hash it was
	// inserted with, so resize and rehashInPlace look it up instead of
	// recomputing it from the key. Worthwhile when the configured hash
	// function is expensive relative to a uintptr load (long strings,
	// externally supplied hashes doing real work per call).
	StoreHash
)

// HashPolicy selects whether a raw hash value is used as-is or is first
// passed through a mixing step before being split into h1/h2.
type HashPolicy int

const (
	// HashIdentity uses the hash value as-is. This is the default for the
	// bundled hasher, whose output already has good avalanche behavior, the
	// same property that lets Abseil's flat_hash_map and Go's own runtime
	// map trust their hash functions' low bits directly.
	HashIdentity HashPolicy = iota
	// HashMix applies the 64-bit MurmurHash3 finalizer before splitting.
	// It is selected automatically when a caller supplies a hash function
	// via WithSetHashFunc/WithMapHashFunc, since an externally supplied
	// hash is not known to avalanche well in the bits h2 depends on.
	HashMix
)

// rawSeed bundles the maphash.Seed the bundled default hasher needs with a
// plain uintptr derived from it, handed to caller-supplied hash functions
// that have no reason to depend on hash/maphash's types.
type rawSeed struct {
	mh maphash.Seed
	u  uintptr
}

func newRawSeed() rawSeed {
	mh := maphash.MakeSeed()
	var h maphash.Hash
	h.SetSeed(mh)
	return rawSeed{mh: mh, u: uintptr(h.Sum64())}
}

func (s rawSeed) asUintptr() uintptr { return s.u }

// hashFunc computes a hash for *key under seed. It takes a pointer so large
// key types aren't copied on every probe, mirroring the shape of
// cockroachdb/swiss's WithHash option.
type hashFunc[K comparable] func(key *K, seed rawSeed) uintptr

type hasher[K comparable] struct {
	fn     hashFunc[K]
	seed   rawSeed
	policy HashPolicy
}

func newHasher[K comparable]() *hasher[K] {
	return &hasher[K]{
		fn:     defaultHashFunc[K](),
		seed:   newRawSeed(),
		policy: HashIdentity,
	}
}

func (h *hasher[K]) hash(key *K) uintptr {
	v := h.fn(key, h.seed)
	if h.policy == HashMix {
		v = uintptr(mix64(uint64(v)))
	}
	return v
}

// mix64 is MurmurHash3's 64-bit finalizer, ported from
// EinfachAndy/hashmaps' hashQword/hashFloat64.
func mix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

// defaultHashFunc picks a hash implementation by the kind of K, in the
// style of EinfachAndy/hashmaps' GetHasher: fixed-width numeric kinds get a
// direct bit reinterpretation plus the murmur finalizer mixed with the
// table's seed, strings go through hash/maphash (which already mixes well
// and is seeded per table), and anything else falls back to hashing the
// key's raw bytes. The unsafe.Pointer cast between concretely-typed and
// generic hashFunc[K] values is safe because every candidate function
// takes a single pointer-sized argument plus a rawSeed value and returns a
// uintptr: the calling convention does not depend on the pointee type.
func defaultHashFunc[K comparable]() hashFunc[K] {
	var zero K
	switch reflect.TypeOf(&zero).Elem().Kind() {
	case reflect.String:
		fn := hashStringKey
		return *(*hashFunc[K])(unsafe.Pointer(&fn))
	case reflect.Int8, reflect.Uint8:
		fn := hashByteKey
		return *(*hashFunc[K])(unsafe.Pointer(&fn))
	case reflect.Int16, reflect.Uint16:
		fn := hashWordKey
		return *(*hashFunc[K])(unsafe.Pointer(&fn))
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		fn := hashDwordKey
		return *(*hashFunc[K])(unsafe.Pointer(&fn))
	case reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint, reflect.Uintptr, reflect.Float64:
		fn := hashQwordKey
		return *(*hashFunc[K])(unsafe.Pointer(&fn))
	default:
		return hashBytesKey[K]
	}
}

func hashStringKey(k *string, seed rawSeed) uintptr {
	return uintptr(maphash.String(seed.mh, *k))
}

func hashByteKey(k *uint8, seed rawSeed) uintptr {
	return uintptr(mix64(uint64(*k) ^ uint64(seed.u)))
}

func hashWordKey(k *uint16, seed rawSeed) uintptr {
	return uintptr(mix64(uint64(*k) ^ uint64(seed.u)))
}

func hashDwordKey(k *uint32, seed rawSeed) uintptr {
	return uintptr(mix64(uint64(*k) ^ uint64(seed.u)))
}

func hashQwordKey(k *uint64, seed rawSeed) uintptr {
	return uintptr(mix64(*k ^ uint64(seed.u)))
}

// hashBytesKey hashes the raw memory of *k. It is only correct for
// comparable types whose equality is defined by their bit pattern (structs
// and arrays of such types); keys containing interfaces or non-comparable-
// by-bytes fields should supply their own hasher via WithSetHashFunc /
// WithMapHashFunc.
func hashBytesKey[K comparable](k *K, seed rawSeed) uintptr {
	b := unsafe.Slice((*byte)(unsafe.Pointer(k)), unsafe.Sizeof(*k))
	return uintptr(maphash.Bytes(seed.mh, b))
}
