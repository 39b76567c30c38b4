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

// Package swiss provides Set and Map types built on open-addressed Swiss
// tables, as described in https://abseil.io/about/design/swisstables. See
// also https://faultlore.com/blah/hashbrown-tldr/.
//
// # Swiss tables
//
// Swiss tables use open addressing rather than chaining to resolve
// collisions; see https://en.wikipedia.org/wiki/Open_addressing if that
// term is unfamiliar. A hybrid probing scheme is used: within a group of
// slots, membership is checked all at once via a metadata array, and at the
// group level either linear or quadratic probing walks from group to group.
// The metadata array stores one control byte per slot: 7 bits taken from
// the slot's hash, plus a bit indicating whether the slot is empty,
// deleted, or a sentinel. Matching a target byte against a whole group's
// control bytes in one step is what makes probing fast; this package does
// it with plain SWAR (SIMD-within-a-register) bit tricks rather than actual
// SIMD instructions, trading some throughput for a single implementation
// that runs everywhere. See package internal/ctrlgroup.
//
// A table's layout is N-1 usable slots, where N is a power of two, plus N
// control bytes (one per slot and a sentinel at index N-1) and a further
// groupWidth-1 control bytes mirroring the first groupWidth-1 bytes, so
// that a group read straddling the end of the array never needs a bounds
// check. The sentinel is matched as neither empty, deleted nor full: it
// can never hold an entry and is never turned into a deletion tombstone.
// Probing terminates because the load factor always leaves empty slots.
//
// # Set and Map
//
// [Set] and [Map] share one underlying table core (see table.go): a Set's
// table stores keys directly, a Map's stores key/value pairs, and only the
// function used to extract a key from a stored element differs between
// them. Most of the design notes above apply equally to both.
//
// Neither type is safe for concurrent use without external synchronization.
package swiss
