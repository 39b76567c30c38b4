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

// CollisionPolicy selects the sequence of groups a probe visits after a
// miss on the starting group.
type CollisionPolicy int

const (
	// Quadratic visits groups in a triangular-number progression. Under a
	// power-of-two group count this visits every group exactly once, which
	// is why it is the default (see probeSeq below).
	Quadratic CollisionPolicy = iota
	// Linear visits consecutive groups. Shorter per-step distance can help
	// cache locality on table shapes with very few tombstones, at the cost
	// of longer probe chains under clustering.
	Linear
)

// probeSeq is a sequence of byte offsets into the control array, one per
// group visited, for a starting hash and a table mask. offset starts at
// hash & mask and is generally not aligned to a group boundary; groups are
// loaded unaligned, which the mirrored tail of the control array makes safe.
//
// Quadratic probing here is the triangular progression
//
//	p(i) := width*(i^2+i)/2 + hash (mod mask+1)
//
// which visits every group exactly once when the number of groups is a
// power of two (see cockroachdb/swiss's probeSeq comment and
// https://en.wikipedia.org/wiki/Quadratic_probing). Linear probing simply
// steps by one group width each time.
type probeSeq struct {
	mask   uintptr
	offset uintptr
	index  uintptr
	width  uintptr
	policy CollisionPolicy
}

func makeProbeSeq(hash, mask, width uintptr, policy CollisionPolicy) probeSeq {
	return probeSeq{
		mask:   mask,
		offset: hash & mask,
		width:  width,
		policy: policy,
	}
}

func (s probeSeq) next() probeSeq {
	switch s.policy {
	case Linear:
		s.offset = (s.offset + s.width) & s.mask
	default: // Quadratic
		s.index += s.width
		s.offset = (s.offset + s.index) & s.mask
	}
	return s
}

// offsetAt returns the absolute control/slot index for lane i of the
// current group.
func (s probeSeq) offsetAt(i int) uintptr {
	return (s.offset + uintptr(i)) & s.mask
}
