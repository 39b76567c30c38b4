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
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func genSeq(n int, hash, mask, width uintptr, policy CollisionPolicy) []uintptr {
	seq := makeProbeSeq(hash, mask, width, policy)
	vals := make([]uintptr, n)
	for i := 0; i < n; i++ {
		vals[i] = seq.offset
		seq = seq.next()
	}
	return vals
}

func TestProbeSeqQuadraticCoversEveryGroup(t *testing.T) {
	const mask = 15
	const width = 1
	const groups = 16

	var groupVals []uintptr
	for i := uintptr(0); i < groups; i++ {
		groupVals = append(groupVals, i)
	}

	// Starting the sequence at any offset within the table must still touch
	// every group exactly once, matching cockroachdb/swiss's TestProbeSeq.
	for i := uintptr(0); i < groups; i++ {
		vals := genSeq(groups, i, mask, width, Quadratic)
		require.Len(t, vals, groups)
		sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
		require.Equal(t, groupVals, vals)
	}
}

func TestProbeSeqQuadraticStableForEquivalentHashes(t *testing.T) {
	const mask = 15
	require.Equal(t, genSeq(16, 0, mask, 1, Quadratic), genSeq(16, 16, mask, 1, Quadratic))
}

func TestProbeSeqLinearStepsByWidth(t *testing.T) {
	const mask = 31
	const width = 8
	vals := genSeq(4, 0, mask, width, Linear)
	require.Equal(t, []uintptr{0, 8, 16, 24}, vals)
}

func TestProbeSeqOffsetAt(t *testing.T) {
	seq := makeProbeSeq(3, 15, 1, Quadratic)
	for i := 0; i < 8; i++ {
		require.EqualValues(t, (seq.offset+uintptr(i))&seq.mask, seq.offsetAt(i))
	}
}
