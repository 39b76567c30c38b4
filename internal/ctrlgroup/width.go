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

package ctrlgroup

import "golang.org/x/sys/cpu"

// DefaultWidth is the group width newly-constructed tables use unless a
// caller overrides it. Wider groups mean fewer probe steps per lookup at
// the cost of touching more cache lines per group; we prefer the wider
// layout only on CPUs that advertise the vector extensions a real SIMD
// backend would need to make the extra lane width pay for itself.
var DefaultWidth = Width8

func init() {
	if cpu.X86.HasAVX2 {
		DefaultWidth = Width16
	}
}
