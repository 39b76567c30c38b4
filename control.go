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

// Control byte states, mirrored from internal/ctrlgroup for readability at
// call sites that don't otherwise touch that package.
const (
	ctrlEmpty    = ctrlgroup.Empty
	ctrlDeleted  = ctrlgroup.Deleted
	ctrlSentinel = ctrlgroup.Sentinel
)

// h1 selects the starting group: the hash with its low 7 bits stripped off.
func h1(h uintptr) uintptr {
	return h >> 7
}

// h2 is the 7-bit fragment stored in a Full control byte.
func h2(h uintptr) uint8 {
	return uint8(h & 0x7f)
}

// isFull reports whether a control byte holds a live element.
func isFull(c byte) bool {
	return c&0x80 == 0
}
