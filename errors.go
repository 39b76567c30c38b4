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

import "errors"

// ErrNotFound is returned by the accessors that prefer an explicit error
// over a boolean ok value (TryDelete, TryGet). Get and Contains report a
// miss via a plain boolean instead, since that is the hot path and callers
// there rarely want to allocate or inspect an error.
var ErrNotFound = errors.New("swiss: key not found")
