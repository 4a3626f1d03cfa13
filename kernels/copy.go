// Copyright 2025 Google LLC
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

package kernels

import (
	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
)

func copyKernels() []*dispatch.Kernel {
	return []*dispatch.Kernel{{
		Op:   "copy",
		Name: "copy",
		Sig:  dispatch.Sig(dispatch.P(dispatch.Any(), dispatch.AnyShape)),
		Fn: func(alloc array.Allocator, args []*array.View) (*array.View, error) {
			return array.Compact(alloc, args[0])
		},
	}}
}
