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
	"github.com/gx-org/gumath/kind"
	"golang.org/x/exp/constraints"
)

// A quaternion a+bi+cj+dk is stored as the 2x2 complex block
//
//	[[a+bi, c+di],
//	 [-c+di, a-bi]]
//
// The product of two quaternions is the matrix product of their blocks.

func quaternionKernels() []*dispatch.Kernel {
	var ks []*dispatch.Kernel
	for _, tag := range []kind.Tag{kind.Quaternion64, kind.Quaternion128} {
		q := dispatch.Exact(kind.Of(tag))
		ks = append(ks, &dispatch.Kernel{
			Op:   "multiply",
			Name: "multiply_" + tag.String(),
			Sig: dispatch.Sig(
				dispatch.P(q, dispatch.AnyShape),
				dispatch.P(q, dispatch.AnyShape),
			),
			Fn: elementwise(tag, quaternionProduct(tag)),
		})
	}
	return ks
}

// quaternionProduct multiplies blocks at the precision of their components.
func quaternionProduct(tag kind.Tag) elementFunc {
	if tag == kind.Quaternion64 {
		return blockProduct((*array.Buffer).Complex64, (*array.Buffer).SetComplex64, kind.Of(kind.Complex64).Size())
	}
	return blockProduct((*array.Buffer).Complex128, (*array.Buffer).SetComplex128, kind.Of(kind.Complex128).Size())
}

func blockProduct[T constraints.Complex](get func(*array.Buffer, int) T, set func(*array.Buffer, int, T), size int) elementFunc {
	load := func(b *array.Buffer, off int) (m [2][2]T) {
		for i := range 2 {
			for j := range 2 {
				m[i][j] = get(b, off+(2*i+j)*size)
			}
		}
		return m
	}
	return func(in []*array.Buffer, offs []int, out *array.Buffer, outOff int) {
		x, y := load(in[0], offs[0]), load(in[1], offs[1])
		for i := range 2 {
			for j := range 2 {
				set(out, outOff+(2*i+j)*size, x[i][0]*y[0][j]+x[i][1]*y[1][j])
			}
		}
	}
}
