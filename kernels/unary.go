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
	"math"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/kind"
	"golang.org/x/exp/constraints"
)

// UnaryOps lists the elementwise math operations and their Go implementation.
var UnaryOps = []struct {
	Name string
	Func func(float64) float64
}{
	{Name: "sin", Func: math.Sin},
	{Name: "cos", Func: math.Cos},
	{Name: "tan", Func: math.Tan},
	{Name: "exp", Func: math.Exp},
	{Name: "log", Func: math.Log},
	{Name: "sqrt", Func: math.Sqrt},
	{Name: "fabs", Func: math.Abs},
	{Name: "negative", Func: func(x float64) float64 { return -x }},
}

// unaryInputs maps input patterns to the output kind of unary math kernels.
// Small integers are computed in single precision, others in double precision.
var unaryInputs = []struct {
	suffix string
	in     dispatch.Pattern
	out    kind.Tag
}{
	{suffix: "float32", in: dispatch.Exact(kind.Of(kind.Float32)), out: kind.Float32},
	{suffix: "float64", in: dispatch.Exact(kind.Of(kind.Float64)), out: kind.Float64},
	{suffix: "int8_int16", in: dispatch.OneOf(kind.Int8, kind.Int16), out: kind.Float32},
	{suffix: "integer", in: dispatch.AnyInteger(), out: kind.Float64},
}

func unaryKernels() []*dispatch.Kernel {
	var ks []*dispatch.Kernel
	for _, op := range UnaryOps {
		for _, input := range unaryInputs {
			fn := unaryFunc(op.Func, input.out)
			ks = append(ks,
				&dispatch.Kernel{
					Op:   op.Name,
					Name: op.Name + "_" + input.suffix,
					Sig:  dispatch.Sig(dispatch.P(input.in, dispatch.AnyShape)),
					Fn:   fn,
				},
				&dispatch.Kernel{
					Op:   op.Name,
					Name: op.Name + "_optional_" + input.suffix,
					Sig:  dispatch.Sig(dispatch.P(dispatch.OptionalOf(input.in), dispatch.AnyShape)),
					Fn:   fn,
				},
			)
		}
	}
	return ks
}

func unaryFunc(f func(float64) float64, out kind.Tag) dispatch.Func {
	return func(alloc array.Allocator, args []*array.View) (*array.View, error) {
		x := args[0]
		z, err := array.AllocLike(alloc, x, outputKind(out, x))
		if err != nil {
			return nil, err
		}
		if mapContiguous(z, x, f) {
			return z, nil
		}
		steps, err := array.CoIter(z, x)
		if err != nil {
			return nil, err
		}
		in := valueTag(x.Kind())
		xb, zb := x.Buffer(), z.Buffer()
		for offs := range steps {
			if !x.Valid(offs[0]) {
				continue
			}
			z.SetValid(offs[1], true)
			zb.SetFloat(out, offs[1], f(readReal(xb, in, offs[0])))
		}
		return z, nil
	}
}

// mapContiguous applies f to the elements of x and stores the result in z
// when both views are contiguous with the same floating point kind.
// It returns false if it did not compute anything.
func mapContiguous(z, x *array.View, f func(float64) float64) bool {
	k := x.Kind()
	if k.IsOptional() || !k.Equal(z.Kind()) {
		return false
	}
	src, ok := x.ContiguousBytes()
	if !ok {
		return false
	}
	dst, ok := z.ContiguousBytes()
	if !ok {
		return false
	}
	if len(src) == 0 {
		return true
	}
	switch k.Tag() {
	case kind.Float32:
		mapFloats(dtype.ToSlice[float32](dst), dtype.ToSlice[float32](src), f)
	case kind.Float64:
		mapFloats(dtype.ToSlice[float64](dst), dtype.ToSlice[float64](src), f)
	default:
		return false
	}
	return true
}

func mapFloats[T constraints.Float](dst, src []T, f func(float64) float64) {
	for i, x := range src {
		dst[i] = T(f(float64(x)))
	}
}
