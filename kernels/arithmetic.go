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
)

type (
	// elementFunc computes one output element from one element of each argument.
	elementFunc func(in []*array.Buffer, offs []int, out *array.Buffer, outOff int)

	arithmeticOp struct {
		name  string
		real  func(x, y float64) float64
		cmplx func(x, y complex128) complex128
	}
)

var arithmeticOps = []arithmeticOp{
	{
		name:  "add",
		real:  func(x, y float64) float64 { return x + y },
		cmplx: func(x, y complex128) complex128 { return x + y },
	},
	{
		name:  "subtract",
		real:  func(x, y float64) float64 { return x - y },
		cmplx: func(x, y complex128) complex128 { return x - y },
	},
	{
		name:  "multiply",
		real:  func(x, y float64) float64 { return x * y },
		cmplx: func(x, y complex128) complex128 { return x * y },
	},
	{
		name:  "divide",
		real:  func(x, y float64) float64 { return x / y },
		cmplx: func(x, y complex128) complex128 { return x / y },
	},
}

var arithmeticTags = []kind.Tag{kind.Float32, kind.Float64, kind.Complex64, kind.Complex128}

func (op arithmeticOp) element(tag kind.Tag) elementFunc {
	if tag.IsComplex() {
		return func(in []*array.Buffer, offs []int, out *array.Buffer, outOff int) {
			out.SetComplex(tag, outOff, op.cmplx(in[0].Complex(tag, offs[0]), in[1].Complex(tag, offs[1])))
		}
	}
	return func(in []*array.Buffer, offs []int, out *array.Buffer, outOff int) {
		out.SetFloat(tag, outOff, op.real(in[0].Float(tag, offs[0]), in[1].Float(tag, offs[1])))
	}
}

func arithmeticKernels() []*dispatch.Kernel {
	var ks []*dispatch.Kernel
	for _, op := range arithmeticOps {
		for _, tag := range arithmeticTags {
			ks = append(ks, binaryKernels(op.name, tag, op.element(tag))...)
		}
	}
	return ks
}

// binaryKernels returns the kernels of a binary operation for every
// combination of optional and non-optional arguments of kind tag.
func binaryKernels(op string, tag kind.Tag, f elementFunc) []*dispatch.Kernel {
	exact := dispatch.Exact(kind.Of(tag))
	optional := dispatch.OptionalOf(exact)
	fn := elementwise(tag, f)
	var ks []*dispatch.Kernel
	for _, variant := range []struct {
		suffix string
		x, y   dispatch.Pattern
	}{
		{suffix: "", x: exact, y: exact},
		{suffix: "_optional_x", x: optional, y: exact},
		{suffix: "_optional_y", x: exact, y: optional},
		{suffix: "_optional", x: optional, y: optional},
	} {
		ks = append(ks, &dispatch.Kernel{
			Op:   op,
			Name: op + "_" + tag.String() + variant.suffix,
			Sig: dispatch.Sig(
				dispatch.P(variant.x, dispatch.AnyShape),
				dispatch.P(variant.y, dispatch.AnyShape),
			),
			Fn: fn,
		})
	}
	return ks
}

// elementwise returns a kernel function applying f to co-iterated arguments.
// An output element is valid if and only if all the input elements are valid.
func elementwise(tag kind.Tag, f elementFunc) dispatch.Func {
	return func(alloc array.Allocator, args []*array.View) (*array.View, error) {
		z, err := allocBroadcast(alloc, outputKind(tag, args...), args)
		if err != nil {
			return nil, err
		}
		steps, err := array.CoIter(z, args...)
		if err != nil {
			return nil, err
		}
		in := make([]*array.Buffer, len(args))
		for i, arg := range args {
			in[i] = arg.Buffer()
		}
		out := z.Buffer()
		n := len(args)
		for offs := range steps {
			if !allValid(args, offs) {
				continue
			}
			z.SetValid(offs[n], true)
			f(in, offs, out, offs[n])
		}
		return z, nil
	}
}
