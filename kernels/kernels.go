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

// Package kernels implements the kernels of the gumath operations.
package kernels

import (
	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/kind"
)

// All returns every kernel of the package.
func All() []*dispatch.Kernel {
	var ks []*dispatch.Kernel
	for _, family := range [][]*dispatch.Kernel{
		unaryKernels(),
		arithmeticKernels(),
		quaternionKernels(),
		copyKernels(),
		countKernels(),
		graphKernels(),
	} {
		ks = append(ks, family...)
	}
	return ks
}

// Register all the kernels of the package to a registry.
func Register(r *dispatch.Registry) error {
	return r.RegisterAll(All()...)
}

// valueTag returns the tag of the payload of a possibly optional kind.
func valueTag(k *kind.Kind) kind.Tag {
	if k.IsOptional() {
		return k.Elem().Tag()
	}
	return k.Tag()
}

// outputKind returns the kind of a scalar output, optional if any argument is.
func outputKind(tag kind.Tag, args ...*array.View) *kind.Kind {
	out := kind.Of(tag)
	for _, arg := range args {
		if arg.Kind().IsOptional() {
			return kind.OptionalOf(out)
		}
	}
	return out
}

// readReal reads an integer or floating point scalar as a float64.
func readReal(b *array.Buffer, tag kind.Tag, off int) float64 {
	if tag.IsInteger() {
		return float64(b.Int(tag, off))
	}
	return b.Float(tag, off)
}

// allValid returns true if all the elements at the given offsets are valid.
// offs has one offset per argument, in the same order.
func allValid(args []*array.View, offs []int) bool {
	for i, arg := range args {
		if !arg.Valid(offs[i]) {
			return false
		}
	}
	return true
}

// allocBroadcast allocates the output of an elementwise kernel with several
// arguments. Dense arguments are broadcast together. Ragged arguments must
// have the same nested extents, other arguments being scalars.
func allocBroadcast(alloc array.Allocator, k *kind.Kind, args []*array.View) (*array.View, error) {
	var like *array.View
	for _, arg := range args {
		if arg.IsRagged() {
			like = arg
			break
		}
	}
	if like == nil {
		shape, err := array.BroadcastShape(args...)
		if err != nil {
			return nil, dispatch.InvalidArgument("%v", err)
		}
		return alloc.Dense(k, shape)
	}
	for _, arg := range args {
		if arg.IsScalar() {
			continue
		}
		if !arg.IsRagged() || !arg.Ragged().SameShape(like.Ragged()) {
			return nil, dispatch.InvalidArgument("cannot combine %s with %s: ragged shapes differ", arg.Type(), like.Type())
		}
	}
	return array.AllocLike(alloc, like, k)
}
