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

package array

import (
	"math"
	"slices"

	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
)

type (
	// Allocator provides writable output views.
	// Buffers returned by an allocator are zeroed and all optional values are missing.
	Allocator interface {
		// Dense allocates a contiguous row-major array.
		Dense(k *kind.Kind, shape []int) (*View, error)
		// Ragged allocates an array with contiguous elements given a ragged layout.
		Ragged(k *kind.Kind, layout *Ragged) (*View, error)
	}

	// GoAllocator is an allocator where the memory is fully managed by the Go runtime.
	GoAllocator struct {
		maxBytes int
	}

	// AllocOption configures a GoAllocator.
	AllocOption func(*GoAllocator)
)

var _ Allocator = (*GoAllocator)(nil)

// WithMaxBytes limits the size of a single allocation.
// Requests above the limit fail with an *AllocationError.
func WithMaxBytes(n int) AllocOption {
	return func(a *GoAllocator) {
		a.maxBytes = n
	}
}

// NewGoAllocator returns a new Go allocator.
func NewGoAllocator(opts ...AllocOption) *GoAllocator {
	a := &GoAllocator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var goAllocator = NewGoAllocator()

// DefaultAllocator returns an allocator without limit using Go memory.
func DefaultAllocator() Allocator {
	return goAllocator
}

func (a *GoAllocator) newBuffer(k *kind.Kind, n int) (*Buffer, error) {
	if n < 0 {
		return nil, errors.Errorf("cannot allocate a negative number of elements %d", n)
	}
	if elSize := k.Size(); elSize > 0 && n > math.MaxInt/elSize {
		return nil, errors.Errorf("cannot allocate %d elements of %s: the size overflows", n, k)
	}
	size := n * k.Size()
	if a.maxBytes > 0 && size > a.maxBytes {
		return nil, &AllocationError{Bytes: size, Limit: a.maxBytes}
	}
	buf := NewBuffer(make([]byte, size))
	for _, path := range k.OptionalPaths() {
		buf.NewMask(path, n)
	}
	return buf, nil
}

// Dense allocates Go memory for a contiguous row-major array.
func (a *GoAllocator) Dense(k *kind.Kind, shape []int) (*View, error) {
	buf, err := a.newBuffer(k, NumElements(shape))
	if err != nil {
		return nil, err
	}
	return NewView(buf, k, 0, slices.Clone(shape), ContiguousStrides(shape, k.Size()))
}

// Ragged allocates Go memory for a ragged array.
// The layout is normalized: the offsets of the view do not alias the argument.
func (a *GoAllocator) Ragged(k *kind.Kind, layout *Ragged) (*View, error) {
	if err := layout.validate(); err != nil {
		return nil, &BoundsError{Type: k.String(), Err: err}
	}
	layout = layout.Normalize()
	_, n := layout.Leaves()
	buf, err := a.newBuffer(k, n)
	if err != nil {
		return nil, err
	}
	return NewRaggedView(buf, k, 0, layout)
}

// AllocLike allocates an array with the same shape as like but for elements of kind k.
func AllocLike(a Allocator, like *View, k *kind.Kind) (*View, error) {
	if like.ragged != nil {
		return a.Ragged(k, like.ragged)
	}
	return a.Dense(k, like.shape)
}
