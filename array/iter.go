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
	"iter"
	"slices"

	"github.com/pkg/errors"
)

// walk iterates over a dense index space in row-major order. Each operand k
// starts at byte offset bases[k] and moves by strides[k][d] along dimension d.
// The index and offset slices are reused between iterations.
func walk(shape []int, bases []int, strides [][]int, yield func(idx, offs []int) bool) {
	if NumElements(shape) == 0 {
		return
	}
	idx := make([]int, len(shape))
	offs := slices.Clone(bases)
	for {
		if !yield(idx, offs) {
			return
		}
		d := len(shape) - 1
		for ; d >= 0; d-- {
			idx[d]++
			for k := range offs {
				offs[k] += strides[k][d]
			}
			if idx[d] < shape[d] {
				break
			}
			for k := range offs {
				offs[k] -= strides[k][d] * shape[d]
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// Elements iterates over the elements of the view in logical row-major order.
// It yields the logical index of each element with its byte offset in the buffer.
// The sequence can be iterated over several times.
func (v *View) Elements() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if v.ragged != nil {
			lo, hi := v.ragged.Leaves()
			for j := lo; j < hi; j++ {
				if !yield(j-lo, v.LeafOffset(j)) {
					return
				}
			}
			return
		}
		i := 0
		walk(v.shape, []int{v.offset}, [][]int{v.strides}, func(_, offs []int) bool {
			ok := yield(i, offs[0])
			i++
			return ok
		})
	}
}

// Coords iterates over the elements of the view in logical row-major order.
// It yields the coordinates of each element with its byte offset in the buffer.
// The coordinate slice is reused between iterations.
func (v *View) Coords() iter.Seq2[[]int, int] {
	return func(yield func([]int, int) bool) {
		if v.ragged == nil {
			walk(v.shape, []int{v.offset}, [][]int{v.strides}, func(idx, offs []int) bool {
				return yield(idx, offs[0])
			})
			return
		}
		coords := make([]int, v.ragged.NDim())
		v.walkRagged(0, v.ragged.Start, v.ragged.Stop, coords, yield)
	}
}

func (v *View) walkRagged(d, lo, hi int, coords []int, yield func([]int, int) bool) bool {
	for row := lo; row < hi; row++ {
		coords[d] = row - lo
		if d == len(v.ragged.Offsets) {
			if !yield(coords, v.LeafOffset(row)) {
				return false
			}
			continue
		}
		clo, chi := v.ragged.Row(d, row)
		if !v.walkRagged(d+1, clo, chi, coords, yield) {
			return false
		}
	}
	return true
}

func broadcastable(extent, stride int) bool {
	return extent == 1 || stride == 0
}

// BroadcastShape returns the shape resulting from broadcasting dense views
// together. Shapes are aligned on their innermost dimension. A dimension of
// extent 1 or of stride 0 matches any extent.
func BroadcastShape(views ...*View) ([]int, error) {
	ndim := 0
	for _, v := range views {
		if v.ragged != nil {
			return nil, errors.Errorf("cannot broadcast ragged view %s", v.Type())
		}
		ndim = max(ndim, len(v.shape))
	}
	out := make([]int, ndim)
	for i := range out {
		fixed, flex := -1, 1
		for _, v := range views {
			d := len(v.shape) - ndim + i
			if d < 0 {
				continue
			}
			extent := v.shape[d]
			if broadcastable(extent, v.strides[d]) {
				flex = max(flex, extent)
				continue
			}
			if fixed >= 0 && fixed != extent {
				return nil, errors.Errorf("shapes not compatible for broadcasting: dimension %d has extents %d and %d", i, fixed, extent)
			}
			fixed = extent
		}
		out[i] = flex
		if fixed >= 0 {
			out[i] = fixed
		}
	}
	return out, nil
}

// broadcastStrides returns the strides to walk v along a broadcast shape.
func (v *View) broadcastStrides(shape []int) ([]int, error) {
	if len(v.shape) > len(shape) {
		return nil, errors.Errorf("cannot broadcast %s to %d dimensions", v.Type(), len(shape))
	}
	strides := make([]int, len(shape))
	lead := len(shape) - len(v.shape)
	for d, extent := range v.shape {
		switch {
		case extent == shape[lead+d]:
			strides[lead+d] = v.strides[d]
		case broadcastable(extent, v.strides[d]):
			strides[lead+d] = 0
		default:
			return nil, errors.Errorf("cannot broadcast %s to shape %v", v.Type(), shape)
		}
	}
	return strides, nil
}

// CoIter returns an iterator walking input views and one output view in
// lock-step. Each step yields the byte offsets of one element of every input
// followed by the byte offset of the output element. The offset slice is
// reused between iterations.
//
// A dense output is walked in row-major order and dense inputs are broadcast
// to its shape. A ragged output requires every input to be either a scalar or
// a ragged view with the same nested extents.
// All compatibility checks happen before the iterator is returned.
func CoIter(out *View, ins ...*View) (iter.Seq[[]int], error) {
	if out.ragged != nil {
		return coIterRagged(out, ins)
	}
	bases := make([]int, len(ins)+1)
	strides := make([][]int, len(ins)+1)
	for i, in := range ins {
		if in.ragged != nil {
			return nil, errors.Errorf("cannot iterate ragged input %s with dense output %s", in.Type(), out.Type())
		}
		s, err := in.broadcastStrides(out.shape)
		if err != nil {
			return nil, err
		}
		bases[i], strides[i] = in.offset, s
	}
	bases[len(ins)], strides[len(ins)] = out.offset, out.strides
	return func(yield func([]int) bool) {
		walk(out.shape, bases, strides, func(_, offs []int) bool {
			return yield(offs)
		})
	}, nil
}

func coIterRagged(out *View, ins []*View) (iter.Seq[[]int], error) {
	starts := make([]int, len(ins)+1)
	steps := make([]int, len(ins)+1)
	for i, in := range ins {
		if in.IsScalar() {
			starts[i] = in.offset
			continue
		}
		if in.ragged == nil || !in.ragged.SameShape(out.ragged) {
			return nil, errors.Errorf("cannot iterate input %s with ragged output %s: shapes differ", in.Type(), out.Type())
		}
		lo, _ := in.ragged.Leaves()
		starts[i], steps[i] = in.LeafOffset(lo), in.stride
	}
	lo, _ := out.ragged.Leaves()
	starts[len(ins)], steps[len(ins)] = out.LeafOffset(lo), out.stride
	n := out.Size()
	return func(yield func([]int) bool) {
		offs := slices.Clone(starts)
		for range n {
			if !yield(offs) {
				return
			}
			for k := range offs {
				offs[k] += steps[k]
			}
		}
	}, nil
}
