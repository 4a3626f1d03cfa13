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

	"github.com/pkg/errors"
)

// Range selects indices along one dimension with the semantics of a Python
// slice: negative indices count from the end and a negative step walks the
// dimension backward.
type Range struct {
	Start, Stop       int
	Step              int
	HasStart, HasStop bool
}

// Full selects a whole dimension.
func Full() Range {
	return Range{Step: 1}
}

// Every selects a whole dimension with a step, like [::step].
func Every(step int) Range {
	return Range{Step: step}
}

// Span selects [start:stop].
func Span(start, stop int) Range {
	return Range{Start: start, Stop: stop, Step: 1, HasStart: true, HasStop: true}
}

// R selects [start:stop:step].
func R(start, stop, step int) Range {
	return Range{Start: start, Stop: stop, Step: step, HasStart: true, HasStop: true}
}

// Indices returns the first index, the step and the number of indices
// selected by the range in a dimension of extent n.
func (r Range) Indices(n int) (start, step, length int, err error) {
	step = r.Step
	if step == 0 {
		return 0, 0, 0, errors.Errorf("slice step cannot be zero")
	}
	start, stop := 0, math.MaxInt
	if step < 0 {
		start, stop = math.MaxInt, math.MinInt
	}
	if r.HasStart {
		start = r.Start
	}
	if r.HasStop {
		stop = r.Stop
	}
	start = clampIndex(start, n, step)
	stop = clampIndex(stop, n, step)
	switch {
	case step < 0 && stop < start:
		length = (start-stop-1)/(-step) + 1
	case step > 0 && start < stop:
		length = (stop-start-1)/step + 1
	}
	return start, step, length, nil
}

func clampIndex(i, n, step int) int {
	if i < 0 {
		if i < -n {
			if step < 0 {
				return -1
			}
			return 0
		}
		return i + n
	}
	if i >= n {
		if step < 0 {
			return n - 1
		}
		return n
	}
	return i
}

// Slice returns a view selecting a range of indices in the leading dimensions.
// Dimensions without a range are kept whole. No data is copied.
func (v *View) Slice(ranges ...Range) (*View, error) {
	if len(ranges) > v.NDim() {
		return nil, errors.Errorf("%d ranges given to slice a view with %d dimensions", len(ranges), v.NDim())
	}
	if v.ragged != nil {
		return v.sliceRagged(ranges)
	}
	w := *v
	w.shape = slices.Clone(v.shape)
	w.strides = slices.Clone(v.strides)
	for i, r := range ranges {
		start, step, length, err := r.Indices(v.shape[i])
		if err != nil {
			return nil, errors.Wrapf(err, "dimension %d", i)
		}
		if length > 0 {
			w.offset += start * v.strides[i]
		}
		w.shape[i] = length
		w.strides[i] = v.strides[i] * step
	}
	return &w, nil
}

func (v *View) sliceRagged(ranges []Range) (*View, error) {
	if len(ranges) == 0 {
		return v, nil
	}
	for i, r := range ranges[1:] {
		if r != Full() {
			return nil, errors.Errorf("ragged views can only be sliced along their outermost dimension: dimension %d has range %v", i+1, r)
		}
	}
	start, step, length, err := ranges[0].Indices(v.Len())
	if err != nil {
		return nil, err
	}
	if step != 1 && length > 1 {
		return nil, errors.Errorf("ragged views cannot be sliced with step %d", step)
	}
	w := *v
	w.ragged = &Ragged{
		Start:   v.ragged.Start + start,
		Stop:    v.ragged.Start + start + length,
		Offsets: v.ragged.Offsets,
	}
	return &w, nil
}

// Index returns the view of the i-th row of the outermost dimension.
// Negative indices count from the end.
func (v *View) Index(i int) (*View, error) {
	n := v.Len()
	if v.IsScalar() {
		return nil, errors.Errorf("cannot index a scalar view")
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, errors.Errorf("index %d out of range for dimension of extent %d", i, n)
	}
	w := *v
	if v.ragged == nil {
		w.offset += i * v.strides[0]
		w.shape = v.shape[1:]
		w.strides = v.strides[1:]
		return &w, nil
	}
	row := v.ragged.Start + i
	if v.ragged.NDim() == 1 {
		w.ragged = nil
		w.offset = v.LeafOffset(row)
		w.shape, w.strides = nil, nil
		return &w, nil
	}
	lo, hi := v.ragged.Row(0, row)
	w.ragged = &Ragged{Start: lo, Stop: hi, Offsets: v.ragged.Offsets[1:]}
	return &w, nil
}
