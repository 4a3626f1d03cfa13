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
	"slices"

	"github.com/pkg/errors"
)

// Ragged is the layout of an array where every dimension has a variable extent.
//
// The rows of the outermost dimension are [Start, Stop). For every dimension d
// but the innermost, row i of dimension d spans the rows
// [Offsets[d][i], Offsets[d][i+1]) of dimension d+1. Rows of the innermost
// dimension are elements. Offsets tables are shared, never copied, by views.
type Ragged struct {
	Start, Stop int
	Offsets     [][]int
}

// NewRagged returns a layout whose outermost dimension has n rows.
func NewRagged(n int, offsets ...[]int) *Ragged {
	return &Ragged{Start: 0, Stop: n, Offsets: offsets}
}

// NDim returns the number of dimensions.
func (r *Ragged) NDim() int {
	return len(r.Offsets) + 1
}

// Span returns the range of rows of dimension d covered by the layout.
func (r *Ragged) Span(d int) (lo, hi int) {
	lo, hi = r.Start, r.Stop
	for _, tbl := range r.Offsets[:d] {
		lo, hi = tbl[lo], tbl[hi]
	}
	return lo, hi
}

// Leaves returns the range of element indices covered by the layout.
func (r *Ragged) Leaves() (lo, hi int) {
	return r.Span(len(r.Offsets))
}

// Row returns the range of rows of dimension d+1 spanned by row i of dimension d.
func (r *Ragged) Row(d, i int) (lo, hi int) {
	tbl := r.Offsets[d]
	return tbl[i], tbl[i+1]
}

func (r *Ragged) validate() error {
	if r.Start < 0 || r.Stop < r.Start {
		return errors.Errorf("invalid outer range [%d, %d)", r.Start, r.Stop)
	}
	lo, hi := r.Start, r.Stop
	for d, tbl := range r.Offsets {
		if hi >= len(tbl) {
			return errors.Errorf("offsets of dimension %d have %d entries but row %d is referenced", d, len(tbl), hi)
		}
		if tbl[lo] < 0 {
			return errors.Errorf("offsets of dimension %d start at a negative row %d", d, tbl[lo])
		}
		for i := lo; i < hi; i++ {
			if tbl[i+1] < tbl[i] {
				return errors.Errorf("offsets of dimension %d decrease at row %d: %d > %d", d, i, tbl[i], tbl[i+1])
			}
		}
		lo, hi = tbl[lo], tbl[hi]
	}
	return nil
}

// Normalize returns an equivalent layout starting at row 0 in every dimension.
// The tables of the result are fresh copies.
func (r *Ragged) Normalize() *Ragged {
	out := &Ragged{Start: 0, Stop: r.Stop - r.Start}
	lo, hi := r.Start, r.Stop
	for _, tbl := range r.Offsets {
		base := tbl[lo]
		norm := make([]int, hi-lo+1)
		for i := range norm {
			norm[i] = tbl[lo+i] - base
		}
		out.Offsets = append(out.Offsets, norm)
		lo, hi = tbl[lo], tbl[hi]
	}
	return out
}

// SameShape returns true if both layouts have the same nested extents.
func (r *Ragged) SameShape(other *Ragged) bool {
	if r.NDim() != other.NDim() {
		return false
	}
	a, b := r.Normalize(), other.Normalize()
	if a.Stop != b.Stop {
		return false
	}
	for d := range a.Offsets {
		if !slices.Equal(a.Offsets[d], b.Offsets[d]) {
			return false
		}
	}
	return true
}

// DropInner returns the layout without its innermost dimension.
// The rows of the innermost dimension of the result are the former
// innermost rows, that is the groups of elements.
func (r *Ragged) DropInner() *Ragged {
	return &Ragged{
		Start:   r.Start,
		Stop:    r.Stop,
		Offsets: r.Offsets[:len(r.Offsets)-1],
	}
}
