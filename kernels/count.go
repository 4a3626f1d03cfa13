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

// CountKind is the kind of the elements returned by count_valid_missing.
var CountKind = kind.MustRecordOf(
	kind.F("valid", kind.Of(kind.Int64)),
	kind.F("missing", kind.Of(kind.Int64)),
)

func countKernels() []*dispatch.Kernel {
	optional := dispatch.OptionalOf(dispatch.Any())
	return []*dispatch.Kernel{
		{
			Op:   "count_valid_missing",
			Name: "count_valid_missing_optional",
			Sig:  dispatch.Sig(dispatch.P(optional, dispatch.Array)),
			Fn:   countValidMissing,
		},
		{
			Op:   "count_valid_missing",
			Name: "count_valid_missing_record",
			Sig:  dispatch.Sig(dispatch.P(dispatch.HasField("value", optional), dispatch.Array)),
			Fn:   countValidMissing,
		},
	}
}

// countValidMissing counts the valid and the missing values of every group of
// elements along the innermost dimension.
func countValidMissing(alloc array.Allocator, args []*array.View) (*array.View, error) {
	x := args[0]
	if x.Kind().Tag() == kind.Record {
		var err error
		if x, err = x.Field("value"); err != nil {
			return nil, err
		}
	}
	if x.IsRagged() {
		return countRagged(alloc, x)
	}
	return countDense(alloc, x)
}

type counter struct {
	out            *array.View
	valid, missing int
}

func (c counter) add(group int, valid bool) {
	b := c.out.Buffer()
	off := group * CountKind.Size()
	field := c.missing
	if valid {
		field = c.valid
	}
	b.SetInt64(off+field, b.Int64(off+field)+1)
}

func newCounter(out *array.View) counter {
	valid, _ := CountKind.Field("valid")
	missing, _ := CountKind.Field("missing")
	return counter{out: out, valid: valid.Offset, missing: missing.Offset}
}

func countDense(alloc array.Allocator, x *array.View) (*array.View, error) {
	shape := x.Shape()
	z, err := alloc.Dense(CountKind, shape[:len(shape)-1])
	if err != nil {
		return nil, err
	}
	inner := shape[len(shape)-1]
	c := newCounter(z)
	for i, off := range x.Elements() {
		c.add(i/inner, x.Valid(off))
	}
	return z, nil
}

func countRagged(alloc array.Allocator, x *array.View) (*array.View, error) {
	layout := x.Ragged()
	if layout.NDim() == 1 {
		z, err := alloc.Dense(CountKind, nil)
		if err != nil {
			return nil, err
		}
		c := newCounter(z)
		for _, off := range x.Elements() {
			c.add(0, x.Valid(off))
		}
		return z, nil
	}
	z, err := alloc.Ragged(CountKind, layout.DropInner())
	if err != nil {
		return nil, err
	}
	c := newCounter(z)
	d := layout.NDim() - 2
	lo, hi := layout.Span(d)
	for row := lo; row < hi; row++ {
		start, stop := layout.Row(d, row)
		for j := start; j < stop; j++ {
			c.add(row-lo, x.Valid(x.LeafOffset(j)))
		}
	}
	return z, nil
}
