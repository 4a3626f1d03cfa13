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
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// View is a non-owning handle over a logically shaped array of elements.
//
// A dense view locates element (i0, ..., in) at byte
// offset + i0*strides[0] + ... + in*strides[n]. Strides may be negative
// (reversed views) or zero (broadcast). A ragged view locates element j of
// its innermost dimension at byte offset + j*stride.
type View struct {
	buf    *Buffer
	kind   *kind.Kind
	offset int

	shape   []int
	strides []int

	ragged *Ragged
	stride int

	// Validity bitmaps are indexed by slot: (offset - slotBase) / slotSize.
	// A field projection keeps the slot geometry of the record it comes from.
	maskPath string
	slotSize int
	slotBase int
}

// ContiguousStrides returns the row-major byte strides of a dense array.
func ContiguousStrides(shape []int, size int) []int {
	strides := make([]int, len(shape))
	stride := size
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

// NumElements returns the number of elements of a dense shape.
// It returns math.MaxInt if the number of elements overflows an int.
func NumElements(shape []int) int {
	if slices.Contains(shape, 0) {
		return 0
	}
	n := 1
	for _, d := range shape {
		if d > 0 && n > math.MaxInt/d {
			return math.MaxInt
		}
		n *= d
	}
	return n
}

// NewView returns a dense view over a buffer.
// It returns a *BoundsError if an element could be addressed outside of the buffer.
func NewView(buf *Buffer, k *kind.Kind, offset int, shape, strides []int) (*View, error) {
	v := &View{
		buf:      buf,
		kind:     k,
		offset:   offset,
		shape:    shape,
		strides:  strides,
		slotSize: k.Size(),
	}
	if err := v.checkDense(); err != nil {
		return nil, &BoundsError{Type: v.Type(), Err: err}
	}
	return v, nil
}

// NewRaggedView returns a ragged view over a buffer with contiguous elements.
// It returns a *BoundsError if the layout is invalid or an element would be
// addressed outside of the buffer.
func NewRaggedView(buf *Buffer, k *kind.Kind, offset int, layout *Ragged) (*View, error) {
	v := &View{
		buf:      buf,
		kind:     k,
		offset:   offset,
		ragged:   layout,
		stride:   k.Size(),
		slotSize: k.Size(),
	}
	if err := v.checkRagged(); err != nil {
		return nil, &BoundsError{Type: v.Type(), Err: err}
	}
	return v, nil
}

func (v *View) checkAlign(what string, x int) error {
	if align := v.kind.Align(); x%align != 0 {
		return errors.Errorf("%s %d is not a multiple of the alignment %d of %s", what, x, align, v.kind)
	}
	return nil
}

func (v *View) checkDense() error {
	if len(v.shape) != len(v.strides) {
		return errors.Errorf("shape %v and strides %v have different lengths", v.shape, v.strides)
	}
	var err error
	err = multierr.Append(err, v.checkAlign("offset", v.offset))
	empty, tooLarge := false, false
	size, n := v.kind.Size(), v.buf.Len()
	// Spans below and above the offset. Each dimension spans at most n bytes
	// so the sums cannot overflow.
	below, above := 0, 0
	for i, d := range v.shape {
		if d < 0 {
			err = multierr.Append(err, errors.Errorf("dimension %d has a negative extent %d", i, d))
			continue
		}
		if d == 0 {
			empty = true
		}
		stride := v.strides[i]
		err = multierr.Append(err, v.checkAlign(fmt.Sprintf("stride of dimension %d", i), stride))
		if stride == 0 || d <= 1 {
			continue
		}
		if d-1 > n/abs(stride) {
			tooLarge = true
			continue
		}
		if span := (d - 1) * stride; span < 0 {
			below -= span
		} else {
			above += span
		}
	}
	if err != nil || empty {
		return err
	}
	if tooLarge {
		return errors.Errorf("shape %v with strides %v spans more than the %d bytes of the buffer", v.shape, v.strides, n)
	}
	if v.offset < below || v.offset > n-size-above {
		return errors.Errorf("elements span bytes [%d, %d) but the buffer has %d bytes", v.offset-below, v.offset+above+size, n)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (v *View) checkRagged() error {
	if err := v.ragged.validate(); err != nil {
		return err
	}
	if err := v.checkAlign("offset", v.offset); err != nil {
		return err
	}
	lo, hi := v.ragged.Leaves()
	if lo == hi {
		return nil
	}
	start, end := v.offset+lo*v.stride, v.offset+(hi-1)*v.stride+v.kind.Size()
	if start < 0 || end > v.buf.Len() {
		return errors.Errorf("elements span bytes [%d, %d) but the buffer has %d bytes", start, end, v.buf.Len())
	}
	return nil
}

// Buffer returns the buffer of the view.
func (v *View) Buffer() *Buffer {
	return v.buf
}

// Kind returns the kind of the elements.
func (v *View) Kind() *kind.Kind {
	return v.kind
}

// Offset returns the byte offset of the first element.
func (v *View) Offset() int {
	return v.offset
}

// IsRagged returns true if the dimensions of the view have variable extents.
func (v *View) IsRagged() bool {
	return v.ragged != nil
}

// IsScalar returns true if the view has no dimension.
func (v *View) IsScalar() bool {
	return v.ragged == nil && len(v.shape) == 0
}

// Ragged returns the layout of a ragged view, or nil for a dense view.
func (v *View) Ragged() *Ragged {
	return v.ragged
}

// Shape returns the extents of a dense view.
func (v *View) Shape() []int {
	return v.shape
}

// Strides returns the byte strides of a dense view.
func (v *View) Strides() []int {
	return v.strides
}

// NDim returns the number of dimensions.
func (v *View) NDim() int {
	if v.ragged != nil {
		return v.ragged.NDim()
	}
	return len(v.shape)
}

// Len returns the extent of the outermost dimension.
func (v *View) Len() int {
	if v.ragged != nil {
		return v.ragged.Stop - v.ragged.Start
	}
	if len(v.shape) == 0 {
		return 1
	}
	return v.shape[0]
}

// Size returns the number of elements.
func (v *View) Size() int {
	if v.ragged != nil {
		lo, hi := v.ragged.Leaves()
		return hi - lo
	}
	return NumElements(v.shape)
}

// LeafOffset returns the byte offset of element j of a ragged view.
func (v *View) LeafOffset(j int) int {
	return v.offset + j*v.stride
}

// IsContiguous returns true if the elements are densely packed in logical order.
func (v *View) IsContiguous() bool {
	size := v.kind.Size()
	if v.ragged != nil {
		return v.stride == size
	}
	stride := size
	for i := len(v.shape) - 1; i >= 0; i-- {
		if v.shape[i] != 1 && v.strides[i] != stride {
			return false
		}
		stride *= v.shape[i]
	}
	return true
}

// ContiguousBytes returns the bytes of the elements of a contiguous view.
func (v *View) ContiguousBytes() ([]byte, bool) {
	if !v.IsContiguous() {
		return nil, false
	}
	start := v.offset
	if v.ragged != nil {
		lo, _ := v.ragged.Leaves()
		start = v.LeafOffset(lo)
	}
	return v.buf.data[start : start+v.Size()*v.kind.Size()], true
}

// Field returns a view over one field of the record elements.
// Validity of optional fields is preserved.
func (v *View) Field(name string) (*View, error) {
	if v.kind.Tag() != kind.Record {
		return nil, errors.Errorf("cannot select field %q: %s is not a record", name, v.kind)
	}
	f, ok := v.kind.Field(name)
	if !ok {
		return nil, errors.Errorf("record %s has no field %q", v.kind, name)
	}
	w := *v
	w.kind = f.Kind
	w.offset += f.Offset
	w.slotBase += f.Offset
	w.maskPath = kind.JoinPath(v.maskPath, name)
	return &w, nil
}

func (v *View) slot(off int) int {
	return (off - v.slotBase) / v.slotSize
}

// Valid returns true if the element at byte offset off holds a value.
// Elements of a non-optional kind are always valid.
func (v *View) Valid(off int) bool {
	if !v.kind.IsOptional() {
		return true
	}
	return v.buf.valid(v.maskPath, v.slot(off))
}

// SetValid sets the validity of the element at byte offset off.
func (v *View) SetValid(off int, valid bool) {
	if !v.kind.IsOptional() {
		return
	}
	v.buf.setValid(v.maskPath, v.slot(off), valid)
}

// Type returns a description of the type of the view, for example
// "2 * 3 * float64" or "var * var * ?int64".
func (v *View) Type() string {
	var s strings.Builder
	if v.ragged != nil {
		for range v.ragged.NDim() {
			s.WriteString("var * ")
		}
	} else {
		for _, d := range v.shape {
			fmt.Fprintf(&s, "%d * ", d)
		}
	}
	s.WriteString(v.kind.String())
	return s.String()
}

// String representation of the view.
func (v *View) String() string {
	return fmt.Sprintf("View[%s]", v.Type())
}
