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
	"reflect"

	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
)

// Go values of elements are:
//   - bool, int8, int16, int32, int64, float32, float64, complex64, complex128
//     and string for scalars,
//   - nil for a missing optional value,
//   - map[string]any for records,
//   - nested []any for blocks and quaternions (a 2x2 complex block),
//   - the value of the payload for named kinds.
// Arrays are nested []any of element values.

func isList(rv reflect.Value) bool {
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	case reflect.Interface:
		return isList(rv.Elem())
	}
	return false
}

func unwrap(rv reflect.Value) reflect.Value {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv
}

func listDepth(rv reflect.Value) int {
	rv = unwrap(rv)
	if !isList(rv) {
		return 0
	}
	depth := 0
	for i := range rv.Len() {
		depth = max(depth, listDepth(rv.Index(i)))
	}
	return depth + 1
}

func arrayDepth(k *kind.Kind, val any) (int, error) {
	ndim := listDepth(reflect.ValueOf(val)) - k.ValueDepth()
	if ndim < 0 {
		return 0, errors.Errorf("value %v has fewer levels than required by %s", val, k)
	}
	return ndim, nil
}

// FromValue builds a dense array of elements of kind k from nested Go lists.
// The number of dimensions is the nesting depth of the value minus the depth
// required by the element kind. Lists at the same level must have the same length.
func FromValue(k *kind.Kind, val any) (*View, error) {
	ndim, err := arrayDepth(k, val)
	if err != nil {
		return nil, err
	}
	shape := make([]int, ndim)
	rv := reflect.ValueOf(val)
	for d := range shape {
		rv = unwrap(rv)
		shape[d] = rv.Len()
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	out, err := goAllocator.Dense(k, shape)
	if err != nil {
		return nil, err
	}
	n := 0
	if err := out.fillDense(reflect.ValueOf(val), 0, &n); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *View) fillDense(rv reflect.Value, d int, n *int) error {
	if d == len(v.shape) {
		off := *n * v.kind.Size()
		*n++
		return store(v.buf, v.slot(off), "", v.kind, off, unwrap(rv))
	}
	rv = unwrap(rv)
	if !isList(rv) || rv.Len() != v.shape[d] {
		return errors.Errorf("value is not rectangular: dimension %d should have %d elements", d, v.shape[d])
	}
	for i := range rv.Len() {
		if err := v.fillDense(rv.Index(i), d+1, n); err != nil {
			return err
		}
	}
	return nil
}

// FromRaggedValue builds a ragged array of elements of kind k from nested Go lists.
// Every dimension of the result has a variable extent.
func FromRaggedValue(k *kind.Kind, val any) (*View, error) {
	ndim, err := arrayDepth(k, val)
	if err != nil {
		return nil, err
	}
	if ndim == 0 {
		return nil, errors.Errorf("a ragged array requires at least one dimension")
	}
	root := unwrap(reflect.ValueOf(val))
	items := make([]reflect.Value, root.Len())
	for i := range items {
		items[i] = root.Index(i)
	}
	layout := NewRagged(len(items))
	for d := 0; d < ndim-1; d++ {
		tbl := []int{0}
		var next []reflect.Value
		for _, item := range items {
			item = unwrap(item)
			if !isList(item) {
				return nil, errors.Errorf("dimension %d: got %v but want a list", d+1, item)
			}
			for i := range item.Len() {
				next = append(next, item.Index(i))
			}
			tbl = append(tbl, len(next))
		}
		layout.Offsets = append(layout.Offsets, tbl)
		items = next
	}
	out, err := goAllocator.Ragged(k, layout)
	if err != nil {
		return nil, err
	}
	for j, item := range items {
		off := out.LeafOffset(j)
		if err := store(out.buf, out.slot(off), "", k, off, unwrap(item)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func store(b *Buffer, slot int, path string, k *kind.Kind, off int, rv reflect.Value) error {
	switch k.Tag() {
	case kind.Optional:
		if !rv.IsValid() {
			b.setValid(path, slot, false)
			return nil
		}
		b.setValid(path, slot, true)
		return store(b, slot, path, k.Elem(), off, rv)
	case kind.Named:
		return store(b, slot, path, k.Elem(), off, rv)
	case kind.Record:
		if rv.Kind() != reflect.Map {
			return errors.Errorf("got %v but want a map for record %s", rv, k)
		}
		for _, f := range k.Fields() {
			fv := unwrap(rv.MapIndex(reflect.ValueOf(f.Name)))
			if err := store(b, slot, kind.JoinPath(path, f.Name), f.Kind, off+f.Offset, fv); err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
		}
		return nil
	case kind.Block:
		return storeBlock(b, k.Dims(), k.Elem(), off, rv)
	case kind.Quaternion64, kind.Quaternion128:
		elem := kind.Of(kind.Complex64)
		if k.Tag() == kind.Quaternion128 {
			elem = kind.Of(kind.Complex128)
		}
		return storeBlock(b, []int{2, 2}, elem, off, rv)
	}
	if !rv.IsValid() {
		return errors.Errorf("missing value for non-optional kind %s", k)
	}
	return storeScalar(b, k.Tag(), off, rv)
}

func storeBlock(b *Buffer, dims []int, elem *kind.Kind, off int, rv reflect.Value) error {
	rv = unwrap(rv)
	if !isList(rv) || rv.Len() != dims[0] {
		return errors.Errorf("got %v but want a list of %d elements", rv, dims[0])
	}
	stride := NumElements(dims[1:]) * elem.Size()
	for i := range dims[0] {
		item := unwrap(rv.Index(i))
		var err error
		if len(dims) == 1 {
			err = store(b, 0, "", elem, off+i*stride, item)
		} else {
			err = storeBlock(b, dims[1:], elem, off+i*stride, item)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func toFloat(rv reflect.Value) (float64, error) {
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, errors.Errorf("cannot convert %v to a float", rv)
}

func toInt(rv reflect.Value) (int64, error) {
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint():
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, errors.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case rv.CanFloat():
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, errors.Errorf("cannot convert %v to an integer", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, errors.Errorf("%v overflows int64", f)
		}
		return int64(f), nil
	}
	return 0, errors.Errorf("cannot convert %v to an integer", rv)
}

func intRange(tag kind.Tag) (lo, hi int64) {
	switch tag {
	case kind.Int8:
		return math.MinInt8, math.MaxInt8
	case kind.Int16:
		return math.MinInt16, math.MaxInt16
	case kind.Int32:
		return math.MinInt32, math.MaxInt32
	}
	return math.MinInt64, math.MaxInt64
}

func storeScalar(b *Buffer, tag kind.Tag, off int, rv reflect.Value) error {
	switch {
	case tag == kind.Bool:
		if rv.Kind() != reflect.Bool {
			return errors.Errorf("cannot convert %v to a bool", rv)
		}
		b.SetBool(off, rv.Bool())
	case tag == kind.String:
		if rv.Kind() != reflect.String {
			return errors.Errorf("cannot convert %v to a string", rv)
		}
		b.SetString(off, rv.String())
	case tag.IsInteger():
		x, err := toInt(rv)
		if err != nil {
			return err
		}
		if lo, hi := intRange(tag); x < lo || x > hi {
			return errors.Errorf("%d overflows %s", x, tag)
		}
		b.SetInt(tag, off, x)
	case tag.IsFloat():
		x, err := toFloat(rv)
		if err != nil {
			return err
		}
		b.SetFloat(tag, off, x)
	case tag.IsComplex():
		if rv.CanComplex() {
			b.SetComplex(tag, off, rv.Complex())
			return nil
		}
		x, err := toFloat(rv)
		if err != nil {
			return err
		}
		b.SetComplex(tag, off, complex(x, 0))
	default:
		return errors.Errorf("cannot store a value of kind %s", tag)
	}
	return nil
}

// Value returns the content of the view as nested Go values.
func (v *View) Value() any {
	if v.ragged != nil {
		return v.raggedValue(0, v.ragged.Start, v.ragged.Stop)
	}
	return v.denseValue(0, v.offset)
}

func (v *View) denseValue(d, off int) any {
	if d == len(v.shape) {
		return load(v.buf, v.slot(off), v.maskPath, v.kind, off)
	}
	vals := make([]any, v.shape[d])
	for i := range vals {
		vals[i] = v.denseValue(d+1, off+i*v.strides[d])
	}
	return vals
}

func (v *View) raggedValue(d, lo, hi int) any {
	vals := make([]any, 0, hi-lo)
	for row := lo; row < hi; row++ {
		if d == len(v.ragged.Offsets) {
			off := v.LeafOffset(row)
			vals = append(vals, load(v.buf, v.slot(off), v.maskPath, v.kind, off))
			continue
		}
		clo, chi := v.ragged.Row(d, row)
		vals = append(vals, v.raggedValue(d+1, clo, chi))
	}
	return vals
}

func load(b *Buffer, slot int, path string, k *kind.Kind, off int) any {
	switch k.Tag() {
	case kind.Optional:
		if !b.valid(path, slot) {
			return nil
		}
		return load(b, slot, path, k.Elem(), off)
	case kind.Named:
		return load(b, slot, path, k.Elem(), off)
	case kind.Record:
		vals := make(map[string]any, len(k.Fields()))
		for _, f := range k.Fields() {
			vals[f.Name] = load(b, slot, kind.JoinPath(path, f.Name), f.Kind, off+f.Offset)
		}
		return vals
	case kind.Block:
		return loadBlock(b, k.Dims(), k.Elem(), off)
	case kind.Quaternion64:
		return loadBlock(b, []int{2, 2}, kind.Of(kind.Complex64), off)
	case kind.Quaternion128:
		return loadBlock(b, []int{2, 2}, kind.Of(kind.Complex128), off)
	case kind.Bool:
		return b.Bool(off)
	case kind.Int8:
		return b.Int8(off)
	case kind.Int16:
		return b.Int16(off)
	case kind.Int32:
		return b.Int32(off)
	case kind.Int64:
		return b.Int64(off)
	case kind.Float32:
		return b.Float32(off)
	case kind.Float64:
		return b.Float64(off)
	case kind.Complex64:
		return b.Complex64(off)
	case kind.Complex128:
		return b.Complex128(off)
	case kind.String:
		return b.StringAt(off)
	}
	return nil
}

func loadBlock(b *Buffer, dims []int, elem *kind.Kind, off int) any {
	stride := NumElements(dims[1:]) * elem.Size()
	vals := make([]any, dims[0])
	for i := range vals {
		if len(dims) == 1 {
			vals[i] = load(b, 0, "", elem, off+i*stride)
		} else {
			vals[i] = loadBlock(b, dims[1:], elem, off+i*stride)
		}
	}
	return vals
}
