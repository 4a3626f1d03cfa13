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
	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
)

// CopyElement copies the element of src at byte offset srcOff to the element
// of dst at byte offset dstOff. Validity bits and strings are copied with the
// bytes of the element.
func CopyElement(dst *View, dstOff int, src *View, srcOff int) {
	size := src.kind.Size()
	copy(dst.buf.data[dstOff:dstOff+size], src.buf.data[srcOff:srcOff+size])
	if src.kind.HasOptional() {
		srcSlot, dstSlot := src.slot(srcOff), dst.slot(dstOff)
		for _, path := range src.kind.OptionalPaths() {
			valid := src.buf.valid(kind.JoinPath(src.maskPath, path), srcSlot)
			dst.buf.setValid(kind.JoinPath(dst.maskPath, path), dstSlot, valid)
		}
	}
	if src.buf == dst.buf {
		return
	}
	for _, so := range src.kind.StringOffsets() {
		dst.buf.SetString(dstOff+so, src.buf.StringAt(srcOff+so))
	}
}

// Compact returns a contiguous copy of a view allocated with a.
// The elements of the copy are in the logical order of v.
func Compact(a Allocator, v *View) (*View, error) {
	out, err := AllocLike(a, v, v.kind)
	if err != nil {
		return nil, err
	}
	steps, err := CoIter(out, v)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot copy %s", v.Type())
	}
	for offs := range steps {
		CopyElement(out, offs[1], v, offs[0])
	}
	return out, nil
}
