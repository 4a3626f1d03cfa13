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
	"encoding/binary"
	"math"

	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
)

var ne = binary.NativeEndian

// Bool reads a boolean at a byte offset.
func (b *Buffer) Bool(off int) bool { return b.data[off] != 0 }

// SetBool writes a boolean at a byte offset.
func (b *Buffer) SetBool(off int, x bool) {
	b.data[off] = 0
	if x {
		b.data[off] = 1
	}
}

// Int8 reads an int8 at a byte offset.
func (b *Buffer) Int8(off int) int8 { return int8(b.data[off]) }

// SetInt8 writes an int8 at a byte offset.
func (b *Buffer) SetInt8(off int, x int8) { b.data[off] = byte(x) }

// Int16 reads an int16 at a byte offset.
func (b *Buffer) Int16(off int) int16 { return int16(ne.Uint16(b.data[off:])) }

// SetInt16 writes an int16 at a byte offset.
func (b *Buffer) SetInt16(off int, x int16) { ne.PutUint16(b.data[off:], uint16(x)) }

// Int32 reads an int32 at a byte offset.
func (b *Buffer) Int32(off int) int32 { return int32(ne.Uint32(b.data[off:])) }

// SetInt32 writes an int32 at a byte offset.
func (b *Buffer) SetInt32(off int, x int32) { ne.PutUint32(b.data[off:], uint32(x)) }

// Int64 reads an int64 at a byte offset.
func (b *Buffer) Int64(off int) int64 { return int64(ne.Uint64(b.data[off:])) }

// SetInt64 writes an int64 at a byte offset.
func (b *Buffer) SetInt64(off int, x int64) { ne.PutUint64(b.data[off:], uint64(x)) }

// Float32 reads a float32 at a byte offset.
func (b *Buffer) Float32(off int) float32 { return math.Float32frombits(ne.Uint32(b.data[off:])) }

// SetFloat32 writes a float32 at a byte offset.
func (b *Buffer) SetFloat32(off int, x float32) { ne.PutUint32(b.data[off:], math.Float32bits(x)) }

// Float64 reads a float64 at a byte offset.
func (b *Buffer) Float64(off int) float64 { return math.Float64frombits(ne.Uint64(b.data[off:])) }

// SetFloat64 writes a float64 at a byte offset.
func (b *Buffer) SetFloat64(off int, x float64) { ne.PutUint64(b.data[off:], math.Float64bits(x)) }

// Complex64 reads a complex64 at a byte offset.
func (b *Buffer) Complex64(off int) complex64 {
	return complex(b.Float32(off), b.Float32(off+4))
}

// SetComplex64 writes a complex64 at a byte offset.
func (b *Buffer) SetComplex64(off int, x complex64) {
	b.SetFloat32(off, real(x))
	b.SetFloat32(off+4, imag(x))
}

// Complex128 reads a complex128 at a byte offset.
func (b *Buffer) Complex128(off int) complex128 {
	return complex(b.Float64(off), b.Float64(off+8))
}

// SetComplex128 writes a complex128 at a byte offset.
func (b *Buffer) SetComplex128(off int, x complex128) {
	b.SetFloat64(off, real(x))
	b.SetFloat64(off+8, imag(x))
}

// Int reads a signed integer of any width as an int64.
func (b *Buffer) Int(tag kind.Tag, off int) int64 {
	switch tag {
	case kind.Int8:
		return int64(b.Int8(off))
	case kind.Int16:
		return int64(b.Int16(off))
	case kind.Int32:
		return int64(b.Int32(off))
	case kind.Int64:
		return b.Int64(off)
	}
	panic(errors.Errorf("%s is not an integer kind", tag))
}

// SetInt writes an int64 as a signed integer of the given width.
func (b *Buffer) SetInt(tag kind.Tag, off int, x int64) {
	switch tag {
	case kind.Int8:
		b.SetInt8(off, int8(x))
	case kind.Int16:
		b.SetInt16(off, int16(x))
	case kind.Int32:
		b.SetInt32(off, int32(x))
	case kind.Int64:
		b.SetInt64(off, x)
	default:
		panic(errors.Errorf("%s is not an integer kind", tag))
	}
}

// Float reads a float of any width as a float64.
func (b *Buffer) Float(tag kind.Tag, off int) float64 {
	switch tag {
	case kind.Float32:
		return float64(b.Float32(off))
	case kind.Float64:
		return b.Float64(off)
	}
	panic(errors.Errorf("%s is not a float kind", tag))
}

// SetFloat writes a float64 as a float of the given width.
func (b *Buffer) SetFloat(tag kind.Tag, off int, x float64) {
	switch tag {
	case kind.Float32:
		b.SetFloat32(off, float32(x))
	case kind.Float64:
		b.SetFloat64(off, x)
	default:
		panic(errors.Errorf("%s is not a float kind", tag))
	}
}

// Complex reads a complex of any width as a complex128.
func (b *Buffer) Complex(tag kind.Tag, off int) complex128 {
	switch tag {
	case kind.Complex64:
		return complex128(b.Complex64(off))
	case kind.Complex128:
		return b.Complex128(off)
	}
	panic(errors.Errorf("%s is not a complex kind", tag))
}

// SetComplex writes a complex128 as a complex of the given width.
func (b *Buffer) SetComplex(tag kind.Tag, off int, x complex128) {
	switch tag {
	case kind.Complex64:
		b.SetComplex64(off, complex64(x))
	case kind.Complex128:
		b.SetComplex128(off, x)
	default:
		panic(errors.Errorf("%s is not a complex kind", tag))
	}
}
