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

// Package array provides non-owning views over strided and ragged memory.
//
// A Buffer holds the bytes of an array together with its side tables: the
// strings referenced by string slots and the validity bitmaps of optional
// values. A View interprets a Buffer as a logically shaped array of elements
// of a given kind. Views never own their buffer and never copy data: slicing,
// indexing and field projections return new views over the same buffer.
package array

import "github.com/pkg/errors"

type (
	// Buffer is the backing storage of one or more views.
	Buffer struct {
		data    []byte
		strings []string
		masks   map[string]*Bitmap
	}

	// Bitmap stores one validity bit per element slot. 1 means valid, 0 missing.
	Bitmap struct {
		bits []byte
		n    int
	}
)

// NewBuffer returns a buffer wrapping data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the size of the buffer in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the raw bytes of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Mask returns the validity bitmap of an optional path, or nil if the buffer
// has no bitmap for the path in which case all values are valid.
func (b *Buffer) Mask(path string) *Bitmap {
	return b.masks[path]
}

// NewMask creates a bitmap for an optional path with all slots missing.
func (b *Buffer) NewMask(path string, slots int) *Bitmap {
	if b.masks == nil {
		b.masks = make(map[string]*Bitmap)
	}
	m := NewBitmap(slots)
	b.masks[path] = m
	return m
}

func (b *Buffer) valid(path string, slot int) bool {
	m := b.masks[path]
	if m == nil {
		return true
	}
	return m.Valid(slot)
}

func (b *Buffer) setValid(path string, slot int, valid bool) {
	m := b.masks[path]
	if m == nil {
		if valid {
			return
		}
		panic(errors.Errorf("buffer has no validity bitmap for path %q", path))
	}
	m.Set(slot, valid)
}

// StringAt returns the string referenced by the string slot at byte offset off.
func (b *Buffer) StringAt(off int) string {
	idx := b.Int64(off)
	if idx <= 0 || int(idx) > len(b.strings) {
		return ""
	}
	return b.strings[idx-1]
}

// SetString stores s in the string table and writes its reference
// in the string slot at byte offset off.
func (b *Buffer) SetString(off int, s string) {
	if s == "" {
		b.SetInt64(off, 0)
		return
	}
	b.strings = append(b.strings, s)
	b.SetInt64(off, int64(len(b.strings)))
}

// NewBitmap returns a bitmap of n slots, all missing.
func NewBitmap(n int) *Bitmap {
	return &Bitmap{bits: make([]byte, (n+7)/8), n: n}
}

// Len returns the number of slots in the bitmap.
func (m *Bitmap) Len() int {
	return m.n
}

// Valid returns true if the slot holds a value.
func (m *Bitmap) Valid(i int) bool {
	return m.bits[i>>3]&(1<<(i&7)) != 0
}

// Set the validity of a slot.
func (m *Bitmap) Set(i int, valid bool) {
	if valid {
		m.bits[i>>3] |= 1 << (i & 7)
	} else {
		m.bits[i>>3] &^= 1 << (i & 7)
	}
}
