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

// Package kind describes the logical type of the elements stored in an array.
//
// A kind is an immutable tree: scalars are leaves, and records, optionals,
// named wrappers and fixed-shape blocks are the inner nodes. Kinds are the
// keys used by the dispatcher to select a kernel, so two kinds with the same
// byte layout but a different tree (for instance a quaternion and a named
// wrapper around a 2x2 complex block) are different kinds.
package kind

import (
	"slices"

	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
)

// Tag identifies the variant of a kind.
type Tag int

// Supported tags.
const (
	Invalid Tag = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Complex64
	Complex128
	Quaternion64
	Quaternion128
	String
	Record
	Optional
	Named
	Block
)

var tagNames = map[Tag]string{
	Invalid:       "invalid",
	Bool:          "bool",
	Int8:          "int8",
	Int16:         "int16",
	Int32:         "int32",
	Int64:         "int64",
	Float32:       "float32",
	Float64:       "float64",
	Complex64:     "complex64",
	Complex128:    "complex128",
	Quaternion64:  "quaternion64",
	Quaternion128: "quaternion128",
	String:        "string",
	Record:        "record",
	Optional:      "optional",
	Named:         "named",
	Block:         "block",
}

// String returns the name of the tag.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return tagNames[Invalid]
}

// IsScalar returns true if the tag is a leaf of a kind tree.
func (t Tag) IsScalar() bool {
	return t > Invalid && t <= String
}

// IsInteger returns true for signed integer tags.
func (t Tag) IsInteger() bool {
	return t >= Int8 && t <= Int64
}

// IsFloat returns true for floating point tags.
func (t Tag) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsComplex returns true for complex tags.
func (t Tag) IsComplex() bool {
	return t == Complex64 || t == Complex128
}

// IsQuaternion returns true for quaternion tags.
func (t Tag) IsQuaternion() bool {
	return t == Quaternion64 || t == Quaternion128
}

// DataType returns the backend data type of a scalar tag,
// or dtype.Invalid if the backend has no equivalent.
func (t Tag) DataType() dtype.DataType {
	switch t {
	case Bool:
		return dtype.Bool
	case Int32:
		return dtype.Int32
	case Int64:
		return dtype.Int64
	case Float32:
		return dtype.Float32
	case Float64:
		return dtype.Float64
	default:
		return dtype.Invalid
	}
}

// ParseTag returns the scalar tag given its name.
func ParseTag(name string) (Tag, error) {
	for tag, tagName := range tagNames {
		if tag.IsScalar() && tagName == name {
			return tag, nil
		}
	}
	return Invalid, errors.Errorf("unknown scalar kind %q", name)
}

type (
	// Kind is the descriptor of an element.
	Kind struct {
		tag    Tag
		name   string
		elem   *Kind
		dims   []int
		fields []Field

		size, align int
	}

	// Field of a record.
	Field struct {
		// Name of the field. Names are unique within a record.
		Name string
		// Kind of the field.
		Kind *Kind
		// Offset of the field in bytes from the start of the record.
		// Set by Record: ignored when passed to the constructor.
		Offset int
	}
)

var scalars = func() map[Tag]*Kind {
	m := make(map[Tag]*Kind)
	for tag := Bool; tag <= String; tag++ {
		k := &Kind{tag: tag}
		k.size, k.align = scalarLayout(tag)
		m[tag] = k
	}
	return m
}()

// Of returns the kind of a scalar tag.
// It panics if the tag is not a scalar tag.
func Of(tag Tag) *Kind {
	k, ok := scalars[tag]
	if !ok {
		panic(errors.Errorf("%s is not a scalar kind", tag))
	}
	return k
}

// OptionalOf wraps a kind to mark its values as possibly missing.
// Wrapping an optional kind returns the kind unchanged.
func OptionalOf(k *Kind) *Kind {
	if k.tag == Optional {
		return k
	}
	return &Kind{
		tag:   Optional,
		elem:  k,
		size:  k.size,
		align: k.align,
	}
}

// NamedOf returns a nominal kind wrapping a payload.
// A named kind has the layout of its payload but is never equal to it.
func NamedOf(name string, payload *Kind) *Kind {
	return &Kind{
		tag:   Named,
		name:  name,
		elem:  payload,
		size:  payload.size,
		align: payload.align,
	}
}

// BlockOf returns the kind of a fixed-shape sub-array.
func BlockOf(dims []int, elem *Kind) (*Kind, error) {
	if len(dims) == 0 {
		return nil, errors.Errorf("block of %s requires at least one dimension", elem)
	}
	if elem.HasOptional() {
		return nil, errors.Errorf("block element %s cannot contain optional values", elem)
	}
	n := 1
	for i, d := range dims {
		if d <= 0 {
			return nil, errors.Errorf("invalid block dimension at index %d: %d (must be > 0)", i, d)
		}
		n *= d
	}
	return &Kind{
		tag:   Block,
		elem:  elem,
		dims:  slices.Clone(dims),
		size:  n * elem.size,
		align: elem.align,
	}, nil
}

// RecordOf returns a record kind given its fields.
// Field offsets are computed from the natural alignment of each field.
func RecordOf(fields ...Field) (*Kind, error) {
	k := &Kind{tag: Record, align: 1}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Kind == nil {
			return nil, errors.Errorf("field %q has no kind", f.Name)
		}
		if seen[f.Name] {
			return nil, errors.Errorf("duplicate field %q in record", f.Name)
		}
		seen[f.Name] = true
		f.Offset = roundUp(k.size, f.Kind.align)
		k.size = f.Offset + f.Kind.size
		k.align = max(k.align, f.Kind.align)
		k.fields = append(k.fields, f)
	}
	k.size = roundUp(k.size, k.align)
	return k, nil
}

// MustRecordOf is like RecordOf but panics on error.
func MustRecordOf(fields ...Field) *Kind {
	k, err := RecordOf(fields...)
	if err != nil {
		panic(err)
	}
	return k
}

// F is a shortcut to build a field.
func F(name string, k *Kind) Field {
	return Field{Name: name, Kind: k}
}

// Tag returns the tag of the kind.
func (k *Kind) Tag() Tag {
	return k.tag
}

// Name returns the name of a named kind.
func (k *Kind) Name() string {
	return k.name
}

// Elem returns the payload of an optional, named or block kind.
func (k *Kind) Elem() *Kind {
	return k.elem
}

// Dims returns the dimensions of a block kind.
func (k *Kind) Dims() []int {
	return k.dims
}

// Fields returns the fields of a record kind.
func (k *Kind) Fields() []Field {
	return k.fields
}

// Field returns a field of a record given its name.
func (k *Kind) Field(name string) (Field, bool) {
	for _, f := range k.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsOptional returns true if values of the kind may be missing.
func (k *Kind) IsOptional() bool {
	return k.tag == Optional
}

// Size of an element in bytes.
func (k *Kind) Size() int {
	return k.size
}

// Align returns the required byte alignment of an element.
func (k *Kind) Align() int {
	return k.align
}

// Equal returns true if two kinds are identical.
// Named kinds are compared by name and payload.
func (k *Kind) Equal(other *Kind) bool {
	if k == other {
		return true
	}
	if k == nil || other == nil || k.tag != other.tag {
		return false
	}
	switch k.tag {
	case Optional:
		return k.elem.Equal(other.elem)
	case Named:
		return k.name == other.name && k.elem.Equal(other.elem)
	case Block:
		return slices.Equal(k.dims, other.dims) && k.elem.Equal(other.elem)
	case Record:
		if len(k.fields) != len(other.fields) {
			return false
		}
		for i, f := range k.fields {
			g := other.fields[i]
			if f.Name != g.Name || !f.Kind.Equal(g.Kind) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
