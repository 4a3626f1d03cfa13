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

package kind

import (
	"fmt"
	"strings"

	"github.com/gx-org/backend/dtype"
)

// stringSlotSize is the size of the slot holding the index of a string
// in the string table of a buffer.
const stringSlotSize = 8

func scalarLayout(tag Tag) (size, align int) {
	if dt := tag.DataType(); dt != dtype.Invalid {
		size = dtype.Sizeof(dt)
		return size, size
	}
	switch tag {
	case Int8:
		return 1, 1
	case Int16:
		return 2, 2
	case Complex64:
		return 8, 4
	case Complex128:
		return 16, 8
	case Quaternion64:
		return 32, 4
	case Quaternion128:
		return 64, 8
	case String:
		return stringSlotSize, stringSlotSize
	}
	return 0, 1
}

// ComponentSize returns the size in bytes of one real component of a float,
// complex or quaternion kind.
func (k *Kind) ComponentSize() int {
	switch k.tag {
	case Float32, Complex64, Quaternion64:
		return 4
	case Float64, Complex128, Quaternion128:
		return 8
	}
	return 0
}

// HasOptional returns true if the kind or one of its record fields is optional.
func (k *Kind) HasOptional() bool {
	return len(k.OptionalPaths()) > 0
}

// OptionalPaths returns the paths of all the optional values in an element.
// The empty path designates the element itself. Record fields are joined with
// a dot, for example "value" or "point.x".
func (k *Kind) OptionalPaths() []string {
	var paths []string
	k.walkOptional("", &paths)
	return paths
}

func (k *Kind) walkOptional(prefix string, paths *[]string) {
	switch k.tag {
	case Optional:
		*paths = append(*paths, prefix)
		k.elem.walkOptional(prefix, paths)
	case Named:
		k.elem.walkOptional(prefix, paths)
	case Record:
		for _, f := range k.fields {
			f.Kind.walkOptional(JoinPath(prefix, f.Name), paths)
		}
	}
}

// JoinPath joins a field name to a path.
func JoinPath(prefix, name string) string {
	if name == "" {
		return prefix
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// StringOffsets returns the byte offsets of all the string slots within an element.
func (k *Kind) StringOffsets() []int {
	var offsets []int
	k.walkStrings(0, &offsets)
	return offsets
}

func (k *Kind) walkStrings(base int, offsets *[]int) {
	switch k.tag {
	case String:
		*offsets = append(*offsets, base)
	case Optional, Named:
		k.elem.walkStrings(base, offsets)
	case Record:
		for _, f := range k.fields {
			f.Kind.walkStrings(base+f.Offset, offsets)
		}
	case Block:
		n := k.size / k.elem.size
		for i := range n {
			k.elem.walkStrings(base+i*k.elem.size, offsets)
		}
	}
}

// ValueDepth returns the number of list levels used by the Go value of a
// single element. Blocks are represented by nested lists, as are quaternions
// which are 2x2 complex blocks.
func (k *Kind) ValueDepth() int {
	switch k.tag {
	case Quaternion64, Quaternion128:
		return 2
	case Block:
		return len(k.dims) + k.elem.ValueDepth()
	case Named, Optional:
		return k.elem.ValueDepth()
	}
	return 0
}

// String representation of the kind.
func (k *Kind) String() string {
	if k == nil {
		return "<nil>"
	}
	switch k.tag {
	case Optional:
		return "?" + k.elem.String()
	case Named:
		return fmt.Sprintf("%s(%s)", k.name, k.elem.String())
	case Block:
		var s strings.Builder
		for _, d := range k.dims {
			fmt.Fprintf(&s, "%d * ", d)
		}
		s.WriteString(k.elem.String())
		return s.String()
	case Record:
		fields := make([]string, len(k.fields))
		for i, f := range k.fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Kind.String())
		}
		return "{" + strings.Join(fields, ", ") + "}"
	default:
		return k.tag.String()
	}
}
