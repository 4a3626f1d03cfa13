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

package dispatch

import (
	"strings"

	"github.com/gx-org/gumath/array"
)

// ShapeClass is a set of argument shapes accepted by a kernel.
type ShapeClass int

// Shape classes. Classes can be combined with |.
const (
	Scalar ShapeClass = 1 << iota
	Dense
	Ragged

	Array    = Dense | Ragged
	AnyShape = Scalar | Dense | Ragged
)

// ClassOf returns the shape class of a view.
func ClassOf(v *array.View) ShapeClass {
	switch {
	case v.IsScalar():
		return Scalar
	case v.IsRagged():
		return Ragged
	default:
		return Dense
	}
}

// Contains returns true if all the shapes of other are in c.
func (c ShapeClass) Contains(other ShapeClass) bool {
	return c&other == other
}

func (c ShapeClass) String() string {
	switch c {
	case AnyShape:
		return "any"
	case Array:
		return "array"
	}
	var names []string
	for _, cls := range []struct {
		c    ShapeClass
		name string
	}{
		{Scalar, "scalar"},
		{Dense, "dense"},
		{Ragged, "ragged"},
	} {
		if c&cls.c != 0 {
			names = append(names, cls.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

type (
	// Param is the pattern of one kernel argument.
	Param struct {
		Pattern Pattern
		Shape   ShapeClass
	}

	// Signature of a kernel: one parameter per argument.
	Signature struct {
		In []Param
	}
)

// P returns a parameter.
func P(p Pattern, shape ShapeClass) Param {
	return Param{Pattern: p, Shape: shape}
}

// Sig returns a signature given its parameters.
func Sig(params ...Param) Signature {
	return Signature{In: params}
}

// Match returns true if the arguments are accepted by the signature.
func (s Signature) Match(args []*array.View) bool {
	if len(args) != len(s.In) {
		return false
	}
	for i, p := range s.In {
		if !p.Shape.Contains(ClassOf(args[i])) || !p.Pattern.Match(args[i].Kind()) {
			return false
		}
	}
	return true
}

// Covers returns true if the signature accepts every argument list accepted by other.
func (s Signature) Covers(other Signature) bool {
	if len(s.In) != len(other.In) {
		return false
	}
	for i, p := range s.In {
		q := other.In[i]
		if !p.Shape.Contains(q.Shape) || !Covers(p.Pattern, q.Pattern) {
			return false
		}
	}
	return true
}

// Overlaps returns true if an argument list could be accepted by both signatures.
func (s Signature) Overlaps(other Signature) bool {
	if len(s.In) != len(other.In) {
		return false
	}
	for i, p := range s.In {
		q := other.In[i]
		if p.Shape&q.Shape == 0 || !Overlaps(p.Pattern, q.Pattern) {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	params := make([]string, len(s.In))
	for i, p := range s.In {
		params[i] = p.Pattern.String() + "@" + p.Shape.String()
	}
	return "(" + strings.Join(params, ", ") + ")"
}
