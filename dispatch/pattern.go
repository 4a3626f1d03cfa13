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

// Package dispatch selects and runs kernels given the kinds and shapes of
// their arguments.
package dispatch

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/gumath/kind"
)

// Pattern matches element kinds.
type Pattern interface {
	// Match returns true if the pattern accepts the kind.
	Match(k *kind.Kind) bool
	// String representation of the pattern.
	String() string

	// covers returns true if every kind matched by q is matched by the pattern.
	// Any and Exact operands are resolved by Covers before this is called.
	covers(q Pattern) bool
	// overlaps returns true if a kind could be matched by both the pattern and q.
	// Any and Exact operands are resolved by Overlaps before this is called.
	overlaps(q Pattern) bool
}

// Covers returns true if every kind matched by q is also matched by p.
func Covers(p, q Pattern) bool {
	if _, ok := p.(anyPattern); ok {
		return true
	}
	switch qq := q.(type) {
	case anyPattern:
		return false
	case exactPattern:
		return p.Match(qq.k)
	}
	if pp, ok := p.(exactPattern); ok {
		// An exact kind only covers the patterns matching it alone.
		if qq, ok := q.(oneOfPattern); ok && len(qq.tags) == 1 {
			return pp.k.Equal(kind.Of(qq.tags[0]))
		}
		return false
	}
	return p.covers(q)
}

// Overlaps returns true if at least one kind could be matched by both p and q.
// Record patterns are compared conservatively: Overlaps may report an overlap
// where no kind actually satisfies both patterns but never the opposite.
func Overlaps(p, q Pattern) bool {
	if _, ok := p.(anyPattern); ok {
		return true
	}
	if _, ok := q.(anyPattern); ok {
		return true
	}
	if pp, ok := p.(exactPattern); ok {
		return q.Match(pp.k)
	}
	if qq, ok := q.(exactPattern); ok {
		return p.Match(qq.k)
	}
	return p.overlaps(q)
}

type anyPattern struct{}

// Any matches every kind.
func Any() Pattern {
	return anyPattern{}
}

func (anyPattern) Match(*kind.Kind) bool { return true }
func (anyPattern) covers(Pattern) bool   { return true }
func (anyPattern) overlaps(Pattern) bool { return true }
func (anyPattern) String() string        { return "Any" }

type exactPattern struct {
	k *kind.Kind
}

// Exact matches kinds equal to k. Named kinds are only equal to themselves:
// Exact(Foo(2 * 2 * complex64)) does not match 2 * 2 * complex64 nor the
// other way around.
func Exact(k *kind.Kind) Pattern {
	return exactPattern{k: k}
}

func (p exactPattern) Match(k *kind.Kind) bool { return p.k.Equal(k) }
func (p exactPattern) covers(q Pattern) bool   { return Covers(p, q) }
func (p exactPattern) overlaps(q Pattern) bool { return Overlaps(p, q) }
func (p exactPattern) String() string          { return p.k.String() }

type oneOfPattern struct {
	name string
	tags []kind.Tag
}

// OneOf matches scalar kinds with one of the given tags.
func OneOf(tags ...kind.Tag) Pattern {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.String()
	}
	return oneOfPattern{
		name: "OneOf(" + strings.Join(names, ", ") + ")",
		tags: slices.Clone(tags),
	}
}

func namedOneOf(name string, tags ...kind.Tag) Pattern {
	return oneOfPattern{name: name, tags: tags}
}

// AnyFloat matches floating point scalars.
func AnyFloat() Pattern {
	return namedOneOf("AnyFloat", kind.Float32, kind.Float64)
}

// AnyInteger matches signed integer scalars.
func AnyInteger() Pattern {
	return namedOneOf("AnyInteger", kind.Int8, kind.Int16, kind.Int32, kind.Int64)
}

// AnyComplex matches complex scalars.
func AnyComplex() Pattern {
	return namedOneOf("AnyComplex", kind.Complex64, kind.Complex128)
}

func (p oneOfPattern) Match(k *kind.Kind) bool {
	return k.Tag().IsScalar() && slices.Contains(p.tags, k.Tag())
}

func (p oneOfPattern) covers(q Pattern) bool {
	qq, ok := q.(oneOfPattern)
	if !ok {
		return false
	}
	for _, tag := range qq.tags {
		if !slices.Contains(p.tags, tag) {
			return false
		}
	}
	return true
}

func (p oneOfPattern) overlaps(q Pattern) bool {
	qq, ok := q.(oneOfPattern)
	if !ok {
		return false
	}
	for _, tag := range qq.tags {
		if slices.Contains(p.tags, tag) {
			return true
		}
	}
	return false
}

func (p oneOfPattern) String() string { return p.name }

type optionalPattern struct {
	elem Pattern
}

// OptionalOf matches optional kinds whose payload matches elem.
func OptionalOf(elem Pattern) Pattern {
	return optionalPattern{elem: elem}
}

func (p optionalPattern) Match(k *kind.Kind) bool {
	return k.IsOptional() && p.elem.Match(k.Elem())
}

func (p optionalPattern) covers(q Pattern) bool {
	qq, ok := q.(optionalPattern)
	return ok && Covers(p.elem, qq.elem)
}

func (p optionalPattern) overlaps(q Pattern) bool {
	qq, ok := q.(optionalPattern)
	return ok && Overlaps(p.elem, qq.elem)
}

func (p optionalPattern) String() string { return "?" + p.elem.String() }

type hasFieldPattern struct {
	name string
	elem Pattern
}

// HasField matches records with a field called name whose kind matches elem.
// Other fields are ignored.
func HasField(name string, elem Pattern) Pattern {
	return hasFieldPattern{name: name, elem: elem}
}

func (p hasFieldPattern) Match(k *kind.Kind) bool {
	if k.Tag() != kind.Record {
		return false
	}
	f, ok := k.Field(p.name)
	return ok && p.elem.Match(f.Kind)
}

func (p hasFieldPattern) covers(q Pattern) bool {
	qq, ok := q.(hasFieldPattern)
	return ok && qq.name == p.name && Covers(p.elem, qq.elem)
}

func (p hasFieldPattern) overlaps(q Pattern) bool {
	switch qq := q.(type) {
	case hasFieldPattern:
		if qq.name != p.name {
			return true
		}
		return Overlaps(p.elem, qq.elem)
	case recordPattern:
		return slices.ContainsFunc(qq.fields, func(f Pattern) bool {
			return Overlaps(p.elem, f)
		})
	}
	return false
}

func (p hasFieldPattern) String() string {
	return fmt.Sprintf("{%s: %s, ...}", p.name, p.elem)
}

type recordPattern struct {
	fields []Pattern
}

// RecordOf matches records with exactly len(fields) fields where the kind of
// the i-th field matches fields[i]. Field names are ignored.
func RecordOf(fields ...Pattern) Pattern {
	return recordPattern{fields: slices.Clone(fields)}
}

func (p recordPattern) Match(k *kind.Kind) bool {
	if k.Tag() != kind.Record || len(k.Fields()) != len(p.fields) {
		return false
	}
	for i, f := range k.Fields() {
		if !p.fields[i].Match(f.Kind) {
			return false
		}
	}
	return true
}

func (p recordPattern) covers(q Pattern) bool {
	qq, ok := q.(recordPattern)
	if !ok || len(qq.fields) != len(p.fields) {
		return false
	}
	for i, f := range p.fields {
		if !Covers(f, qq.fields[i]) {
			return false
		}
	}
	return true
}

func (p recordPattern) overlaps(q Pattern) bool {
	switch qq := q.(type) {
	case hasFieldPattern:
		return qq.overlaps(p)
	case recordPattern:
		if len(qq.fields) != len(p.fields) {
			return false
		}
		for i, f := range p.fields {
			if !Overlaps(f, qq.fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (p recordPattern) String() string {
	fields := make([]string, len(p.fields))
	for i, f := range p.fields {
		fields[i] = f.String()
	}
	return "{" + strings.Join(fields, ", ") + "}"
}
