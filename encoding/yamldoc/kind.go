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

// Package yamldoc reads and writes views as YAML documents.
//
// A kind is written either as the name of a scalar kind, optionally prefixed
// with ? (for example float64 or ?int64), or as a mapping:
//
//	optional: <kind>
//	record: [{name: <name>, kind: <kind>}, ...]
//	named: <name>
//	of: <kind>
//	block: [<dim>, ...]
//	of: <kind>
package yamldoc

import (
	"strings"

	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	// KindSpec is the YAML representation of a kind.
	KindSpec struct {
		Scalar   string      `yaml:"-"`
		Optional *KindSpec   `yaml:"optional,omitempty"`
		Record   []FieldSpec `yaml:"record,omitempty"`
		Named    string      `yaml:"named,omitempty"`
		Block    []int       `yaml:"block,omitempty,flow"`
		Of       *KindSpec   `yaml:"of,omitempty"`
	}

	// FieldSpec is the YAML representation of a record field.
	FieldSpec struct {
		Name string   `yaml:"name"`
		Kind KindSpec `yaml:"kind"`
	}

	plainKindSpec KindSpec
)

// UnmarshalYAML reads a kind given either as a scalar name or as a mapping.
func (s *KindSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&s.Scalar)
	}
	return node.Decode((*plainKindSpec)(s))
}

// MarshalYAML writes scalar kinds as their name.
func (s KindSpec) MarshalYAML() (any, error) {
	if s.Scalar != "" {
		return s.Scalar, nil
	}
	return plainKindSpec(s), nil
}

// Kind returns the kind described by the specification.
func (s *KindSpec) Kind() (*kind.Kind, error) {
	switch {
	case s.Scalar != "":
		name, optional := strings.CutPrefix(s.Scalar, "?")
		tag, err := kind.ParseTag(name)
		if err != nil {
			return nil, err
		}
		k := kind.Of(tag)
		if optional {
			k = kind.OptionalOf(k)
		}
		return k, nil
	case s.Optional != nil:
		elem, err := s.Optional.Kind()
		if err != nil {
			return nil, err
		}
		return kind.OptionalOf(elem), nil
	case s.Record != nil:
		fields := make([]kind.Field, len(s.Record))
		for i, f := range s.Record {
			k, err := f.Kind.Kind()
			if err != nil {
				return nil, errors.Wrapf(err, "field %s", f.Name)
			}
			fields[i] = kind.F(f.Name, k)
		}
		return kind.RecordOf(fields...)
	case s.Named != "":
		elem, err := s.of()
		if err != nil {
			return nil, errors.Wrapf(err, "named kind %s", s.Named)
		}
		return kind.NamedOf(s.Named, elem), nil
	case s.Block != nil:
		elem, err := s.of()
		if err != nil {
			return nil, errors.Wrapf(err, "block %v", s.Block)
		}
		return kind.BlockOf(s.Block, elem)
	}
	return nil, errors.Errorf("empty kind specification")
}

func (s *KindSpec) of() (*kind.Kind, error) {
	if s.Of == nil {
		return nil, errors.Errorf("missing payload kind (of)")
	}
	return s.Of.Kind()
}

// SpecOf returns the specification of a kind.
func SpecOf(k *kind.Kind) KindSpec {
	switch k.Tag() {
	case kind.Optional:
		elem := SpecOf(k.Elem())
		if elem.Scalar != "" {
			return KindSpec{Scalar: "?" + elem.Scalar}
		}
		return KindSpec{Optional: &elem}
	case kind.Record:
		fields := make([]FieldSpec, len(k.Fields()))
		for i, f := range k.Fields() {
			fields[i] = FieldSpec{Name: f.Name, Kind: SpecOf(f.Kind)}
		}
		return KindSpec{Record: fields}
	case kind.Named:
		elem := SpecOf(k.Elem())
		return KindSpec{Named: k.Name(), Of: &elem}
	case kind.Block:
		elem := SpecOf(k.Elem())
		return KindSpec{Block: k.Dims(), Of: &elem}
	}
	return KindSpec{Scalar: k.Tag().String()}
}
