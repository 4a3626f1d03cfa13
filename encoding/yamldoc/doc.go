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

package yamldoc

import (
	"io"
	"strconv"

	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	// Arg is the YAML representation of a view.
	// The shape of a dense view is given by the nesting of the value.
	// Complex numbers are written as strings, for example "1+2i".
	Arg struct {
		Kind   KindSpec `yaml:"kind"`
		Ragged bool     `yaml:"ragged,omitempty"`
		Value  any      `yaml:"value"`
	}

	// Document is a list of arguments.
	Document struct {
		Args []Arg `yaml:"args"`
	}
)

// Decode reads a document and returns its arguments as views.
func Decode(r io.Reader) ([]*array.View, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "cannot decode YAML document")
	}
	views := make([]*array.View, len(doc.Args))
	for i, arg := range doc.Args {
		v, err := arg.View()
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		views[i] = v
	}
	return views, nil
}

// View returns the view of an argument.
func (a *Arg) View() (*array.View, error) {
	k, err := a.Kind.Kind()
	if err != nil {
		return nil, err
	}
	ndim := depth(a.Value) - k.ValueDepth()
	if ndim < 0 {
		return nil, errors.Errorf("value has fewer levels than required by %s", k)
	}
	val, err := fromYAML(k, a.Value, ndim)
	if err != nil {
		return nil, err
	}
	if a.Ragged {
		return array.FromRaggedValue(k, val)
	}
	return array.FromValue(k, val)
}

// ArgOf returns the YAML representation of a view.
func ArgOf(v *array.View) Arg {
	return Arg{
		Kind:   SpecOf(v.Kind()),
		Ragged: v.IsRagged(),
		Value:  toYAML(v.Value()),
	}
}

// Encode writes views as a document.
func Encode(w io.Writer, views ...*array.View) error {
	doc := Document{Args: make([]Arg, len(views))}
	for i, v := range views {
		doc.Args[i] = ArgOf(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "cannot encode YAML document")
	}
	return enc.Close()
}

func depth(val any) int {
	list, ok := val.([]any)
	if !ok {
		return 0
	}
	d := 0
	for _, item := range list {
		d = max(d, depth(item))
	}
	return d + 1
}

// fromYAML converts the complex numbers of a decoded value.
func fromYAML(k *kind.Kind, val any, ndim int) (any, error) {
	if ndim > 0 {
		list, ok := val.([]any)
		if !ok {
			return nil, errors.Errorf("got %v but want a list", val)
		}
		out := make([]any, len(list))
		for i, item := range list {
			var err error
			if out[i], err = fromYAML(k, item, ndim-1); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if val == nil {
		return nil, nil
	}
	switch k.Tag() {
	case kind.Optional, kind.Named:
		return fromYAML(k.Elem(), val, 0)
	case kind.Record:
		fields, ok := val.(map[string]any)
		if !ok {
			return nil, errors.Errorf("got %v but want a mapping for %s", val, k)
		}
		out := make(map[string]any, len(fields))
		for name, fv := range fields {
			f, ok := k.Field(name)
			if !ok {
				return nil, errors.Errorf("record %s has no field %q", k, name)
			}
			var err error
			if out[name], err = fromYAML(f.Kind, fv, 0); err != nil {
				return nil, errors.Wrapf(err, "field %s", name)
			}
		}
		return out, nil
	case kind.Block:
		return fromYAML(k.Elem(), val, len(k.Dims()))
	case kind.Quaternion64:
		return fromYAML(kind.Of(kind.Complex64), val, 2)
	case kind.Quaternion128:
		return fromYAML(kind.Of(kind.Complex128), val, 2)
	case kind.Complex64, kind.Complex128:
		s, ok := val.(string)
		if !ok {
			return val, nil
		}
		bitSize := 128
		if k.Tag() == kind.Complex64 {
			bitSize = 64
		}
		c, err := strconv.ParseComplex(s, bitSize)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s value", k)
		}
		return c, nil
	}
	return val, nil
}

// toYAML converts complex numbers to strings.
func toYAML(val any) any {
	switch x := val.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = toYAML(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for name, item := range x {
			out[name] = toYAML(item)
		}
		return out
	case complex64:
		return strconv.FormatComplex(complex128(x), 'g', -1, 64)
	case complex128:
		return strconv.FormatComplex(x, 'g', -1, 128)
	}
	return val
}
