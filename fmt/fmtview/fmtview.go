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

// Package fmtview formats views into strings.
package fmtview

import (
	"fmt"
	"strings"

	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/kind"
)

const tab = "\t"

// Missing is printed in place of missing optional values.
const Missing = "NA"

type printer struct {
	w    strings.Builder
	kind *kind.Kind
	ndim int
}

func formatFloat(format string, x any) string {
	s := fmt.Sprintf(format, x)
	if strings.ContainsRune(s, '.') {
		// Remove any number of trailing zeroes after the decimal point, and remove
		// the point itself if there are no digits after it.
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// Element returns the string representation of the value of an element of kind k.
func Element(k *kind.Kind, val any) string {
	if val == nil {
		return Missing
	}
	switch k.Tag() {
	case kind.Optional, kind.Named:
		return Element(k.Elem(), val)
	case kind.Record:
		fields, _ := val.(map[string]any)
		items := make([]string, len(k.Fields()))
		for i, f := range k.Fields() {
			items[i] = f.Name + ": " + Element(f.Kind, fields[f.Name])
		}
		return "{" + strings.Join(items, ", ") + "}"
	}
	switch x := val.(type) {
	case float32:
		return formatFloat("%.6f", x)
	case float64:
		return formatFloat("%.10f", x)
	case string:
		return fmt.Sprintf("%q", x)
	case []any:
		// Blocks and quaternions.
		elem := k.Elem()
		items := make([]string, len(x))
		for i, item := range x {
			if _, nested := item.([]any); nested || elem == nil {
				items[i] = Element(k, item)
				continue
			}
			items[i] = Element(elem, item)
		}
		return "{" + strings.Join(items, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}

func (p *printer) printVector(vals []any) {
	items := make([]string, len(vals))
	for i, val := range vals {
		items[i] = Element(p.kind, val)
	}
	fmt.Fprintf(&p.w, "{%s}", strings.Join(items, ", "))
}

func (p *printer) printRec(indent string, d int, val any) {
	vals, _ := val.([]any)
	if d == p.ndim-1 {
		p.printVector(vals)
		return
	}
	p.w.WriteString("{\n")
	for _, item := range vals {
		p.w.WriteString(indent + tab)
		p.printRec(indent+tab, d+1, item)
		p.w.WriteString(",\n")
	}
	p.w.WriteString(indent + "}")
}

func (p *printer) printData(v *array.View) {
	val := v.Value()
	if p.ndim == 0 {
		p.w.WriteString("(" + Element(p.kind, val) + ")")
		return
	}
	p.printRec("", 0, val)
}

// SDataPrint returns a string representation of the content of a view without the type.
func SDataPrint(v *array.View) string {
	p := &printer{kind: v.Kind(), ndim: v.NDim()}
	p.printData(v)
	return p.w.String()
}

// Sprint returns a string representation of a view.
func Sprint(v *array.View) string {
	p := &printer{kind: v.Kind(), ndim: v.NDim()}
	p.w.WriteString(v.Type())
	p.printData(v)
	return p.w.String()
}
