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

package yamldoc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/gumath/encoding/yamldoc"
	"github.com/gx-org/gumath/kind"
)

const countries = `
args:
  - kind:
      record:
        - {name: index, kind: int64}
        - {name: name, kind: string}
        - {name: value, kind: "?int64"}
    value:
      - - {index: 0, name: brazil, value: 10}
        - {index: 1, name: france, value: null}
      - - {index: 0, name: iceland, value: 5}
        - {index: 1, name: norway}
  - kind: float32
    ragged: true
    value: [[1, 2.5], [], [3]]
  - kind: quaternion64
    value:
      - [["1+2i", "4+3i"], ["-4+3i", "1-2i"]]
  - kind: {named: Foo, of: {block: [2, 2], of: complex64}}
    value:
      - [["1+2i", "4+3i"], ["-4+3i", "1-2i"]]
  - kind: int32
    value: 3
`

func TestDecode(t *testing.T) {
	views, err := yamldoc.Decode(strings.NewReader(countries))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	wantTypes := []string{
		"2 * 2 * {index: int64, name: string, value: ?int64}",
		"var * var * float32",
		"1 * quaternion64",
		"1 * Foo(2 * 2 * complex64)",
		"int32",
	}
	var gotTypes []string
	for _, v := range views {
		gotTypes = append(gotTypes, v.Type())
	}
	if diff := cmp.Diff(wantTypes, gotTypes); diff != "" {
		t.Fatalf("unexpected types:\n%s", diff)
	}
	wantValues := []any{
		[]any{
			[]any{
				map[string]any{"index": int64(0), "name": "brazil", "value": int64(10)},
				map[string]any{"index": int64(1), "name": "france", "value": nil},
			},
			[]any{
				map[string]any{"index": int64(0), "name": "iceland", "value": int64(5)},
				map[string]any{"index": int64(1), "name": "norway", "value": nil},
			},
		},
		[]any{
			[]any{float32(1), float32(2.5)},
			[]any{},
			[]any{float32(3)},
		},
		[]any{
			[]any{
				[]any{complex64(1 + 2i), complex64(4 + 3i)},
				[]any{complex64(-4 + 3i), complex64(1 - 2i)},
			},
		},
	}
	for i, want := range wantValues {
		if diff := cmp.Diff(want, views[i].Value()); diff != "" {
			t.Errorf("argument %d: unexpected value:\n%s", i, diff)
		}
	}
	if got := views[4].Value(); got != int32(3) {
		t.Errorf("got %v but want 3", got)
	}
}

func TestEncode(t *testing.T) {
	views, err := yamldoc.Decode(strings.NewReader(countries))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var buf bytes.Buffer
	if err := yamldoc.Encode(&buf, views...); err != nil {
		t.Fatalf("%+v", err)
	}
	decoded, err := yamldoc.Decode(&buf)
	if err != nil {
		t.Fatalf("cannot decode:\n%s\n%+v", buf.String(), err)
	}
	if len(decoded) != len(views) {
		t.Fatalf("got %d arguments but want %d", len(decoded), len(views))
	}
	for i, v := range views {
		if !v.Kind().Equal(decoded[i].Kind()) {
			t.Errorf("argument %d: got kind %s but want %s", i, decoded[i].Kind(), v.Kind())
		}
		if diff := cmp.Diff(v.Value(), decoded[i].Value()); diff != "" {
			t.Errorf("argument %d: unexpected value:\n%s", i, diff)
		}
	}
}

func TestSpecOf(t *testing.T) {
	block, err := kind.BlockOf([]int{2, 2}, kind.Of(kind.Complex128))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []*kind.Kind{
		kind.Of(kind.Float64),
		kind.OptionalOf(kind.Of(kind.Int8)),
		kind.OptionalOf(kind.MustRecordOf(kind.F("x", kind.Of(kind.Float32)))),
		kind.NamedOf("Foo", block),
		kind.MustRecordOf(
			kind.F("node", kind.Of(kind.Int32)),
			kind.F("cost", kind.OptionalOf(kind.Of(kind.Float64))),
		),
	} {
		spec := yamldoc.SpecOf(k)
		got, err := spec.Kind()
		if err != nil {
			t.Errorf("%s: %v", k, err)
			continue
		}
		if !got.Equal(k) {
			t.Errorf("got %s but want %s", got, k)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"args: [{kind: float128, value: 1}]",
		"args: [{kind: {named: Foo}, value: 1}]",
		"args: [{kind: {}, value: 1}]",
		"args: [{kind: complex64, value: [\"1+\"]}]",
		"args: [{kind: int64, value: [[1, 2], [3]]}]",
		"args: [{kind: {record: [{name: a, kind: int64}]}, value: [{b: 1}]}]",
		"args: [{kind: quaternion128, value: [1, 2]}]",
		"args: [{kind: int8, value: [1, 300]}]",
	}
	for i, test := range tests {
		if _, err := yamldoc.Decode(strings.NewReader(test)); err == nil {
			t.Errorf("test %d: expected an error for %s", i, test)
		}
	}
}
