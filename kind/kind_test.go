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

package kind_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/gumath/kind"
)

func mustBlock(t *testing.T, dims []int, elem *kind.Kind) *kind.Kind {
	t.Helper()
	k, err := kind.BlockOf(dims, elem)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestString(t *testing.T) {
	block := mustBlock(t, []int{2, 2}, kind.Of(kind.Complex64))
	tests := []struct {
		k    *kind.Kind
		want string
	}{
		{k: kind.Of(kind.Float64), want: "float64"},
		{k: kind.OptionalOf(kind.Of(kind.Int64)), want: "?int64"},
		{k: block, want: "2 * 2 * complex64"},
		{k: kind.NamedOf("Foo", block), want: "Foo(2 * 2 * complex64)"},
		{
			k: kind.MustRecordOf(
				kind.F("index", kind.Of(kind.Int64)),
				kind.F("name", kind.Of(kind.String)),
				kind.F("value", kind.OptionalOf(kind.Of(kind.Int64))),
			),
			want: "{index: int64, name: string, value: ?int64}",
		},
	}
	for _, test := range tests {
		if got := test.k.String(); got != test.want {
			t.Errorf("got %q but want %q", got, test.want)
		}
	}
}

func TestLayout(t *testing.T) {
	rec := kind.MustRecordOf(
		kind.F("a", kind.Of(kind.Int8)),
		kind.F("b", kind.Of(kind.Float64)),
		kind.F("c", kind.Of(kind.Int16)),
	)
	tests := []struct {
		k           *kind.Kind
		size, align int
	}{
		{k: kind.Of(kind.Float32), size: 4, align: 4},
		{k: kind.Of(kind.Float64), size: 8, align: 8},
		{k: kind.Of(kind.Complex64), size: 8, align: 4},
		{k: kind.Of(kind.Quaternion64), size: 32, align: 4},
		{k: kind.Of(kind.Quaternion128), size: 64, align: 8},
		{k: kind.OptionalOf(kind.Of(kind.Int32)), size: 4, align: 4},
		{k: mustBlock(t, []int{2, 2}, kind.Of(kind.Complex64)), size: 32, align: 4},
		{k: rec, size: 24, align: 8},
	}
	for _, test := range tests {
		if test.k.Size() != test.size || test.k.Align() != test.align {
			t.Errorf("%s: got size=%d align=%d but want size=%d align=%d", test.k, test.k.Size(), test.k.Align(), test.size, test.align)
		}
	}
	var offsets []int
	for _, f := range rec.Fields() {
		offsets = append(offsets, f.Offset)
	}
	if diff := cmp.Diff([]int{0, 8, 16}, offsets); diff != "" {
		t.Errorf("unexpected field offsets:\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	block := mustBlock(t, []int{2, 2}, kind.Of(kind.Complex64))
	quat := kind.Of(kind.Quaternion64)
	if quat.Size() != block.Size() {
		t.Fatalf("quaternion64 and its block have different sizes: %d != %d", quat.Size(), block.Size())
	}
	tests := []struct {
		a, b *kind.Kind
		want bool
	}{
		{a: quat, b: kind.Of(kind.Quaternion64), want: true},
		{a: quat, b: block, want: false},
		{a: kind.NamedOf("Foo", block), b: block, want: false},
		{a: kind.NamedOf("Foo", block), b: kind.NamedOf("Foo", mustBlock(t, []int{2, 2}, kind.Of(kind.Complex64))), want: true},
		{a: kind.NamedOf("Foo", block), b: kind.NamedOf("Bar", block), want: false},
		{a: kind.OptionalOf(kind.Of(kind.Int64)), b: kind.OptionalOf(kind.Of(kind.Int64)), want: true},
		{a: kind.OptionalOf(kind.Of(kind.Int64)), b: kind.Of(kind.Int64), want: false},
		{
			a:    kind.MustRecordOf(kind.F("x", kind.Of(kind.Int32))),
			b:    kind.MustRecordOf(kind.F("y", kind.Of(kind.Int32))),
			want: false,
		},
	}
	for i, test := range tests {
		if got := test.a.Equal(test.b); got != test.want {
			t.Errorf("test %d: %s.Equal(%s) = %v but want %v", i, test.a, test.b, got, test.want)
		}
	}
}

func TestConstructorErrors(t *testing.T) {
	if _, err := kind.RecordOf(kind.F("a", kind.Of(kind.Int32)), kind.F("a", kind.Of(kind.Int64))); err == nil {
		t.Errorf("expected an error for duplicate field names")
	}
	if _, err := kind.BlockOf([]int{2, 0}, kind.Of(kind.Float32)); err == nil {
		t.Errorf("expected an error for an empty block dimension")
	}
	if _, err := kind.BlockOf([]int{2}, kind.OptionalOf(kind.Of(kind.Float32))); err == nil {
		t.Errorf("expected an error for a block of optional values")
	}
	opt := kind.OptionalOf(kind.Of(kind.Float32))
	if kind.OptionalOf(opt) != opt {
		t.Errorf("optional of an optional kind should be the same kind")
	}
}

func TestPaths(t *testing.T) {
	inner := kind.MustRecordOf(
		kind.F("x", kind.OptionalOf(kind.Of(kind.Float64))),
		kind.F("label", kind.Of(kind.String)),
	)
	rec := kind.MustRecordOf(
		kind.F("name", kind.Of(kind.String)),
		kind.F("value", kind.OptionalOf(kind.Of(kind.Int64))),
		kind.F("point", inner),
	)
	if diff := cmp.Diff([]string{"value", "point.x"}, rec.OptionalPaths()); diff != "" {
		t.Errorf("unexpected optional paths:\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 16 + 8}, rec.StringOffsets()); diff != "" {
		t.Errorf("unexpected string offsets:\n%s", diff)
	}
	if got := kind.OptionalOf(kind.Of(kind.Int64)).OptionalPaths(); !cmp.Equal(got, []string{""}) {
		t.Errorf("got %v but want the empty path", got)
	}
}
