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

package dispatch_test

import (
	"testing"

	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/kind"
)

var (
	float32Kind = kind.Of(kind.Float32)
	float64Kind = kind.Of(kind.Float64)
	int8Kind    = kind.Of(kind.Int8)
	int64Kind   = kind.Of(kind.Int64)
)

func complexBlock(t *testing.T) *kind.Kind {
	t.Helper()
	k, err := kind.BlockOf([]int{2, 2}, kind.Of(kind.Complex64))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestMatch(t *testing.T) {
	block := complexBlock(t)
	foo := kind.NamedOf("Foo", block)
	country := kind.MustRecordOf(
		kind.F("index", int64Kind),
		kind.F("value", kind.OptionalOf(int64Kind)),
	)
	edge := kind.MustRecordOf(
		kind.F("node", int64Kind),
		kind.F("cost", float64Kind),
	)
	tests := []struct {
		p    dispatch.Pattern
		k    *kind.Kind
		want bool
	}{
		{p: dispatch.Any(), k: foo, want: true},
		{p: dispatch.Exact(float64Kind), k: float64Kind, want: true},
		{p: dispatch.Exact(float64Kind), k: float32Kind, want: false},
		{p: dispatch.Exact(block), k: foo, want: false},
		{p: dispatch.Exact(foo), k: block, want: false},
		{p: dispatch.Exact(foo), k: kind.NamedOf("Foo", block), want: true},
		{p: dispatch.Exact(kind.Of(kind.Quaternion64)), k: block, want: false},
		{p: dispatch.Exact(kind.Of(kind.Quaternion64)), k: foo, want: false},
		{p: dispatch.AnyFloat(), k: float32Kind, want: true},
		{p: dispatch.AnyFloat(), k: kind.OptionalOf(float32Kind), want: false},
		{p: dispatch.AnyInteger(), k: int8Kind, want: true},
		{p: dispatch.AnyInteger(), k: float64Kind, want: false},
		{p: dispatch.OptionalOf(dispatch.Any()), k: kind.OptionalOf(float32Kind), want: true},
		{p: dispatch.OptionalOf(dispatch.Any()), k: float32Kind, want: false},
		{p: dispatch.HasField("value", dispatch.OptionalOf(dispatch.Any())), k: country, want: true},
		{p: dispatch.HasField("value", dispatch.OptionalOf(dispatch.Any())), k: edge, want: false},
		{p: dispatch.HasField("cost", dispatch.OptionalOf(dispatch.Any())), k: edge, want: false},
		{p: dispatch.RecordOf(dispatch.AnyInteger(), dispatch.AnyFloat()), k: edge, want: true},
		{p: dispatch.RecordOf(dispatch.AnyInteger(), dispatch.AnyFloat()), k: country, want: false},
		{p: dispatch.RecordOf(dispatch.AnyInteger()), k: edge, want: false},
	}
	for i, test := range tests {
		if got := test.p.Match(test.k); got != test.want {
			t.Errorf("test %d: %s.Match(%s) = %t but want %t", i, test.p, test.k, got, test.want)
		}
	}
}

func TestCoversOverlaps(t *testing.T) {
	tests := []struct {
		p, q     dispatch.Pattern
		covers   bool
		overlaps bool
	}{
		{
			p:        dispatch.Any(),
			q:        dispatch.Exact(float32Kind),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.Exact(float32Kind),
			q:        dispatch.Any(),
			covers:   false,
			overlaps: true,
		},
		{
			p:        dispatch.AnyFloat(),
			q:        dispatch.Exact(float32Kind),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.Exact(float32Kind),
			q:        dispatch.OneOf(kind.Float32),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.Exact(float32Kind),
			q:        dispatch.AnyFloat(),
			covers:   false,
			overlaps: true,
		},
		{
			p:        dispatch.AnyInteger(),
			q:        dispatch.OneOf(kind.Int8, kind.Int16),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.OneOf(kind.Int8, kind.Int16),
			q:        dispatch.OneOf(kind.Int16, kind.Int32),
			covers:   false,
			overlaps: true,
		},
		{
			p:        dispatch.AnyInteger(),
			q:        dispatch.AnyFloat(),
			covers:   false,
			overlaps: false,
		},
		{
			p:        dispatch.OptionalOf(dispatch.Any()),
			q:        dispatch.OptionalOf(dispatch.Exact(float64Kind)),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.OptionalOf(dispatch.AnyFloat()),
			q:        dispatch.AnyFloat(),
			covers:   false,
			overlaps: false,
		},
		{
			p:        dispatch.OptionalOf(dispatch.Any()),
			q:        dispatch.HasField("value", dispatch.OptionalOf(dispatch.Any())),
			covers:   false,
			overlaps: false,
		},
		{
			p:        dispatch.HasField("value", dispatch.Any()),
			q:        dispatch.HasField("value", dispatch.AnyFloat()),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.HasField("a", dispatch.AnyFloat()),
			q:        dispatch.HasField("b", dispatch.AnyFloat()),
			covers:   false,
			overlaps: true,
		},
		{
			p:        dispatch.RecordOf(dispatch.AnyInteger(), dispatch.AnyFloat()),
			q:        dispatch.RecordOf(dispatch.Exact(int64Kind), dispatch.Exact(float64Kind)),
			covers:   true,
			overlaps: true,
		},
		{
			p:        dispatch.RecordOf(dispatch.AnyInteger(), dispatch.AnyFloat()),
			q:        dispatch.RecordOf(dispatch.AnyFloat(), dispatch.AnyInteger()),
			covers:   false,
			overlaps: false,
		},
		{
			p:        dispatch.HasField("cost", dispatch.AnyFloat()),
			q:        dispatch.RecordOf(dispatch.AnyInteger(), dispatch.AnyFloat()),
			covers:   false,
			overlaps: true,
		},
	}
	for i, test := range tests {
		if got := dispatch.Covers(test.p, test.q); got != test.covers {
			t.Errorf("test %d: Covers(%s, %s) = %t but want %t", i, test.p, test.q, got, test.covers)
		}
		if got := dispatch.Overlaps(test.p, test.q); got != test.overlaps {
			t.Errorf("test %d: Overlaps(%s, %s) = %t but want %t", i, test.p, test.q, got, test.overlaps)
		}
		if got := dispatch.Overlaps(test.q, test.p); got != test.overlaps {
			t.Errorf("test %d: Overlaps(%s, %s) = %t but want %t", i, test.q, test.p, got, test.overlaps)
		}
	}
}
