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

package kernels_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
)

var quaternions = [][][]complex128{
	{{1 + 2i, 4 + 3i}, {-4 + 3i, 1 - 2i}},
	{{4 + 2i, 1 + 10i}, {-1 + 10i, 4 - 2i}},
	{{-4 + 2i, 3 + 10i}, {-3 + 10i, -4 - 2i}},
}

type hamilton [4]float64

func (p hamilton) mul(q hamilton) hamilton {
	return hamilton{
		p[0]*q[0] - p[1]*q[1] - p[2]*q[2] - p[3]*q[3],
		p[0]*q[1] + p[1]*q[0] + p[2]*q[3] - p[3]*q[2],
		p[0]*q[2] - p[1]*q[3] + p[2]*q[0] + p[3]*q[1],
		p[0]*q[3] + p[1]*q[2] - p[2]*q[1] + p[3]*q[0],
	}
}

func (p hamilton) block() [][]complex128 {
	a, b, c, d := p[0], p[1], p[2], p[3]
	return [][]complex128{
		{complex(a, b), complex(c, d)},
		{complex(-c, d), complex(a, -b)},
	}
}

func fromBlock(m [][]complex128) hamilton {
	return hamilton{real(m[0][0]), imag(m[0][0]), real(m[0][1]), imag(m[0][1])}
}

// blockValue converts a block to the value of a quaternion element.
func blockValue(m [][]complex128, tag kind.Tag) any {
	rows := make([]any, 2)
	for i := range rows {
		row := make([]any, 2)
		for j := range row {
			if tag == kind.Quaternion64 {
				row[j] = complex64(m[i][j])
			} else {
				row[j] = m[i][j]
			}
		}
		rows[i] = row
	}
	return rows
}

func TestQuaternionMultiply(t *testing.T) {
	r := newRegistry(t)
	for _, tag := range []kind.Tag{kind.Quaternion64, kind.Quaternion128} {
		x := dense(t, kind.Of(tag), quaternions)
		got := call(t, r, "multiply", x, x)
		if got.Type() != "3 * "+tag.String() {
			t.Errorf("got type %s", got.Type())
		}
		want := make([]any, len(quaternions))
		for i, m := range quaternions {
			q := fromBlock(m)
			want[i] = blockValue(q.mul(q).block(), tag)
		}
		if diff := cmp.Diff(want, got.Value()); diff != "" {
			t.Errorf("%s: unexpected value:\n%s", tag, diff)
		}
	}
}

func TestQuaternionBroadcast(t *testing.T) {
	r := newRegistry(t)
	k := kind.Of(kind.Quaternion128)
	i := hamilton{0, 1, 0, 0}
	j := hamilton{0, 0, 1, 0}
	x := dense(t, k, [][][]complex128{i.block(), j.block()})
	y := dense(t, k, j.block())
	got := call(t, r, "multiply", x, y)
	want := []any{
		blockValue(i.mul(j).block(), kind.Quaternion128),
		blockValue(j.mul(j).block(), kind.Quaternion128),
	}
	if diff := cmp.Diff(want, got.Value()); diff != "" {
		t.Errorf("unexpected value:\n%s", diff)
	}
	// i*j = k
	if diff := cmp.Diff(hamilton{0, 0, 0, 1}, i.mul(j)); diff != "" {
		t.Errorf("unexpected Hamilton product:\n%s", diff)
	}
}

func TestQuaternionWrapped(t *testing.T) {
	r := newRegistry(t)
	block, err := kind.BlockOf([]int{2, 2}, kind.Of(kind.Complex64))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []*kind.Kind{
		kind.NamedOf("Foo", block),
		block,
		kind.MustRecordOf(kind.F("q", block)),
	} {
		var val any = quaternions
		if k.Tag() == kind.Record {
			vals := make([]any, len(quaternions))
			for i, m := range quaternions {
				vals[i] = map[string]any{"q": m}
			}
			val = vals
		}
		x := dense(t, k, val)
		_, err := r.Call("multiply", x, x)
		var dErr *dispatch.DispatchError
		if !errors.As(err, &dErr) {
			t.Errorf("%s: got error %v but want a *dispatch.DispatchError", x.Type(), err)
		}
		if x.Len() != 3 {
			t.Errorf("%s: got %d elements but want 3", x.Type(), x.Len())
		}
	}
}

func TestQuaternion64Precision(t *testing.T) {
	r := newRegistry(t)
	// (4096+i)(4096-i) + 1 is 2^24 + 2 but rounds to 2^24 when every
	// operation is carried out in single precision.
	x := dense(t, kind.Of(kind.Quaternion64), [][]complex64{{4096 + 1i, 1}, {0, 0}})
	y := dense(t, kind.Of(kind.Quaternion64), [][]complex64{{4096 - 1i, 0}, {1, 0}})
	got := call(t, r, "multiply", x, y).Value()
	want := []any{
		[]any{complex64(1 << 24), complex64(0)},
		[]any{complex64(0), complex64(0)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected product:\n%s", diff)
	}
}
