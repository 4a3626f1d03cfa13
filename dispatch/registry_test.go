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
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/kind"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

func identity(_ array.Allocator, args []*array.View) (*array.View, error) {
	return args[0], nil
}

func unary(name string, p dispatch.Pattern, shape dispatch.ShapeClass) *dispatch.Kernel {
	return &dispatch.Kernel{
		Op:   "op",
		Name: name,
		Sig:  dispatch.Sig(dispatch.P(p, shape)),
		Fn:   identity,
	}
}

func scalar(t *testing.T, k *kind.Kind, val any) *array.View {
	t.Helper()
	v, err := array.FromValue(k, val)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRegisterConflicts(t *testing.T) {
	tests := []struct {
		kernels   []*dispatch.Kernel
		conflicts int
	}{
		{
			kernels: []*dispatch.Kernel{
				unary("f32", dispatch.Exact(float32Kind), dispatch.AnyShape),
				unary("float", dispatch.AnyFloat(), dispatch.AnyShape),
				unary("any", dispatch.Any(), dispatch.AnyShape),
				unary("opt", dispatch.OptionalOf(dispatch.AnyFloat()), dispatch.AnyShape),
			},
		},
		{
			kernels: []*dispatch.Kernel{
				unary("dense", dispatch.AnyFloat(), dispatch.Dense),
				unary("ragged", dispatch.AnyFloat(), dispatch.Ragged),
				unary("scalar-f32", dispatch.Exact(float32Kind), dispatch.Scalar),
			},
		},
		{
			kernels: []*dispatch.Kernel{
				unary("a", dispatch.AnyFloat(), dispatch.AnyShape),
				unary("b", dispatch.AnyFloat(), dispatch.AnyShape),
			},
			conflicts: 1,
		},
		{
			kernels: []*dispatch.Kernel{
				unary("small", dispatch.OneOf(kind.Int8, kind.Int16), dispatch.AnyShape),
				unary("middle", dispatch.OneOf(kind.Int16, kind.Int32), dispatch.AnyShape),
			},
			conflicts: 1,
		},
		{
			kernels: []*dispatch.Kernel{
				unary("array-f32", dispatch.Exact(float32Kind), dispatch.Array),
				unary("dense-float", dispatch.AnyFloat(), dispatch.Dense),
				unary("scalar-any", dispatch.Any(), dispatch.Scalar|dispatch.Dense),
			},
			conflicts: 2,
		},
	}
	for i, test := range tests {
		r := dispatch.NewRegistry()
		err := r.RegisterAll(test.kernels...)
		errs := multierr.Errors(err)
		if len(errs) != test.conflicts {
			t.Errorf("test %d: got %d errors but want %d: %v", i, len(errs), test.conflicts, err)
			continue
		}
		for _, err := range errs {
			var cErr *dispatch.ConflictError
			if !errors.As(err, &cErr) {
				t.Errorf("test %d: got error %v but want a *dispatch.ConflictError", i, err)
			}
		}
		if got, want := len(r.Kernels()), len(test.kernels)-test.conflicts; got != want {
			t.Errorf("test %d: got %d kernels registered but want %d", i, got, want)
		}
	}
}

func TestDuplicate(t *testing.T) {
	r := dispatch.NewRegistry()
	if err := r.Register(unary("a", dispatch.AnyFloat(), dispatch.AnyShape)); err != nil {
		t.Fatal(err)
	}
	err := r.Register(unary("b", dispatch.OneOf(kind.Float64, kind.Float32), dispatch.AnyShape))
	var cErr *dispatch.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("got error %v but want a *dispatch.ConflictError", err)
	}
	if !cErr.Duplicate || cErr.Other.Name != "a" {
		t.Errorf("got %+v but want a duplicate of kernel a", cErr)
	}
}

func TestLookup(t *testing.T) {
	r := dispatch.NewRegistry()
	if err := r.RegisterAll(
		unary("any", dispatch.Any(), dispatch.AnyShape),
		unary("float", dispatch.AnyFloat(), dispatch.AnyShape),
		unary("f32", dispatch.Exact(float32Kind), dispatch.AnyShape),
		unary("f32-scalar", dispatch.Exact(float32Kind), dispatch.Scalar),
		unary("quaternion", dispatch.Exact(kind.Of(kind.Quaternion64)), dispatch.Array),
	); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		arg  *array.View
		want string
	}{
		{arg: scalar(t, float32Kind, 1), want: "f32-scalar"},
		{arg: scalar(t, float32Kind, []float32{1, 2}), want: "f32"},
		{arg: scalar(t, float64Kind, []float64{1, 2}), want: "float"},
		{arg: scalar(t, int64Kind, 3), want: "any"},
		{arg: scalar(t, kind.Of(kind.Quaternion64), [][][]complex64{{{1, 0}, {0, 1}}}), want: "quaternion"},
		{arg: scalar(t, kind.NamedOf("Foo", complexBlock(t)), [][][]complex64{{{1, 0}, {0, 1}}}), want: "any"},
	}
	for i, test := range tests {
		k, err := r.Lookup("op", test.arg)
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if k.Name != test.want {
			t.Errorf("test %d: got kernel %s for %s but want %s", i, k.Name, test.arg.Type(), test.want)
		}
	}
}

func TestDispatchError(t *testing.T) {
	r := dispatch.NewRegistry()
	if err := r.Register(&dispatch.Kernel{
		Op:   "multiply",
		Name: "multiply.quaternion64",
		Sig: dispatch.Sig(
			dispatch.P(dispatch.Exact(kind.Of(kind.Quaternion64)), dispatch.AnyShape),
			dispatch.P(dispatch.Exact(kind.Of(kind.Quaternion64)), dispatch.AnyShape),
		),
		Fn: identity,
	}); err != nil {
		t.Fatal(err)
	}
	foo := scalar(t, kind.NamedOf("Foo", complexBlock(t)), [][][]complex64{
		{{1, 0}, {0, 1}},
		{{1, 0}, {0, 1}},
		{{1, 0}, {0, 1}},
	})
	tests := []struct {
		op   string
		args []*array.View
		want string
	}{
		{
			op:   "multiply",
			args: []*array.View{foo, foo},
			want: "multiply(3 * Foo(2 * 2 * complex64), 3 * Foo(2 * 2 * complex64)): no kernel matches the argument types",
		},
		{
			op:   "multiply",
			args: []*array.View{foo},
			want: "multiply(3 * Foo(2 * 2 * complex64)): no kernel matches the argument types",
		},
		{
			op:   "divide",
			args: []*array.View{foo},
			want: "divide(3 * Foo(2 * 2 * complex64)): unknown operation",
		},
	}
	for i, test := range tests {
		_, err := r.Call(test.op, test.args...)
		var dErr *dispatch.DispatchError
		if !errors.As(err, &dErr) {
			t.Errorf("test %d: got error %v but want a *dispatch.DispatchError", i, err)
			continue
		}
		if got := err.Error(); got != test.want {
			t.Errorf("test %d: got error\n%s\nbut want\n%s", i, got, test.want)
		}
	}
}

type recorder struct {
	mu       sync.Mutex
	calls    []string
	failures []string
}

func (r *recorder) Dispatched(op, kernel string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op+":"+kernel)
}

func (r *recorder) Failed(op string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, op)
}

func TestCallPrecondition(t *testing.T) {
	rec := &recorder{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := dispatch.NewRegistry(dispatch.WithObserver(rec), dispatch.WithLogger(logger))
	if err := r.RegisterAll(
		&dispatch.Kernel{
			Op:   "positive",
			Name: "positive.float64",
			Sig:  dispatch.Sig(dispatch.P(dispatch.Exact(float64Kind), dispatch.Scalar)),
			Fn: func(_ array.Allocator, args []*array.View) (*array.View, error) {
				if x := args[0].Buffer().Float64(args[0].Offset()); x < 0 {
					return nil, dispatch.InvalidArgument("%v is negative", x)
				}
				return args[0], nil
			},
		},
	); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Call("positive", scalar(t, float64Kind, 2)); err != nil {
		t.Fatal(err)
	}
	_, err := r.Call("positive", scalar(t, float64Kind, -2))
	var dErr *dispatch.DispatchError
	if !errors.As(err, &dErr) {
		t.Fatalf("got error %v but want a *dispatch.DispatchError", err)
	}
	if got, want := err.Error(), "positive(float64): -2 is negative"; got != want {
		t.Errorf("got error %q but want %q", got, want)
	}
	if diff := cmp.Diff([]string{"positive:positive.float64"}, rec.calls); diff != "" {
		t.Errorf("unexpected calls:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"positive"}, rec.failures); diff != "" {
		t.Errorf("unexpected failures:\n%s", diff)
	}
	if !strings.Contains(logs.String(), "kernel=positive.float64") {
		t.Errorf("kernel name not logged:\n%s", logs.String())
	}
}

func TestConcurrentCalls(t *testing.T) {
	r := dispatch.NewRegistry()
	if err := r.Register(unary("float", dispatch.AnyFloat(), dispatch.AnyShape)); err != nil {
		t.Fatal(err)
	}
	x := scalar(t, float64Kind, []float64{1, 2, 3})
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = r.Call("op", x)
		}()
	}
	wg.Wait()
	if err := multierr.Combine(errs...); err != nil {
		t.Error(err)
	}
}
