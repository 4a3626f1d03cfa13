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

// Package gumath runs math kernels on array views.
//
// Kernels are selected from the kinds and shapes of the arguments of a call.
// The default registry has all the kernels of the kernels package.
package gumath

import (
	"sync"

	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/kernels"
)

// New returns a registry with all the kernels registered.
func New(opts ...dispatch.Option) (*dispatch.Registry, error) {
	r := dispatch.NewRegistry(opts...)
	if err := kernels.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *dispatch.Registry {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the default registry.
func Default() *dispatch.Registry {
	return defaultRegistry()
}

// Call an operation of the default registry.
func Call(op string, args ...*array.View) (*array.View, error) {
	return Default().Call(op, args...)
}

// Sin computes the sine of every element.
func Sin(x *array.View) (*array.View, error) { return Call("sin", x) }

// Cos computes the cosine of every element.
func Cos(x *array.View) (*array.View, error) { return Call("cos", x) }

// Tan computes the tangent of every element.
func Tan(x *array.View) (*array.View, error) { return Call("tan", x) }

// Exp computes the exponential of every element.
func Exp(x *array.View) (*array.View, error) { return Call("exp", x) }

// Log computes the natural logarithm of every element.
func Log(x *array.View) (*array.View, error) { return Call("log", x) }

// Sqrt computes the square root of every element.
func Sqrt(x *array.View) (*array.View, error) { return Call("sqrt", x) }

// Fabs computes the absolute value of every element.
func Fabs(x *array.View) (*array.View, error) { return Call("fabs", x) }

// Negative negates every element.
func Negative(x *array.View) (*array.View, error) { return Call("negative", x) }

// Add x and y elementwise.
func Add(x, y *array.View) (*array.View, error) { return Call("add", x, y) }

// Subtract y from x elementwise.
func Subtract(x, y *array.View) (*array.View, error) { return Call("subtract", x, y) }

// Multiply x and y elementwise.
// Quaternions are multiplied with the Hamilton product.
func Multiply(x, y *array.View) (*array.View, error) { return Call("multiply", x, y) }

// Divide x by y elementwise.
func Divide(x, y *array.View) (*array.View, error) { return Call("divide", x, y) }

// Copy returns a contiguous copy of a view.
func Copy(x *array.View) (*array.View, error) { return Call("copy", x) }

// CountValidMissing counts the valid and missing values along the innermost dimension.
func CountValidMissing(x *array.View) (*array.View, error) {
	return Call("count_valid_missing", x)
}

// ShortestPaths returns the shortest path from a start node to every node of a graph.
func ShortestPaths(graph, start *array.View) (*array.View, error) {
	return Call("single_source_shortest_paths", graph, start)
}
