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

package array

import "fmt"

type (
	// BoundsError is returned when a view would address memory outside of its buffer.
	BoundsError struct {
		// Type of the view being constructed.
		Type string
		// Err lists the problems found while validating the view.
		Err error
	}

	// AllocationError is returned by an allocator when it cannot provide an output buffer.
	AllocationError struct {
		// Bytes requested.
		Bytes int
		// Limit of the allocator in bytes.
		Limit int
	}
)

func (e *BoundsError) Error() string {
	return fmt.Sprintf("invalid view %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying validation errors.
func (e *BoundsError) Unwrap() error {
	return e.Err
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate %d bytes: allocator limit is %d bytes", e.Bytes, e.Limit)
}
