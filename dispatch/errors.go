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

package dispatch

import (
	"fmt"
	"strings"

	"github.com/gx-org/gumath/array"
)

// DispatchError is returned when no kernel accepts the arguments of a call
// or when arguments violate a precondition of the selected kernel.
// No output is allocated when a call fails with a DispatchError.
type DispatchError struct {
	Op     string
	Args   []string
	Reason string
}

// InvalidArgument returns a DispatchError for a kernel precondition violation.
// The registry fills the operation and the argument types.
func InvalidArgument(format string, a ...any) error {
	return &DispatchError{Reason: fmt.Sprintf(format, a...)}
}

func (err *DispatchError) Error() string {
	return fmt.Sprintf("%s(%s): %s", err.Op, strings.Join(err.Args, ", "), err.Reason)
}

func argTypes(args []*array.View) []string {
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = arg.Type()
	}
	return types
}

// ConflictError is returned when a kernel cannot be registered because its
// signature is ambiguous with the signature of a kernel already registered.
type ConflictError struct {
	Op            string
	Kernel, Other *Kernel
	// Duplicate is true if both kernels have the same signature.
	Duplicate bool
}

func (err *ConflictError) Error() string {
	if err.Duplicate {
		return fmt.Sprintf("kernel %s for %s has the same signature %s as kernel %s",
			err.Kernel.Name, err.Op, err.Kernel.Sig, err.Other.Name)
	}
	return fmt.Sprintf("kernel %s%s for %s is ambiguous with kernel %s%s: signatures overlap but neither is more specific",
		err.Kernel.Name, err.Kernel.Sig, err.Op, err.Other.Name, err.Other.Sig)
}
