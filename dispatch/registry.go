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
	"log/slog"
	"sync"
	"time"

	"github.com/gx-org/gumath/array"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// Func computes the output of a kernel.
	// Arguments have been matched against the signature of the kernel.
	Func func(alloc array.Allocator, args []*array.View) (*array.View, error)

	// Kernel is an implementation of an operation for a signature.
	Kernel struct {
		// Op is the name of the operation implemented by the kernel.
		Op string
		// Name identifies the kernel in errors, logs and metrics.
		Name string
		// Sig is the signature of the kernel.
		Sig Signature
		// Fn computes the output.
		Fn Func
	}

	// Observer is notified of every call.
	Observer interface {
		// Dispatched is called after a kernel returns successfully.
		Dispatched(op, kernel string, elapsed time.Duration)
		// Failed is called when a call returns an error.
		Failed(op string, err error)
	}

	// Option configures a registry.
	Option func(*Registry)

	// Registry of kernels.
	// A registry can be called concurrently, including while kernels are registered.
	Registry struct {
		mu      sync.RWMutex
		ops     map[string][]*Kernel
		kernels []*Kernel

		alloc    array.Allocator
		logger   *slog.Logger
		observer Observer
	}
)

// WithAllocator sets the allocator used for kernel outputs.
func WithAllocator(alloc array.Allocator) Option {
	return func(r *Registry) {
		r.alloc = alloc
	}
}

// WithLogger sets the logger of the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithObserver sets an observer notified of every call.
func WithObserver(obs Observer) Option {
	return func(r *Registry) {
		r.observer = obs
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		ops:    make(map[string][]*Kernel),
		alloc:  array.DefaultAllocator(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register a kernel.
// It returns a *ConflictError if another kernel for the same operation has the
// same signature or if both signatures overlap without one covering the other.
func (r *Registry) Register(k *Kernel) error {
	if k.Op == "" || k.Fn == nil {
		return errors.Errorf("kernel %q: missing operation name or function", k.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.ops[k.Op] {
		if err := checkConflict(k, other); err != nil {
			return err
		}
	}
	r.ops[k.Op] = append(r.ops[k.Op], k)
	r.kernels = append(r.kernels, k)
	r.logger.Debug("kernel registered", "op", k.Op, "kernel", k.Name, "signature", k.Sig.String())
	return nil
}

func checkConflict(k, other *Kernel) error {
	covers, covered := k.Sig.Covers(other.Sig), other.Sig.Covers(k.Sig)
	switch {
	case covers && covered:
		return &ConflictError{Op: k.Op, Kernel: k, Other: other, Duplicate: true}
	case covers || covered:
		return nil
	case k.Sig.Overlaps(other.Sig):
		return &ConflictError{Op: k.Op, Kernel: k, Other: other}
	}
	return nil
}

// RegisterAll registers a list of kernels.
// Kernels that can be registered are registered. All the errors are returned.
func (r *Registry) RegisterAll(ks ...*Kernel) error {
	var err error
	for _, k := range ks {
		err = multierr.Append(err, r.Register(k))
	}
	return err
}

// Kernels returns all the kernels in registration order.
func (r *Registry) Kernels() []*Kernel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Kernel(nil), r.kernels...)
}

// Lookup returns the most specific kernel of an operation accepting the arguments.
// It returns a *DispatchError if no kernel accepts the arguments.
func (r *Registry) Lookup(op string, args ...*array.View) (*Kernel, error) {
	r.mu.RLock()
	candidates := r.ops[op]
	r.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, &DispatchError{Op: op, Args: argTypes(args), Reason: "unknown operation"}
	}
	var matches []*Kernel
	for _, k := range candidates {
		if k.Sig.Match(args) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return nil, &DispatchError{Op: op, Args: argTypes(args), Reason: "no kernel matches the argument types"}
	}
	// Registration guarantees that matching signatures are ordered by coverage:
	// the most specific one is covered by all the others.
	for _, k := range matches {
		if mostSpecific(k, matches) {
			return k, nil
		}
	}
	return nil, &DispatchError{Op: op, Args: argTypes(args), Reason: "ambiguous call"}
}

func mostSpecific(k *Kernel, matches []*Kernel) bool {
	for _, other := range matches {
		if !other.Sig.Covers(k.Sig) {
			return false
		}
	}
	return true
}

// Call an operation with arguments.
// The output is allocated with the allocator of the registry.
func (r *Registry) Call(op string, args ...*array.View) (*array.View, error) {
	out, err := r.call(op, args)
	if err != nil && r.observer != nil {
		r.observer.Failed(op, err)
	}
	return out, err
}

func (r *Registry) call(op string, args []*array.View) (*array.View, error) {
	k, err := r.Lookup(op, args...)
	if err != nil {
		r.logger.Debug("dispatch failed", "op", op, "err", err)
		return nil, err
	}
	r.logger.Debug("dispatch", "op", op, "kernel", k.Name, "args", argTypes(args))
	start := time.Now()
	out, err := k.Fn(r.alloc, args)
	if err != nil {
		var dErr *DispatchError
		if errors.As(err, &dErr) && dErr.Op == "" {
			dErr.Op, dErr.Args = op, argTypes(args)
		}
		r.logger.Debug("kernel failed", "op", op, "kernel", k.Name, "err", err)
		return nil, err
	}
	elapsed := time.Since(start)
	if r.observer != nil {
		r.observer.Dispatched(op, k.Name, elapsed)
	}
	return out, nil
}
