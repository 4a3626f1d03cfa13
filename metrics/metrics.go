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

// Package metrics exports dispatch statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer counts calls and measures kernel durations.
type Observer struct {
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ dispatch.Observer = (*Observer)(nil)

// NewObserver returns an observer with its metrics registered to reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gumath_dispatch_total",
			Help: "Total successful calls by operation and kernel",
		}, []string{"op", "kernel"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gumath_dispatch_errors_total",
			Help: "Total failed calls by operation and error type",
		}, []string{"op", "error_type"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gumath_kernel_seconds",
			Help:    "Kernel duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"op"}),
	}
}

// Dispatched records a successful call.
func (o *Observer) Dispatched(op, kernel string, elapsed time.Duration) {
	o.calls.WithLabelValues(op, kernel).Inc()
	o.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Failed records a failed call.
func (o *Observer) Failed(op string, err error) {
	o.errors.WithLabelValues(op, errorType(err)).Inc()
}

func errorType(err error) string {
	var (
		dErr *dispatch.DispatchError
		aErr *array.AllocationError
		bErr *array.BoundsError
	)
	switch {
	case errors.As(err, &dErr):
		return "dispatch"
	case errors.As(err, &aErr):
		return "allocation"
	case errors.As(err, &bErr):
		return "bounds"
	}
	return "other"
}
