// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics holds the Prometheus collectors for remote calls.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "odoolink"

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeFault     = "fault"
	OutcomeTransport = "transport_error"
)

// Collectors groups the call metrics. A nil *Collectors is valid and records
// nothing.
type Collectors struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	authFail prometheus.Counter
}

// New creates collectors registered on a private registry.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		registry: reg,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "XML-RPC calls by remote method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_call_duration_seconds",
			Help:      "Round-trip time of XML-RPC calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_retries_total",
			Help:      "Retried attempts of idempotent calls.",
		}, []string{"method"}),
		authFail: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authentication_failures_total",
			Help:      "Authentication attempts rejected by the service.",
		}),
	}
	reg.MustRegister(c.calls, c.duration, c.retries, c.authFail)
	return c
}

// ObserveCall records one finished call.
func (c *Collectors) ObserveCall(method, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.calls.WithLabelValues(method, outcome).Inc()
	c.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveRetry records one retried attempt.
func (c *Collectors) ObserveRetry(method string) {
	if c == nil {
		return
	}
	c.retries.WithLabelValues(method).Inc()
}

// ObserveAuthFailure records a rejected authentication.
func (c *Collectors) ObserveAuthFailure() {
	if c == nil {
		return
	}
	c.authFail.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collectors) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Calls exposes the call counter, mainly for tests.
func (c *Collectors) Calls() *prometheus.CounterVec { return c.calls }

// Retries exposes the retry counter, mainly for tests.
func (c *Collectors) Retries() *prometheus.CounterVec { return c.retries }

// AuthFailures exposes the rejected-authentication counter.
func (c *Collectors) AuthFailures() prometheus.Counter { return c.authFail }

// WriteText writes all metrics in the Prometheus text exposition format.
func (c *Collectors) WriteText(w io.Writer) error {
	if c == nil {
		return nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
