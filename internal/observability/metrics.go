// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Auth event outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeError       = "error"
)

// Metrics contains the LitterPick application metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuthEventsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers the application metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "litterpick_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "litterpick_http_request_duration_seconds",
				Help:    "HTTP request latency by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "litterpick_auth_events_total",
				Help: "Authentication operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.AuthEventsTotal)
	return m
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordAuthEvent counts one authentication operation.
func (m *Metrics) RecordAuthEvent(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthEventsTotal.WithLabelValues(operation, outcome).Inc()
}
