// Package metrics exposes Prometheus instruments for pathfinding requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request kinds
const (
	KindSearch       = "search"
	KindHierarchical = "hierarchical"
)

// Request outcomes
const (
	OutcomeDone        = "done"
	OutcomeUnreachable = "unreachable"
	OutcomeCancelled   = "cancelled"
)

var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tileflow_steps_total",
		Help: "Step calls performed, by request kind",
	}, []string{"kind"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tileflow_requests_total",
		Help: "Requests that reached a terminal state, by kind and outcome",
	}, []string{"kind", "outcome"})

	requestSteps = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tileflow_request_steps",
		Help:    "Steps a request needed to terminate",
		Buckets: prometheus.ExponentialBuckets(8, 4, 10), // 8 to ~2M steps
	}, []string{"kind"})

	inFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tileflow_requests_in_flight",
		Help: "Requests started and not yet terminal",
	}, []string{"kind"})
)

// Started records a new request
func Started(kind string) {
	inFlight.WithLabelValues(kind).Inc()
}

// Stepped records n step calls
func Stepped(kind string, n int) {
	if n > 0 {
		stepsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// Finished records a terminal outcome after the given number of steps
func Finished(kind, outcome string, steps int) {
	inFlight.WithLabelValues(kind).Dec()
	requestsTotal.WithLabelValues(kind, outcome).Inc()
	if outcome != OutcomeCancelled {
		requestSteps.WithLabelValues(kind).Observe(float64(steps))
	}
}
