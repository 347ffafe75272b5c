// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RunCompleted = "completed"
	RunSkipped   = "skipped"

	SeekerSucceeded = "succeeded"
	SeekerFailed    = "failed"
)

type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram
	Seekers     *prometheus.CounterVec
	Persisted   prometheus.Histogram
}

// NewCollector builds a collector on its own registry, so tests can create as
// many as they like.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_runs_total",
			Help:      "Recommendation batch runs by outcome",
		},
		[]string{"status"},
	)

	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_run_duration_seconds",
			Help:      "Wall time of a full recommendation batch",
			Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
	)

	seekers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_seekers_total",
			Help:      "Seekers processed by result",
		},
		[]string{"result"},
	)

	persisted := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_persisted_per_seeker",
			Help:      "Recommendations stored per successful seeker",
			Buckets:   []float64{0, 1, 2, 5, 8, 10},
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		runs,
		runDuration,
		seekers,
		persisted,
	)

	return &Collector{
		registry:     registry,
		HTTPRequests: httpRequests,
		HTTPDuration: httpDuration,
		Runs:         runs,
		RunDuration:  runDuration,
		Seekers:      seekers,
		Persisted:    persisted,
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) ObserveRun(status string, d time.Duration) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(status).Inc()
	if status == RunCompleted {
		c.RunDuration.Observe(d.Seconds())
	}
}

func (c *Collector) ObserveSeeker(err error, persisted int) {
	if c == nil {
		return
	}
	if err != nil {
		c.Seekers.WithLabelValues(SeekerFailed).Inc()
		return
	}
	c.Seekers.WithLabelValues(SeekerSucceeded).Inc()
	c.Persisted.Observe(float64(persisted))
}
