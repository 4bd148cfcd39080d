package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	ThoughtsCreated prometheus.Counter
	ThoughtsLiked   prometheus.Counter
	ThoughtsUpdated prometheus.Counter
	ThoughtsDeleted prometheus.Counter
}

// NewCollector creates a collector backed by its own registry so tests can
// build as many as they like.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ThoughtsCreated: counter("thoughts_created_total", "Total number of thoughts created"),
		ThoughtsLiked:   counter("thoughts_liked_total", "Total number of hearts given"),
		ThoughtsUpdated: counter("thoughts_updated_total", "Total number of thought edits"),
		ThoughtsDeleted: counter("thoughts_deleted_total", "Total number of thoughts deleted"),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.ThoughtsCreated,
		c.ThoughtsLiked,
		c.ThoughtsUpdated,
		c.ThoughtsDeleted,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// The methods below let the thought service record business events
// without importing prometheus. A nil collector records nothing.

func (c *Collector) ThoughtCreated() {
	if c != nil {
		c.ThoughtsCreated.Inc()
	}
}

func (c *Collector) ThoughtLiked() {
	if c != nil {
		c.ThoughtsLiked.Inc()
	}
}

func (c *Collector) ThoughtUpdated() {
	if c != nil {
		c.ThoughtsUpdated.Inc()
	}
}

func (c *Collector) ThoughtDeleted() {
	if c != nil {
		c.ThoughtsDeleted.Inc()
	}
}
