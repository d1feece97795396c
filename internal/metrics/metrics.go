// Package metrics exposes Prometheus counters and histograms fed by bus
// events.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
)

const namespace = "phishgraph"

// Metrics holds the collectors and the registry they are exposed from.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	operations        *prometheus.CounterVec
	operationDuration prometheus.Histogram
	redactions        *prometheus.CounterVec
	fetches           *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by status code.",
		}, []string{"code"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_operations_total",
			Help:      "GraphQL operations executed, by outcome.",
		}, []string{"status"}),
		operationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graphql_operation_duration_seconds",
			Help:      "Time spent executing GraphQL operations.",
			Buckets:   prometheus.DefBuckets,
		}),
		redactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_field_redactions_total",
			Help:      "Fields withheld from sessions lacking read access.",
		}, []string{"type", "property"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_fetches_total",
			Help:      "Store reads, by entity kind, method and outcome.",
		}, []string{"kind", "method", "status"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_fetch_duration_seconds",
			Help:      "Time spent in store reads.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"kind", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.operations,
		m.operationDuration,
		m.redactions,
		m.fetches,
		m.fetchDuration,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Subscribe attaches the collectors to the global event bus.
func (m *Metrics) Subscribe() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
			m.httpRequests.WithLabelValues(strconv.Itoa(e.Status)).Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
			status := "ok"
			if len(e.Errors) > 0 {
				status = "error"
			}
			m.operations.WithLabelValues(status).Inc()
			m.operationDuration.Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(_ context.Context, e events.FieldRedacted) {
			m.redactions.WithLabelValues(e.Type, e.Property).Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.FetchFinish) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.fetches.WithLabelValues(e.Kind, e.Method, status).Inc()
			m.fetchDuration.WithLabelValues(e.Kind, e.Method).Observe(e.Duration.Seconds())
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
