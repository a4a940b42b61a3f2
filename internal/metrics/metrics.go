// Package metrics exports Prometheus metrics for parsing, HTTP traffic and
// reply generation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/agridoc/internal/document"
)

const namespace = "agridoc"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	parseTotal      *prometheus.CounterVec
	parseBlocks     *prometheus.HistogramVec
	parseInputBytes prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	generation      *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.parseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Documents parsed, by dialect.",
		},
		[]string{"dialect"},
	)
	m.parseBlocks = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_blocks",
			Help:      "Blocks per parsed document, by block kind.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"kind"},
	)
	m.parseInputBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_input_bytes",
			Help:      "Size of parsed input text in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
	)
	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route pattern and status code.",
		},
		[]string{"route", "status"},
	)
	m.generation = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_seconds",
			Help:      "Reply generation latency in seconds, by kind and outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"kind", "status"},
	)

	m.registry.MustRegister(
		m.parseTotal,
		m.parseBlocks,
		m.parseInputBytes,
		m.httpRequests,
		m.generation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveParse records one parse of inputBytes bytes that produced doc.
func (m *Metrics) ObserveParse(dialect string, inputBytes int, doc document.Document) {
	if m == nil {
		return
	}
	m.parseTotal.WithLabelValues(dialect).Inc()
	m.parseInputBytes.Observe(float64(inputBytes))
	counts := doc.CountByKind()
	for _, k := range []document.BlockKind{document.KindHeading, document.KindParagraph, document.KindList} {
		m.parseBlocks.WithLabelValues(string(k)).Observe(float64(counts[k]))
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveGeneration records one generation call.
func (m *Metrics) ObserveGeneration(kind string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	m.generation.WithLabelValues(kind, status).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
