// Package metrics defines the Prometheus collectors Rootmarks exports at
// /metrics. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rootmarks"

// Values for the xp source label.
const (
	SourceBook  = "book"
	SourceBadge = "badge"
)

// Values for the upstream service label.
const (
	ServiceGoogleBooks = "google_books"
	ServiceAnalyzer    = "analyzer"
)

// Metrics holds every collector.
type Metrics struct {
	registry prometheus.Gatherer

	BooksFinished   prometheus.Counter
	BadgesAwarded   *prometheus.CounterVec
	XPCredited      *prometheus.CounterVec
	LookupCache     *prometheus.CounterVec
	UpstreamErrors  *prometheus.CounterVec
	PlantScans      prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newWithRegistry(reg)
}

func newWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BooksFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_finished_total",
			Help:      "Books marked finished.",
		}),
		BadgesAwarded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_awarded_total",
			Help:      "Badges awarded, by badge id.",
		}, []string{"badge_id"}),
		XPCredited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_credited_total",
			Help:      "Experience points credited, by source.",
		}, []string{"source"}),
		LookupCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "cache_requests_total",
			Help:      "Book lookup cache requests, by result.",
		}, []string{"result"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed calls to external services.",
		}, []string{"service"}),
		PlantScans: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plant_scans_total",
			Help:      "Plant photos analyzed.",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BookFinished records a completed book and its XP.
func (m *Metrics) BookFinished(xp int) {
	if m == nil {
		return
	}
	m.BooksFinished.Inc()
	m.XPCredited.WithLabelValues(SourceBook).Add(float64(xp))
}

// BadgeAwarded records a newly earned badge and its XP.
func (m *Metrics) BadgeAwarded(badgeID string, xp int) {
	if m == nil {
		return
	}
	m.BadgesAwarded.WithLabelValues(badgeID).Inc()
	m.XPCredited.WithLabelValues(SourceBadge).Add(float64(xp))
}

// LookupCacheResult records a lookup cache hit or miss.
func (m *Metrics) LookupCacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.LookupCache.WithLabelValues(result).Inc()
}

// UpstreamError records a failed external call.
func (m *Metrics) UpstreamError(service string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(service).Inc()
}

// PlantScanned records a completed plant scan.
func (m *Metrics) PlantScanned() {
	if m == nil {
		return
	}
	m.PlantScans.Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
