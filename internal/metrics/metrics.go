// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_searches_total",
			Help: "Total number of searches by outcome",
		},
		[]string{"outcome"},
	)

	searchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promo_search_duration_seconds",
			Help:    "Time spent ranking or paginating one search",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	collectionSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promo_collection_records",
			Help: "Number of searchable promotion records in the current snapshot",
		},
	)

	reloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_reloads_total",
			Help: "Collection reload attempts by result",
		},
		[]string{"result"}, // success or failure
	)

	sessionEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promo_session_entries",
			Help: "Number of cached user sessions",
		},
	)

	sessionEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promo_session_evictions_total",
			Help: "Total number of idle sessions evicted",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	registered atomic.Bool
)

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	if !registered.CompareAndSwap(false, true) {
		return
	}
	prometheus.MustRegister(
		searchesTotal,
		searchDurationSeconds,
		collectionSize,
		reloadsTotal,
		sessionEntries,
		sessionEvictionsTotal,
		httpRequestsTotal,
	)
}

// Recorder is the engine-facing sink for metrics. The zero value is usable.
type Recorder struct{}

// ObserveSearch records one search outcome and its latency.
func (Recorder) ObserveSearch(outcome string, d time.Duration) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDurationSeconds.Observe(d.Seconds())
}

// SetCollectionSize updates the collection gauge.
func (Recorder) SetCollectionSize(n int) {
	collectionSize.Set(float64(n))
}

// ObserveReload counts a reload attempt.
func (Recorder) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	reloadsTotal.WithLabelValues(result).Inc()
}

// SetSessionEntries updates the session gauge.
func (Recorder) SetSessionEntries(n int) {
	sessionEntries.Set(float64(n))
}

// AddSessionEvictions counts evicted sessions.
func (Recorder) AddSessionEvictions(n int) {
	sessionEvictionsTotal.Add(float64(n))
}

// GinMiddleware counts requests by matched route so path parameters do not
// explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if route == "/metrics" {
			return
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
