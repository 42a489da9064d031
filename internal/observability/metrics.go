// Package observability holds the process-wide Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitlife"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	storeOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Record store operations, by operation, collection and outcome.",
	}, []string{"op", "kind", "outcome"})
	storeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Record store operation latency.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"op", "kind"})
	storeRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "records",
		Help:      "Number of records in each collection after the last load or save.",
	}, []string{"kind"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "leaderboard_cache",
		Name:      "lookups_total",
		Help:      "Leaderboard cache lookups, by result (hit or miss).",
	}, []string{"result"})

	importedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "records_total",
		Help:      "Records seen by the importer, by collection and outcome.",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(
		httpRequests, httpDuration,
		storeOps, storeDuration, storeRecords,
		cacheLookups,
		importedRecords,
	)
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStore records one record store operation.
func ObserveStore(op, kind string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeOps.WithLabelValues(op, kind, outcome).Inc()
	storeDuration.WithLabelValues(op, kind).Observe(elapsed.Seconds())
}

// SetStoredRecords updates the collection size gauge.
func SetStoredRecords(kind string, n int) {
	storeRecords.WithLabelValues(kind).Set(float64(n))
}

// RecordCacheLookup counts a leaderboard cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// RecordImported counts records handled by the importer.
func RecordImported(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	importedRecords.WithLabelValues(kind, outcome).Add(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
