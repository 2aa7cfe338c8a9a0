// Package observability holds the Prometheus collectors for imports.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stride_sync"

// Import run results used as label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	importRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Number of import runs, labeled by result.",
	}, []string{"result"})

	importPages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "pages_total",
		Help:      "Number of provider pages committed.",
	})

	importRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "records_total",
		Help:      "Number of activities upserted by imports.",
	})

	importDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Wall time of import runs, including backoff sleeps.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "rate_limited_total",
		Help:      "Number of 429 responses received from the provider.",
	})

	tokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "token",
		Name:      "refresh_total",
		Help:      "Number of token refresh exchanges, labeled by result.",
	}, []string{"result"})

	secretMigrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "secret",
		Name:      "migrations_total",
		Help:      "Number of legacy plaintext token rows re-encrypted on read.",
	})
)

func init() {
	prometheus.MustRegister(importRuns, importPages, importRecords, importDuration, rateLimited, tokenRefreshes, secretMigrations)
}

// RecordImportRun observes a finished run.
func RecordImportRun(err error, elapsed time.Duration) {
	importRuns.WithLabelValues(result(err)).Inc()
	importDuration.Observe(elapsed.Seconds())
}

// RecordImportPage counts one committed page of n records.
func RecordImportPage(n int) {
	importPages.Inc()
	importRecords.Add(float64(n))
}

// RecordRateLimited counts one throttled provider response.
func RecordRateLimited() {
	rateLimited.Inc()
}

// RecordTokenRefresh counts a refresh exchange.
func RecordTokenRefresh(err error) {
	tokenRefreshes.WithLabelValues(result(err)).Inc()
}

// RecordSecretMigration counts a legacy token row re-encrypted.
func RecordSecretMigration() {
	secretMigrations.Inc()
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
