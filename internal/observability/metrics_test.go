package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordImportRun(t *testing.T) {
	success := testutil.ToFloat64(importRuns.WithLabelValues(ResultSuccess))
	failure := testutil.ToFloat64(importRuns.WithLabelValues(ResultFailure))

	RecordImportRun(nil, 2*time.Second)
	RecordImportRun(errors.New("boom"), time.Second)

	assert.Equal(t, success+1, testutil.ToFloat64(importRuns.WithLabelValues(ResultSuccess)))
	assert.Equal(t, failure+1, testutil.ToFloat64(importRuns.WithLabelValues(ResultFailure)))
}

func TestRecordImportPage(t *testing.T) {
	pages := testutil.ToFloat64(importPages)
	records := testutil.ToFloat64(importRecords)

	RecordImportPage(200)
	RecordImportPage(50)

	assert.Equal(t, pages+2, testutil.ToFloat64(importPages))
	assert.Equal(t, records+250, testutil.ToFloat64(importRecords))
}

func TestCountersIncrement(t *testing.T) {
	limited := testutil.ToFloat64(rateLimited)
	migrations := testutil.ToFloat64(secretMigrations)
	refreshFail := testutil.ToFloat64(tokenRefreshes.WithLabelValues(ResultFailure))

	RecordRateLimited()
	RecordSecretMigration()
	RecordTokenRefresh(errors.New("invalid_grant"))

	assert.Equal(t, limited+1, testutil.ToFloat64(rateLimited))
	assert.Equal(t, migrations+1, testutil.ToFloat64(secretMigrations))
	assert.Equal(t, refreshFail+1, testutil.ToFloat64(tokenRefreshes.WithLabelValues(ResultFailure)))
}

func TestMetricNames(t *testing.T) {
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "stride_sync_import_pages_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
