//nolint:testpackage // requires internal access to unexported types and functions
package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paveg/plotdeck/internal/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("record operation with disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false, nil)

		callCount := 0
		err := collector.RecordOperation("filter", func() error {
			callCount++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record operation with enabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(true, nil)

		err := collector.RecordRows("filter", func() (int, error) {
			time.Sleep(time.Millisecond)
			return 42, nil
		})
		require.NoError(t, err)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.Equal(t, "filter", metrics[0].Operation)
		assert.Equal(t, int64(42), metrics[0].RowsProcessed)
		assert.GreaterOrEqual(t, metrics[0].Duration, time.Millisecond)
		assert.False(t, metrics[0].Failed)
	})

	t.Run("record failing operation", func(t *testing.T) {
		collector := NewMetricsCollector(true, nil)
		boom := errors.New("boom")

		err := collector.RecordOperation("aggregate", func() error { return boom })
		require.ErrorIs(t, err, boom)
		assert.True(t, collector.GetMetrics()[0].Failed)
	})

	t.Run("nil collector runs the operation", func(t *testing.T) {
		var collector *MetricsCollector
		called := false
		require.NoError(t, collector.RecordOperation("x", func() error {
			called = true
			return nil
		}))
		assert.True(t, called)
	})

	t.Run("history is bounded", func(t *testing.T) {
		collector := NewMetricsCollector(true, nil)
		for range maxRecorded + 5 {
			_ = collector.RecordOperation("build", func() error { return nil })
		}
		assert.Len(t, collector.GetMetrics(), maxRecorded)
	})
}

func TestMetricsSummary(t *testing.T) {
	collector := NewMetricsCollector(true, nil)

	assert.Equal(t, 0, collector.GetSummary().TotalOperations)

	_ = collector.RecordRows("filter", func() (int, error) { return 10, nil })
	_ = collector.RecordRows("filter", func() (int, error) { return 5, nil })
	_ = collector.RecordRows("aggregate", func() (int, error) { return 3, errors.New("x") })

	summary := collector.GetSummary()
	assert.Equal(t, 3, summary.TotalOperations)
	assert.Equal(t, int64(18), summary.TotalRows)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, map[string]int{"filter": 2, "aggregate": 1}, summary.OperationCounts)

	collector.Clear()
	assert.Empty(t, collector.GetMetrics())
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := NewMetrics(reg)
	collector := NewMetricsCollector(true, prom)

	_ = collector.RecordRows("filter", func() (int, error) { return 7, nil })
	prom.ObserveRequest("/upload", http.StatusOK, 5*time.Millisecond)
	prom.ObserveUpload("ok")

	assert.InDelta(t, 7, testutil.ToFloat64(prom.stageRows.WithLabelValues("filter")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(prom.httpRequests.WithLabelValues("/upload", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(prom.uploads.WithLabelValues("ok")), 0)

	rec := httptest.NewRecorder()
	prom.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "plotdeck_stage_duration_seconds"))

	var nilMetrics *Metrics
	nilMetrics.ObserveUpload("ok")
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrackMemory(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom := NewMetrics(reg)
	mem := memory.NewTrackingAllocator(nil)
	prom.TrackMemory(mem)

	buf := mem.Allocate(256)
	expected := `
# HELP plotdeck_arrow_allocated_bytes Arrow memory currently held by decoded datasets.
# TYPE plotdeck_arrow_allocated_bytes gauge
plotdeck_arrow_allocated_bytes 256
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "plotdeck_arrow_allocated_bytes"))

	mem.Free(buf)
	count, err := testutil.GatherAndCount(reg, "plotdeck_arrow_allocated_bytes", "plotdeck_arrow_peak_allocated_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.TrackMemory(mem) })
}

func TestHandlers(t *testing.T) {
	collector := NewMetricsCollector(true, nil)
	_ = collector.RecordOperation("build", func() error { return nil })

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(collector)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, true, body["enabled"])
	})

	t.Run("operations", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OperationsHandler(collector)(rec, httptest.NewRequest(http.MethodGet, "/debug/operations", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"operation":"build"`)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(collector)(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
