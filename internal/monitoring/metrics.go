// Package monitoring times pipeline stages and exposes them as Prometheus
// metrics and as a short in-memory history.
package monitoring

import (
	"sync"
	"time"
)

// maxRecorded bounds the in-memory operation history
const maxRecorded = 1024

// OperationMetrics represents the measurements of a single stage run
type OperationMetrics struct {
	Operation     string        `json:"operation"`
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	Failed        bool          `json:"failed"`
	At            time.Time     `json:"at"`
}

// MetricsCollector records stage timings. A nil *Metrics keeps the history
// only; a disabled collector just runs the operations.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool
	prom    *Metrics
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(enabled bool, prom *Metrics) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]OperationMetrics, 0),
		enabled: enabled,
		prom:    prom,
	}
}

// IsEnabled returns whether metrics collection is enabled
func (mc *MetricsCollector) IsEnabled() bool {
	if mc == nil {
		return false
	}
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// RecordOperation executes fn and records its duration under operation
func (mc *MetricsCollector) RecordOperation(operation string, fn func() error) error {
	return mc.RecordRows(operation, func() (int, error) {
		return 0, fn()
	})
}

// RecordRows executes fn and records its duration and the number of rows
// it reports under operation
func (mc *MetricsCollector) RecordRows(operation string, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	start := time.Now()
	rows, err := fn()
	duration := time.Since(start)

	m := OperationMetrics{
		Operation:     operation,
		Duration:      duration,
		RowsProcessed: int64(rows),
		Failed:        err != nil,
		At:            start,
	}

	mc.mu.Lock()
	if len(mc.metrics) == maxRecorded {
		mc.metrics = append(mc.metrics[:0], mc.metrics[1:]...)
	}
	mc.metrics = append(mc.metrics, m)
	mc.mu.Unlock()

	mc.prom.observeStage(m)
	return err
}

// GetMetrics returns a copy of all collected metrics
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// GetSummary returns a summary of collected metrics
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{OperationCounts: map[string]int{}}
	}

	var totalDuration time.Duration
	var totalRows int64
	var failures int
	operationCounts := make(map[string]int)

	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		totalRows += metric.RowsProcessed
		operationCounts[metric.Operation]++
		if metric.Failed {
			failures++
		}
	}

	return MetricsSummary{
		TotalOperations: len(mc.metrics),
		TotalDuration:   totalDuration,
		TotalRows:       totalRows,
		Failures:        failures,
		OperationCounts: operationCounts,
		AverageDuration: totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics
type MetricsSummary struct {
	TotalOperations int            `json:"total_operations"`
	TotalDuration   time.Duration  `json:"total_duration"`
	TotalRows       int64          `json:"total_rows"`
	Failures        int            `json:"failures"`
	OperationCounts map[string]int `json:"operation_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
}
