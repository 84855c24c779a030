package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/paveg/plotdeck/internal/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plotdeck"

// Metrics holds the Prometheus instruments of the service
type Metrics struct {
	reg *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageRows     *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	uploads       *prometheus.CounterVec
}

// NewMetrics creates the instruments and registers them on reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{}

	m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each chart pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"stage", "outcome"})
	m.stageRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_rows_total",
		Help:      "Rows produced by each chart pipeline stage.",
	}, []string{"stage"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	m.uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Uploaded files by outcome.",
	}, []string{"outcome"})

	if reg != nil {
		m.reg = reg
		reg.MustRegister(
			m.stageDuration,
			m.stageRows,
			m.httpRequests,
			m.httpDuration,
			m.uploads,
		)
	}
	return m
}

func (m *Metrics) observeStage(op OperationMetrics) {
	if m == nil {
		return
	}
	outcome := "ok"
	if op.Failed {
		outcome = "error"
	}
	m.stageDuration.WithLabelValues(op.Operation, outcome).Observe(op.Duration.Seconds())
	if op.RowsProcessed > 0 {
		m.stageRows.WithLabelValues(op.Operation).Add(float64(op.RowsProcessed))
	}
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveUpload counts an upload by outcome, e.g. "ok" or an error kind
func (m *Metrics) ObserveUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// Handler serves the registered metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// TrackMemory exports the live and peak Arrow bytes held through mem
func (m *Metrics) TrackMemory(mem *memory.TrackingAllocator) {
	if m == nil || m.reg == nil || mem == nil {
		return
	}
	m.reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arrow_allocated_bytes",
			Help:      "Arrow memory currently held by decoded datasets.",
		}, func() float64 { return float64(mem.AllocatedBytes()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arrow_peak_allocated_bytes",
			Help:      "High-water mark of Arrow memory held by decoded datasets.",
		}, func() float64 { return float64(mem.PeakBytes()) }),
	)
}
