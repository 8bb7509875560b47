package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the lifecycle
// engine: gate decisions, consolidation throughput and reopening windows.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	gateDecisions        *prometheus.CounterVec
	consolidationRecords prometheus.Counter
	consolidationErrors  prometheus.Counter
	consolidationRuntime prometheus.Histogram
	windowsExpired       prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	gateDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "closure_gate_decisions_total",
		Help: "Write gate decisions by outcome",
	}, []string{"decision", "reason"})

	consolidationRecords := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consolidation_records_created_total",
		Help: "Historical records created by consolidation runs",
	})

	consolidationErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consolidation_row_errors_total",
		Help: "Per-row errors collected during consolidation runs",
	})

	consolidationRuntime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "consolidation_duration_seconds",
		Help:    "Wall time of consolidation runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	windowsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reopening_windows_expired_total",
		Help: "Reopening windows terminated by the expiry scheduler",
	})

	registry.MustRegister(requestDuration, requestTotal, gateDecisions,
		consolidationRecords, consolidationErrors, consolidationRuntime, windowsExpired)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		gateDecisions:        gateDecisions,
		consolidationRecords: consolidationRecords,
		consolidationErrors:  consolidationErrors,
		consolidationRuntime: consolidationRuntime,
		windowsExpired:       windowsExpired,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return promhttp.Handler()
	}
	return s.handler
}

// ObserveRequest records one HTTP request.
func (s *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	if s == nil {
		return
	}
	s.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveGate records a gate decision.
func (s *MetricsService) ObserveGate(decision, reason string) {
	if s == nil {
		return
	}
	s.gateDecisions.WithLabelValues(decision, reason).Inc()
}

// ObserveConsolidation records the outcome of one consolidation run.
func (s *MetricsService) ObserveConsolidation(created, rowErrors int, duration time.Duration) {
	if s == nil {
		return
	}
	s.consolidationRecords.Add(float64(created))
	s.consolidationErrors.Add(float64(rowErrors))
	s.consolidationRuntime.Observe(duration.Seconds())
}

// ObserveWindowExpiry records windows terminated by the scheduler.
func (s *MetricsService) ObserveWindowExpiry(count int) {
	if s == nil {
		return
	}
	s.windowsExpired.Add(float64(count))
}
