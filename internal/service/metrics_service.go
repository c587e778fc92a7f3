package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-scheduler-api/internal/solver"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the solver and the conflict detection engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	solveDuration     *prometheus.HistogramVec
	solveNodes        prometheus.Counter
	solveBacktracks   prometheus.Counter
	conflictsDetected *prometheus.CounterVec
	pendingConflicts  prometheus.Gauge
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

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_duration_seconds",
		Help:    "Wall-clock duration of solve runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy", "state"})

	solveNodes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solver_nodes_explored_total",
		Help: "Total search nodes explored across solve runs",
	})

	solveBacktracks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solver_backtracks_total",
		Help: "Total backtracks across solve runs",
	})

	conflictsDetected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflicts_detected_total",
		Help: "Total conflicts persisted by the detection engine",
	}, []string{"type"})

	pendingConflicts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "conflicts_pending",
		Help: "Number of conflicts currently pending resolution",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, solveDuration, solveNodes, solveBacktracks, conflictsDetected, pendingConflicts, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		solveDuration:     solveDuration,
		solveNodes:        solveNodes,
		solveBacktracks:   solveBacktracks,
		conflictsDetected: conflictsDetected,
		pendingConflicts:  pendingConflicts,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveSolve records the performance summary of one solve run.
func (m *MetricsService) ObserveSolve(stats solver.Stats) {
	if m == nil {
		return
	}
	m.solveDuration.WithLabelValues(string(stats.Strategy), string(stats.State)).Observe(stats.Duration.Seconds())
	m.solveNodes.Add(float64(stats.NodesExplored))
	m.solveBacktracks.Add(float64(stats.Backtracks))
}

// ObserveConflictDetected counts one persisted conflict by type.
func (m *MetricsService) ObserveConflictDetected(conflictType string) {
	if m == nil {
		return
	}
	m.conflictsDetected.WithLabelValues(conflictType).Inc()
}

// SetPendingConflicts updates the pending conflict gauge.
func (m *MetricsService) SetPendingConflicts(count int) {
	if m == nil {
		return
	}
	m.pendingConflicts.Set(float64(count))
}
