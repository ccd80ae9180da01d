package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	insightsServedTotal   *prometheus.CounterVec
	insufficientDataTotal *prometheus.CounterVec
	syncRequestsTotal     *prometheus.CounterVec
	reportDownloadsTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oin",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	insightsServedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "insights",
			Name:      "served_total",
			Help:      "Total customer insight responses served.",
		},
		[]string{"service"},
	)
	insufficientDataTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "insights",
			Name:      "insufficient_data_total",
			Help:      "Total served categories lacking enough orders for a prediction.",
		},
		[]string{"service"},
	)
	syncRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "sync",
			Name:      "requests_total",
			Help:      "Total sync runs requested through the API.",
		},
		[]string{"service"},
	)
	reportDownloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "reports",
			Name:      "downloads_total",
			Help:      "Total prediction report downloads.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		insightsServedTotal, insufficientDataTotal, syncRequestsTotal, reportDownloadsTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		insightsServedTotal:   insightsServedTotal,
		insufficientDataTotal: insufficientDataTotal,
		syncRequestsTotal:     syncRequestsTotal,
		reportDownloadsTotal:  reportDownloadsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(service, method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RequestStarted() {
	m.requestInFlight.Inc()
}

func (m *HTTPServerMetrics) RequestFinished() {
	m.requestInFlight.Dec()
}

func (m *HTTPServerMetrics) ObserveInsights(service string, insufficientCategories int) {
	m.insightsServedTotal.WithLabelValues(service).Inc()
	if insufficientCategories > 0 {
		m.insufficientDataTotal.WithLabelValues(service).Add(float64(insufficientCategories))
	}
}

func (m *HTTPServerMetrics) ObserveSyncRequested(service string) {
	m.syncRequestsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) ObserveReportDownload(service string) {
	m.reportDownloadsTotal.WithLabelValues(service).Inc()
}

// MetricsMiddleware instruments a handler with request totals, durations and
// the in-flight gauge.
func (m *HTTPServerMetrics) MetricsMiddleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestStarted()
		defer m.RequestFinished()

		start := time.Now()
		recorder := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)
		m.ObserveRequest(service, r.Method, r.URL.Path, recorder.statusCode, time.Since(start))
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *metricsRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
