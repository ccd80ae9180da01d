package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	syncTotal     *prometheus.CounterVec
	syncDuration  *prometheus.HistogramVec
	syncInFlight  prometheus.Gauge
	customerTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	syncTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "worker",
			Name:      "sync_runs_total",
			Help:      "Total synchronization runs by status.",
		},
		[]string{"service", "status"},
	)
	syncDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oin",
			Subsystem: "worker",
			Name:      "sync_duration_seconds",
			Help:      "Synchronization run duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	syncInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oin",
			Subsystem: "worker",
			Name:      "sync_in_flight",
			Help:      "Number of in-flight synchronization runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	customerTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oin",
			Subsystem: "worker",
			Name:      "customers_processed_total",
			Help:      "Total customers processed by outcome (created or updated).",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(syncTotal, syncDuration, syncInFlight, customerTotal)

	return &WorkerMetrics{
		registry:      registry,
		syncTotal:     syncTotal,
		syncDuration:  syncDuration,
		syncInFlight:  syncInFlight,
		customerTotal: customerTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartSync() {
	m.syncInFlight.Inc()
}

func (m *WorkerMetrics) FinishSync(service string, duration time.Duration, err error) {
	m.syncInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.syncTotal.WithLabelValues(service, status).Inc()
	m.syncDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveCustomers(service string, updated, created int) {
	m.customerTotal.WithLabelValues(service, "updated").Add(float64(updated))
	m.customerTotal.WithLabelValues(service, "created").Add(float64(created))
}
