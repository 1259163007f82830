package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	planTotal    *prometheus.CounterVec
	planDuration *prometheus.HistogramVec
	planInFlight prometheus.Gauge
	moveTotal    *prometheus.CounterVec
	queueLag     *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	planTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "worker",
			Name:      "plan_process_total",
			Help:      "Total executed move plans by status.",
		},
		[]string{"service", "status"},
	)
	planDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docorg",
			Subsystem: "worker",
			Name:      "plan_process_duration_seconds",
			Help:      "Move plan execution duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	planInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docorg",
			Subsystem: "worker",
			Name:      "plan_process_in_flight",
			Help:      "Number of in-flight move plan executions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	moveTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "worker",
			Name:      "file_move_total",
			Help:      "Total executed file moves by status.",
		},
		[]string{"service", "status"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docorg",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between plan submission and execution start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(planTotal, planDuration, planInFlight, moveTotal, queueLag)

	return &WorkerMetrics{
		registry:     registry,
		service:      service,
		planTotal:    planTotal,
		planDuration: planDuration,
		planInFlight: planInFlight,
		moveTotal:    moveTotal,
		queueLag:     queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartPlan() {
	m.planInFlight.Inc()
}

func (m *WorkerMetrics) FinishPlan(duration time.Duration, err error) {
	m.planInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.planTotal.WithLabelValues(m.service, status).Inc()
	m.planDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordMoves(succeeded, failed int) {
	if succeeded > 0 {
		m.moveTotal.WithLabelValues(m.service, "success").Add(float64(succeeded))
	}
	if failed > 0 {
		m.moveTotal.WithLabelValues(m.service, "error").Add(float64(failed))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
