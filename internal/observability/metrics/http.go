package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	batchesAnalyzedTotal *prometheus.CounterVec
	filesClassifiedTotal *prometheus.CounterVec
	filesExcludedTotal   *prometheus.CounterVec
	analysisDuration     *prometheus.HistogramVec
	plansSubmittedTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docorg",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docorg",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchesAnalyzedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "batch",
			Name:      "analyzed_total",
			Help:      "Total completed batch analyses.",
		},
		[]string{"service"},
	)
	filesClassifiedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "batch",
			Name:      "files_classified_total",
			Help:      "Total classified files by resulting partition.",
		},
		[]string{"service", "partition"},
	)
	filesExcludedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "batch",
			Name:      "files_excluded_total",
			Help:      "Total files dropped by the reserved-subtree filter.",
		},
		[]string{"service"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docorg",
			Subsystem: "batch",
			Name:      "analysis_duration_seconds",
			Help:      "Batch analysis duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	plansSubmittedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docorg",
			Subsystem: "batch",
			Name:      "plans_submitted_total",
			Help:      "Total move plans handed to the worker queue.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		batchesAnalyzedTotal,
		filesClassifiedTotal,
		filesExcludedTotal,
		analysisDuration,
		plansSubmittedTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		service:              service,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		batchesAnalyzedTotal: batchesAnalyzedTotal,
		filesClassifiedTotal: filesClassifiedTotal,
		filesExcludedTotal:   filesExcludedTotal,
		analysisDuration:     analysisDuration,
		plansSubmittedTotal:  plansSubmittedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/batches/"):
		rest := strings.TrimPrefix(path, "/v1/batches/")
		if _, action, ok := strings.Cut(rest, "/"); ok {
			return "/v1/batches/{batch_id}/" + action
		}
		return "/v1/batches/{batch_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAnalysis(autoFiles, manualFiles, excluded int, duration time.Duration) {
	m.batchesAnalyzedTotal.WithLabelValues(m.service).Inc()
	m.analysisDuration.WithLabelValues(m.service).Observe(duration.Seconds())
	if autoFiles > 0 {
		m.filesClassifiedTotal.WithLabelValues(m.service, "auto").Add(float64(autoFiles))
	}
	if manualFiles > 0 {
		m.filesClassifiedTotal.WithLabelValues(m.service, "manual").Add(float64(manualFiles))
	}
	if excluded > 0 {
		m.filesExcludedTotal.WithLabelValues(m.service).Add(float64(excluded))
	}
}

func (m *HTTPServerMetrics) RecordPlanSubmitted() {
	m.plansSubmittedTotal.WithLabelValues(m.service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
