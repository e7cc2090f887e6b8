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

// HTTPServerMetrics carries the API-process registry: request-level series
// plus lifecycle transition and delivery counters.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	transitionTotal    *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	deliveryTotal      *prometheus.CounterVec
	readinessTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appeals",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "appeals",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "appeals",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	transitionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appeals",
			Subsystem: "letter",
			Name:      "transitions_total",
			Help:      "Total letter lifecycle transitions by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	transitionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "appeals",
			Subsystem: "letter",
			Name:      "transition_duration_seconds",
			Help:      "Letter lifecycle transition duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	deliveryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appeals",
			Subsystem: "delivery",
			Name:      "emails_total",
			Help:      "Total appeal delivery attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)
	readinessTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appeals",
			Subsystem: "readiness",
			Name:      "checks_total",
			Help:      "Total readiness checks by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		transitionTotal,
		transitionDuration,
		deliveryTotal,
		readinessTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		transitionTotal:    transitionTotal,
		transitionDuration: transitionDuration,
		deliveryTotal:      deliveryTotal,
		readinessTotal:     readinessTotal,
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
	if rest, ok := strings.CutPrefix(path, "/v1/letters/"); ok {
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/letters/{letter_id}/" + rest[idx+1:]
		}
		return "/v1/letters/{letter_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordTransition(service, operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.transitionTotal.WithLabelValues(service, operation, outcome).Inc()
	m.transitionDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordDelivery(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.deliveryTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordReadiness(service string, allPassed bool) {
	result := "pass"
	if !allPassed {
		result = "fail"
	}
	m.readinessTotal.WithLabelValues(service, result).Inc()
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
