package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the enrollment decision engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	enrollDecisions *prometheus.CounterVec
	enrollDuration  prometheus.Observer
	seatContention  prometheus.Histogram
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

	enrollDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enroll_decisions_total",
		Help: "Enrollment decisions by outcome",
	}, []string{"result"})

	enrollDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enroll_decision_duration_seconds",
		Help:    "Latency of enrollment decisions",
		Buckets: prometheus.DefBuckets,
	})

	seatContention := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seat_reservation_wait_seconds",
		Help:    "Time spent acquiring and holding a section's seat lock",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, enrollDecisions, enrollDuration, seatContention, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		enrollDecisions: enrollDecisions,
		enrollDuration:  enrollDuration,
		seatContention:  seatContention,
	}
}

// Handler exposes the /metrics endpoint handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveEnrollDecision records one enrollment decision outcome.
func (s *MetricsService) ObserveEnrollDecision(result models.EnrollResult, duration time.Duration) {
	s.enrollDecisions.WithLabelValues(string(result)).Inc()
	s.enrollDuration.Observe(duration.Seconds())
}

// ObserveSeatWait records time spent acquiring a section's seat lock.
func (s *MetricsService) ObserveSeatWait(duration time.Duration) {
	s.seatContention.Observe(duration.Seconds())
}
