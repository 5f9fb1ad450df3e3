package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edupulse/presence-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the attendance
// pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	persistFailures prometheus.Counter
	tokensIssued    prometheus.Counter
	linkResolutions *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
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

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_verifications_total",
		Help: "Proximity verification verdicts by status",
	}, []string{"status"})

	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verification_persist_failures_total",
		Help: "Verdict or audit writes that failed after a scan was accepted",
	})

	tokensIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_tokens_issued_total",
		Help: "Attendance session tokens issued",
	})

	linkResolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "device_link_resolutions_total",
		Help: "Device link requests resolved by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, verifications, persistFailures, tokensIssued, linkResolutions, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		verifications:   verifications,
		persistFailures: persistFailures,
		tokensIssued:    tokensIssued,
		linkResolutions: linkResolutions,
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
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordVerification counts one analyzer verdict.
func (m *MetricsService) RecordVerification(status models.VerificationStatus) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(string(status)).Inc()
}

// RecordPersistFailure counts a swallowed verdict or audit write failure.
func (m *MetricsService) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// RecordTokenIssued counts one issued session token.
func (m *MetricsService) RecordTokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

// RecordLinkResolution counts one resolved device link request.
func (m *MetricsService) RecordLinkResolution(status models.DeviceLinkStatus) {
	if m == nil {
		return
	}
	m.linkResolutions.WithLabelValues(string(status)).Inc()
}
