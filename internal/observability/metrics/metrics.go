package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmap_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusmap_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmap_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmap_authz_denials_total",
		Help: "Count of rejected requests by reason",
	}, []string{"reason"})

	externalRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusmap_external_request_duration_seconds",
		Help:    "Duration of calls to translate and chat model backends",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "result"})

	imagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusmap_images_stored_total",
		Help: "Count of event images written to disk",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin increments the login counter with a "success" or "failure" result.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveAuthzDenial increments the denial counter ("unauthenticated" or "forbidden").
func ObserveAuthzDenial(reason string) {
	authzDenials.WithLabelValues(reason).Inc()
}

// ObserveExternalRequest records one outbound backend call.
func ObserveExternalRequest(backend, result string, duration time.Duration) {
	externalRequestDuration.WithLabelValues(backend, result).Observe(duration.Seconds())
}

// ObserveImageStored increments the stored image counter.
func ObserveImageStored() {
	imagesStored.Inc()
}
