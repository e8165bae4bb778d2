package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wardrobe_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	pollPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_poll_passes_total",
			Help: "Total polling passes by outcome",
		},
		[]string{"outcome"},
	)

	pollPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wardrobe_poll_pass_duration_seconds",
			Help:    "Duration of one fetch-diff-notify pass",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
		},
	)

	eventsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_events_detected_total",
			Help: "Diff events detected by type",
		},
		[]string{"type"},
	)

	eventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_events_delivered_total",
			Help: "Events handed to delivery channels by result",
		},
		[]string{"result"},
	)

	backendFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wardrobe_backend_fetch_failures_total",
			Help: "Failed reservation fetches from the rental backend",
		},
	)

	breakerRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wardrobe_breaker_rejections_total",
			Help: "Polling passes skipped because the circuit breaker was open",
		},
	)

	rateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_rate_limit_rejections_total",
			Help: "Requests rejected by the ops API rate limiter",
		},
		[]string{"key"},
	)

	trackedReservations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wardrobe_tracked_reservations",
			Help: "Reservations in the most recent fetched snapshot",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPollPass records the outcome of one polling pass.
func RecordPollPass(outcome string, duration time.Duration) {
	pollPassesTotal.WithLabelValues(outcome).Inc()
	pollPassDuration.Observe(duration.Seconds())
}

// RecordEventDetected records a detected diff event.
func RecordEventDetected(eventType string) {
	eventsDetected.WithLabelValues(eventType).Inc()
}

// RecordEventDelivered records a delivery attempt result.
func RecordEventDelivered(result string) {
	eventsDelivered.WithLabelValues(result).Inc()
}

// RecordBackendFetchFailure records a failed backend fetch.
func RecordBackendFetchFailure() {
	backendFetchFailures.Inc()
}

// RecordBreakerRejection records a pass skipped by the open breaker.
func RecordBreakerRejection() {
	breakerRejections.Inc()
}

// RecordRateLimitRejection records a rate limit rejection
func RecordRateLimitRejection(key string) {
	rateLimitRejections.WithLabelValues(key).Inc()
}

// SetTrackedReservations sets the size of the latest snapshot.
func SetTrackedReservations(count int) {
	trackedReservations.Set(float64(count))
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		RecordRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}
