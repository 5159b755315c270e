// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollopollo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pollopollo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	applicationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollopollo",
			Subsystem: "applications",
			Name:      "transitions_total",
			Help:      "Application status changes committed.",
		},
		[]string{"from", "to"},
	)

	applicationSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollopollo",
			Subsystem: "applications",
			Name:      "submissions_total",
			Help:      "Application submissions by outcome.",
		},
		[]string{"outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollopollo",
			Subsystem: "notifications",
			Name:      "emails_total",
			Help:      "Notification emails attempted, by template and result.",
		},
		[]string{"template", "result"},
	)

	withdrawals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollopollo",
			Subsystem: "wallet",
			Name:      "withdrawals_total",
			Help:      "Withdrawal requests sent to the wallet, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		applicationTransitions,
		applicationSubmissions,
		notifications,
		withdrawals,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordTransition(from, to string) {
	applicationTransitions.WithLabelValues(from, to).Inc()
}

func RecordSubmission(outcome string) {
	applicationSubmissions.WithLabelValues(outcome).Inc()
}

func RecordNotification(template string, sent bool) {
	notifications.WithLabelValues(template, resultLabel(sent)).Inc()
}

func RecordWithdrawal(ok bool) {
	withdrawals.WithLabelValues(resultLabel(ok)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
