package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "davspay"

// Registry holds every collector exposed on /metrics
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts handled requests by method, route template and status
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, partitioned by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by method and route template
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// OTPRequestsTotal counts calls to the SMS OTP provider by operation and outcome
	OTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Calls to the OTP provider, partitioned by operation and outcome.",
	}, []string{"operation", "outcome"})

	// AuthAttemptsTotal counts register/login attempts by outcome
	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Registration and login attempts, partitioned by operation and outcome.",
	}, []string{"operation", "outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OTPRequestsTotal,
		AuthAttemptsTotal,
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveOTP records one OTP provider call
func ObserveOTP(operation, outcome string) {
	OTPRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveAuth records one register or login attempt
func ObserveAuth(operation, outcome string) {
	AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}
