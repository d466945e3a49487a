package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result
	// (success|failure|blocked).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// EndpointSuccess counts successful completions per endpoint.
	EndpointSuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymapp_endpoint_success_total",
			Help: "Successful requests per endpoint",
		},
		[]string{"endpoint"},
	)

	// TokensIssued counts bearer tokens minted at login.
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymapp_tokens_issued_total",
			Help: "Total number of bearer tokens issued",
		},
	)

	// TokensRevoked counts tokens revoked at logout.
	TokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymapp_tokens_revoked_total",
			Help: "Total number of bearer tokens revoked",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymapp_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
