// Package metrics defines the Prometheus metrics exported by the console
// client. All metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fadjma"

// APIRequestsTotal counts completed pipeline requests.
// Label:
//   - outcome: "ok", "retried", "terminal" or "failed"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests issued through the pipeline, by outcome.",
	},
	[]string{"outcome"},
)

// APIRefreshTotal counts access token refresh attempts.
// Label:
//   - result: "success", "failure" or "missing" (no refresh token stored)
var APIRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_refresh_total",
		Help:      "Total number of access token refresh attempts, by result.",
	},
	[]string{"result"},
)

// APIRequestDuration measures a pipeline request end-to-end, including any
// refresh and retry.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of API requests including refresh and retry.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// SessionTransitionsTotal counts session state changes.
// Label:
//   - to: the state entered ("authenticated" or "anonymous")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by target state.",
	},
	[]string{"to"},
)
