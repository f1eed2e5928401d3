// Package metrics provides Prometheus metrics for the Briar service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchRequestsTotal tracks match runs by outcome
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "briar",
			Subsystem: "matching",
			Name:      "requests_total",
			Help:      "Total number of match runs by outcome",
		},
		[]string{"status"},
	)

	// MatchDuration tracks match run duration in seconds
	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "briar",
			Subsystem: "matching",
			Name:      "duration_seconds",
			Help:      "Duration of match runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// MatchCandidates tracks how many candidates each run scored
	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "briar",
			Subsystem: "matching",
			Name:      "candidates",
			Help:      "Number of candidates scored per match run",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// OutboundMessagesTotal tracks composed messages by delivery status
	OutboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "briar",
			Subsystem: "outreach",
			Name:      "messages_total",
			Help:      "Total number of outbound messages by status",
		},
		[]string{"status"},
	)

	// RateLimitHits tracks outbound sends rejected by the rate limit
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "briar",
			Subsystem: "ratelimit",
			Name:      "hits_total",
			Help:      "Total number of sends rejected by the rate limit",
		},
	)
)
