package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "basiq_client",
			Name:      "requests_total",
			Help:      "Basiq API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "basiq_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of Basiq API calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
