package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook ingestion outcomes used as the "result" label.
const (
	ResultProcessed = "processed"
	ResultDuplicate = "duplicate"
	ResultDiscarded = "discarded"
	ResultRejected  = "rejected"
	ResultRetryable = "retryable"
)

var (
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of webhook notifications processed, by entity and outcome",
		},
		[]string{"entity", "result"},
	)

	WebhookProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_duration_seconds",
			Help:    "Webhook reconciliation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity"},
	)

	RefundsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_created_total",
			Help: "Total number of refund requests submitted to the gateway",
		},
		[]string{"kind"},
	)
)
