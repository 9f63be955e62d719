// Package metrics holds the process-wide Prometheus collectors.
//
//	metrics.RecordWebhook("organization.created", metrics.OutcomeApplied, time.Since(start))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeIgnored  = "ignored"
	OutcomeStale    = "stale"
	OutcomeRejected = "rejected" // verification or validation failed
	OutcomeFailed   = "failed"   // persistence error
)

var (
	// WebhookEventsTotal counts webhook deliveries by event type and outcome.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threads_webhook_events_total",
			Help: "Total number of webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// WebhookDuration tracks handler latency per event type.
	WebhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threads_webhook_duration_seconds",
			Help:    "Duration of webhook handling in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"type"},
	)
)

// RecordWebhook records one delivery. An empty eventType (unparseable body)
// is recorded as "unknown".
func RecordWebhook(eventType, outcome string, d time.Duration) {
	if eventType == "" {
		eventType = "unknown"
	}
	WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
	WebhookDuration.WithLabelValues(eventType).Observe(d.Seconds())
}
