package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. All record methods are
// safe on a nil receiver so tests can skip metrics wiring entirely.
type Metrics struct {
	WebhookEventsTotal      *prometheus.CounterVec
	PayoutsChainedTotal     prometheus.Counter
	ChainFailuresTotal      *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Inbound provider webhook events by type",
			},
			[]string{"event_type"},
		),
		PayoutsChainedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payouts_chained_total",
				Help: "Off-ramp payouts successfully chained from completed payins",
			},
		),
		ChainFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chain_failures_total",
				Help: "Auto-payout chain failures by stage",
			},
			[]string{"stage"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_request_duration_seconds",
				Help:    "Latency of outbound provider API calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) RecordWebhookEvent(eventType string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) RecordPayoutChained() {
	if m == nil {
		return
	}
	m.PayoutsChainedTotal.Inc()
}

func (m *Metrics) RecordChainFailure(stage string) {
	if m == nil {
		return
	}
	m.ChainFailuresTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveProviderRequest(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}
