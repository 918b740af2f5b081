// Package metrics exposes Prometheus instrumentation for the sync and
// webhook paths. All methods are nil-safe so wiring stays optional in tests
// and in the stub binaries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the service updates.
type Metrics struct {
	providerRequests *prometheus.CounterVec
	providerWait     *prometheus.HistogramVec
	syncRuns         *prometheus.CounterVec
	campaignsSynced  *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
}

// New registers the collectors on reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		providerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outreach_provider_requests_total",
			Help: "Outbound provider API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "outreach_provider_wait_seconds",
			Help:    "Time spent waiting for a rate-limit slot before a provider call.",
			Buckets: []float64{0.01, 0.1, 0.25, 0.5, 1, 3, 5, 10, 15},
		}, []string{"key"}),
		syncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outreach_sync_runs_total",
			Help: "Sync batches by provider and result status.",
		}, []string{"provider", "result"}),
		campaignsSynced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outreach_campaigns_synced_total",
			Help: "Campaigns fully processed by sync batches.",
		}, []string{"provider"}),
		webhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outreach_webhook_events_total",
			Help: "Webhook events by provider, type, and outcome.",
		}, []string{"provider", "event_type", "outcome"}),
	}
}

// IncProviderRequest counts one provider API call outcome ("ok", "error",
// "not_found").
func (m *Metrics) IncProviderRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveProviderWait records how long a call waited for its spacing slot.
func (m *Metrics) ObserveProviderWait(key string, waited time.Duration) {
	if m == nil {
		return
	}
	m.providerWait.WithLabelValues(key).Observe(waited.Seconds())
}

// IncSyncRun counts a finished sync batch ("success", "partial", "error",
// "completed_with_errors", "skipped").
func (m *Metrics) IncSyncRun(provider, result string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(provider, result).Inc()
}

// AddCampaignsSynced counts campaigns processed in a batch.
func (m *Metrics) AddCampaignsSynced(provider string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.campaignsSynced.WithLabelValues(provider).Add(float64(n))
}

// IncWebhookEvent counts one webhook dispatch outcome ("processed",
// "stored", "duplicate", "invalid", "rejected").
func (m *Metrics) IncWebhookEvent(provider, eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(provider, eventType, outcome).Inc()
}
