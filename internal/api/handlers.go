package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/service/contactsearch"
	syncsvc "github.com/growthloop/outreach-sync/internal/service/sync"
	"github.com/growthloop/outreach-sync/internal/service/webhook"
)

// SyncService is the slice of the sync orchestrator the API drives.
type SyncService interface {
	RunSync(ctx context.Context, workspaceID string, opts syncsvc.Options) ([]syncsvc.Report, error)
	Stop(ctx context.Context, workspaceID string, provider domain.Provider) error
	Status(ctx context.Context, workspaceID string, provider domain.Provider) (*domain.APIConnection, error)
}

// WebhookService processes one signed provider delivery.
type WebhookService interface {
	Process(ctx context.Context, provider domain.Provider, body []byte, signature string) (*webhook.Result, error)
}

// ContactSearchService looks a contact up across the workspace's providers.
type ContactSearchService interface {
	Search(ctx context.Context, workspaceID, email string) (*contactsearch.Result, error)
}

// Handlers carries the services behind the HTTP surface.
type Handlers struct {
	auth        *Authenticator
	sync        SyncService
	webhooks    WebhookService
	search      ContactSearchService
	promHandler http.Handler
}

// NewHandlers wires the handler set. gatherer feeds GET /metrics; nil falls
// back to the default Prometheus gatherer.
func NewHandlers(
	auth *Authenticator,
	sync SyncService,
	webhooks WebhookService,
	search ContactSearchService,
	gatherer prometheus.Gatherer,
) *Handlers {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handlers{
		auth:        auth,
		sync:        sync,
		webhooks:    webhooks,
		search:      search,
		promHandler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// Metrics serves the Prometheus exposition endpoint.
//
//	GET /metrics
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
