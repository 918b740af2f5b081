package sync

import (
	"context"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// ConnectionStore is the connection state the orchestrator reads and writes.
type ConnectionStore interface {
	// Get returns the workspace's connection for the provider, or nil when
	// none exists.
	Get(ctx context.Context, workspaceID string, provider domain.Provider) (*domain.APIConnection, error)

	// UpdateStatus sets sync_status and sync_error.
	UpdateStatus(ctx context.Context, id string, status domain.SyncStatus, syncErr string) error

	// UpdateProgress persists the resumable cursor.
	UpdateProgress(ctx context.Context, id string, p *domain.SyncProgress) error

	// MarkSynced stamps last_sync_at, and last_full_sync_at when full.
	MarkSynced(ctx context.Context, id string, full bool, at time.Time) error
}

// CampaignStore is the campaign persistence the orchestrator needs.
type CampaignStore interface {
	// Upsert inserts or refreshes a campaign by (workspace, provider,
	// platform_id) and reports whether the row is new.
	Upsert(ctx context.Context, c *domain.Campaign) (string, bool, error)

	// UpdateTotals overwrites the lifetime counters with a fresh snapshot.
	UpdateTotals(ctx context.Context, id string, c domain.LifetimeCounters) error

	// DeleteByProvider removes every campaign of the provider in the
	// workspace, cascading to their dependents.
	DeleteByProvider(ctx context.Context, workspaceID string, provider domain.Provider) (int64, error)
}

// StepStore persists campaign sequence steps.
type StepStore interface {
	// Replace swaps the campaign's step set atomically.
	Replace(ctx context.Context, campaignID string, steps []domain.SequenceStep) error
}

// MetricStore is the metric persistence the orchestrator needs.
type MetricStore interface {
	// GetCumulative returns the stored snapshot, or nil on first sync.
	GetCumulative(ctx context.Context, campaignID string) (*domain.CampaignCumulative, error)

	// UpsertCumulative persists a fresh snapshot.
	UpsertCumulative(ctx context.Context, c *domain.CampaignCumulative) error

	// AddDaily adds a delta to the campaign's daily row.
	AddDaily(ctx context.Context, m *domain.CampaignDailyMetric) error

	// RollupWorkspaceDaily rebuilds workspace-level daily aggregates from
	// the campaign rows since the given date.
	RollupWorkspaceDaily(ctx context.Context, workspaceID string, provider domain.Provider, since time.Time) error

	// DeleteWorkspaceDaily clears the provider's workspace aggregates. Used
	// by reset; campaign-level rows go away with their campaigns.
	DeleteWorkspaceDaily(ctx context.Context, workspaceID string, provider domain.Provider) error
}
