package domain

import "time"

// SyncStatus enumerates the lifecycle states of a provider connection's sync.
type SyncStatus string

const (
	SyncPending             SyncStatus = "pending"
	SyncSyncing             SyncStatus = "syncing"
	SyncSuccess             SyncStatus = "success"
	SyncStopped             SyncStatus = "stopped"
	SyncError               SyncStatus = "error"
	SyncPartial             SyncStatus = "partial"
	SyncCompletedWithErrors SyncStatus = "completed_with_errors"
)

// Workspace is the tenant boundary. Every other entity hangs off one.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// APIConnection holds a workspace's credential for one provider plus the
// state of its last/current sync. At most one row exists per
// (workspace, provider).
type APIConnection struct {
	ID             string        `json:"id" db:"id"`
	WorkspaceID    string        `json:"workspace_id" db:"workspace_id"`
	Provider       Provider      `json:"provider" db:"provider"`
	APIKey         string        `json:"-" db:"api_key"`
	IsActive       bool          `json:"is_active" db:"is_active"`
	SyncStatus     SyncStatus    `json:"sync_status" db:"sync_status"`
	SyncError      string        `json:"sync_error" db:"sync_error"`
	SyncProgress   *SyncProgress `json:"sync_progress" db:"sync_progress"`
	LastSyncAt     *time.Time    `json:"last_sync_at" db:"last_sync_at"`
	LastFullSyncAt *time.Time    `json:"last_full_sync_at" db:"last_full_sync_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// CampaignRef is one entry of the campaign list snapshot taken at the start
// of a sync. The snapshot is persisted inside SyncProgress so a continuation
// batch iterates the exact same list in the exact same order.
type CampaignRef struct {
	PlatformID string         `json:"platform_id"`
	Name       string         `json:"name"`
	Status     CampaignStatus `json:"status"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
}

// SyncProgress is the resumable cursor of a sync, persisted as JSON on the
// connection row. It is the only state a continuation batch needs.
type SyncProgress struct {
	BatchIndex          int           `json:"batch_index"`
	CampaignIndex       int           `json:"campaign_index"`
	TotalCampaigns      int           `json:"total_campaigns"`
	CurrentCampaignName string        `json:"current_campaign_name,omitempty"`
	CachedCampaignList  []CampaignRef `json:"cached_campaign_list,omitempty"`
	Step                string        `json:"step,omitempty"`
	Errors              []SyncIssue   `json:"errors,omitempty"`
	LastHeartbeat       *time.Time    `json:"last_heartbeat,omitempty"`
}

// SyncIssue records a campaign-scoped failure that did not abort the run.
type SyncIssue struct {
	PlatformID string    `json:"platform_id"`
	Campaign   string    `json:"campaign"`
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// HeartbeatFresh reports whether the progress heartbeat was written within
// the given window. A stale heartbeat means the previous run died without
// clearing its status.
func (p *SyncProgress) HeartbeatFresh(now time.Time, window time.Duration) bool {
	if p == nil || p.LastHeartbeat == nil {
		return false
	}
	return now.Sub(*p.LastHeartbeat) < window
}
