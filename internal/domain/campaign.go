package domain

import "time"

// CampaignStatus enumerates the unified lifecycle states of a campaign.
// Provider-specific statuses are mapped into this set by the adapters.
type CampaignStatus string

const (
	CampaignActive   CampaignStatus = "active"
	CampaignPaused   CampaignStatus = "paused"
	CampaignStopped  CampaignStatus = "stopped"
	CampaignDraft    CampaignStatus = "draft"
	CampaignArchived CampaignStatus = "archived"
	CampaignUnknown  CampaignStatus = "unknown"
)

// Campaign is the unified representation of a provider campaign or sequence.
// Unique by (workspace, provider, platform_id). The total_* counters are
// lifetime values and only move forward outside an explicit reset; webhook
// handlers bump them through atomic database functions, never in app code.
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	WorkspaceID string         `json:"workspace_id" db:"workspace_id"`
	Provider    Provider       `json:"provider" db:"provider"`
	PlatformID  string         `json:"platform_id" db:"platform_id"`
	Name        string         `json:"name" db:"name"`
	Status      CampaignStatus `json:"status" db:"status"`

	TotalSent       int64 `json:"total_sent" db:"total_sent"`
	TotalOpened     int64 `json:"total_opened" db:"total_opened"`
	TotalClicked    int64 `json:"total_clicked" db:"total_clicked"`
	TotalReplied    int64 `json:"total_replied" db:"total_replied"`
	TotalBounced    int64 `json:"total_bounced" db:"total_bounced"`
	PositiveReplies int64 `json:"positive_replies" db:"positive_replies"`
	Meetings        int64 `json:"meetings" db:"meetings"`

	PlatformCreatedAt *time.Time `json:"platform_created_at" db:"platform_created_at"`
	LastSyncedAt      *time.Time `json:"last_synced_at" db:"last_synced_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// SequenceStep is one email in a campaign's ordered cadence. Unique by
// (campaign, step_number); step numbers are 1-based.
type SequenceStep struct {
	ID          string    `json:"id" db:"id"`
	CampaignID  string    `json:"campaign_id" db:"campaign_id"`
	StepNumber  int       `json:"step_number" db:"step_number"`
	Name        string    `json:"name" db:"name"`
	Subject     string    `json:"subject" db:"subject"`
	Body        string    `json:"body" db:"body"`
	BodyPreview string    `json:"body_preview" db:"body_preview"`
	DelayDays   int       `json:"delay_days" db:"delay_days"`
	Variables   []string  `json:"variables" db:"variables"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
