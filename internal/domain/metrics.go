package domain

import "time"

// LifetimeCounters is a provider's lifetime totals for one campaign at the
// moment of a fetch. Adapters normalize their wire formats into this.
type LifetimeCounters struct {
	Sent       int64 `json:"sent"`
	Opened     int64 `json:"opened"`
	Clicked    int64 `json:"clicked"`
	Replied    int64 `json:"replied"`
	Bounced    int64 `json:"bounced"`
	Interested int64 `json:"interested"`
}

// IsZero reports whether no counter carries a value.
func (c LifetimeCounters) IsZero() bool {
	return c.Sent == 0 && c.Opened == 0 && c.Clicked == 0 &&
		c.Replied == 0 && c.Bounced == 0 && c.Interested == 0
}

// CampaignCumulative is the last-observed lifetime counter snapshot for a
// campaign. It is the baseline the delta engine diffs fresh counters
// against. The baseline_* columns capture the very first observation and
// are never overwritten afterwards.
type CampaignCumulative struct {
	ID         string `json:"id" db:"id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`

	TotalSent       int64 `json:"total_sent" db:"total_sent"`
	TotalOpened     int64 `json:"total_opened" db:"total_opened"`
	TotalClicked    int64 `json:"total_clicked" db:"total_clicked"`
	TotalReplied    int64 `json:"total_replied" db:"total_replied"`
	TotalBounced    int64 `json:"total_bounced" db:"total_bounced"`
	TotalInterested int64 `json:"total_interested" db:"total_interested"`

	BaselineSent    int64 `json:"baseline_sent" db:"baseline_sent"`
	BaselineOpened  int64 `json:"baseline_opened" db:"baseline_opened"`
	BaselineClicked int64 `json:"baseline_clicked" db:"baseline_clicked"`
	BaselineReplied int64 `json:"baseline_replied" db:"baseline_replied"`
	BaselineBounced int64 `json:"baseline_bounced" db:"baseline_bounced"`

	FirstSyncedAt time.Time `json:"first_synced_at" db:"first_synced_at"`
	LastSyncedAt  time.Time `json:"last_synced_at" db:"last_synced_at"`
}

// Totals returns the cumulative counters as a LifetimeCounters value.
func (c *CampaignCumulative) Totals() LifetimeCounters {
	return LifetimeCounters{
		Sent:       c.TotalSent,
		Opened:     c.TotalOpened,
		Clicked:    c.TotalClicked,
		Replied:    c.TotalReplied,
		Bounced:    c.TotalBounced,
		Interested: c.TotalInterested,
	}
}

// CampaignDailyMetric is a per-campaign per-calendar-date bucket of counts.
// Unique by (campaign, metric_date). MetricDate carries a date only; the
// time portion is always midnight UTC.
type CampaignDailyMetric struct {
	ID              string    `json:"id" db:"id"`
	CampaignID      string    `json:"campaign_id" db:"campaign_id"`
	MetricDate      time.Time `json:"metric_date" db:"metric_date"`
	SentCount       int64     `json:"sent_count" db:"sent_count"`
	OpenedCount     int64     `json:"opened_count" db:"opened_count"`
	ClickedCount    int64     `json:"clicked_count" db:"clicked_count"`
	RepliedCount    int64     `json:"replied_count" db:"replied_count"`
	PositiveReplies int64     `json:"positive_replies" db:"positive_replies"`
	BouncedCount    int64     `json:"bounced_count" db:"bounced_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// WorkspaceDailyMetric is the per-workspace per-provider per-day rollup of
// CampaignDailyMetric. Unique by (workspace, provider, metric_date).
type WorkspaceDailyMetric struct {
	ID              string    `json:"id" db:"id"`
	WorkspaceID     string    `json:"workspace_id" db:"workspace_id"`
	Provider        Provider  `json:"provider" db:"provider"`
	MetricDate      time.Time `json:"metric_date" db:"metric_date"`
	TotalSent       int64     `json:"total_sent" db:"total_sent"`
	TotalOpened     int64     `json:"total_opened" db:"total_opened"`
	TotalClicked    int64     `json:"total_clicked" db:"total_clicked"`
	TotalReplied    int64     `json:"total_replied" db:"total_replied"`
	PositiveReplies int64     `json:"positive_replies" db:"positive_replies"`
	TotalBounced    int64     `json:"total_bounced" db:"total_bounced"`
	ActiveCampaigns int       `json:"active_campaigns" db:"active_campaigns"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// HourlyMetric accumulates webhook-observed counts per workspace, campaign,
// date, weekday, and hour. Unique by that tuple. day_of_week follows
// time.Weekday (0 = Sunday).
type HourlyMetric struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	CampaignID  string    `json:"campaign_id" db:"campaign_id"`
	MetricDate  time.Time `json:"metric_date" db:"metric_date"`
	DayOfWeek   int       `json:"day_of_week" db:"day_of_week"`
	HourOfDay   int       `json:"hour_of_day" db:"hour_of_day"`
	EmailsSent  int64     `json:"emails_sent" db:"emails_sent"`
	Opened      int64     `json:"opened" db:"opened"`
	Clicked     int64     `json:"clicked" db:"clicked"`
	Replied     int64     `json:"replied" db:"replied"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DateOnly truncates t to midnight UTC, the canonical form of metric_date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
