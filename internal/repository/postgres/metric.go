package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// MetricRepo stores cumulative snapshots, daily buckets, hourly buckets,
// and the workspace rollup.
type MetricRepo struct{ db *sql.DB }

// NewMetricRepo creates a Postgres-backed metric repository.
func NewMetricRepo(db *sql.DB) *MetricRepo { return &MetricRepo{db: db} }

// GetCumulative returns the last counter snapshot for a campaign, or nil on
// a campaign's first sync.
func (r *MetricRepo) GetCumulative(ctx context.Context, campaignID string) (*domain.CampaignCumulative, error) {
	c := &domain.CampaignCumulative{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, campaign_id,
		       total_sent, total_opened, total_clicked, total_replied, total_bounced, total_interested,
		       baseline_sent, baseline_opened, baseline_clicked, baseline_replied, baseline_bounced,
		       first_synced_at, last_synced_at
		FROM campaign_cumulative
		WHERE campaign_id = $1
	`, campaignID).Scan(
		&c.ID, &c.CampaignID,
		&c.TotalSent, &c.TotalOpened, &c.TotalClicked, &c.TotalReplied, &c.TotalBounced, &c.TotalInterested,
		&c.BaselineSent, &c.BaselineOpened, &c.BaselineClicked, &c.BaselineReplied, &c.BaselineBounced,
		&c.FirstSyncedAt, &c.LastSyncedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cumulative: %w", err)
	}
	return c, nil
}

// UpsertCumulative writes a snapshot. On conflict only the running totals
// and last_synced_at move; the baseline_* columns and first_synced_at are
// written once on insert and never after.
func (r *MetricRepo) UpsertCumulative(ctx context.Context, c *domain.CampaignCumulative) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaign_cumulative
			(campaign_id,
			 total_sent, total_opened, total_clicked, total_replied, total_bounced, total_interested,
			 baseline_sent, baseline_opened, baseline_clicked, baseline_replied, baseline_bounced,
			 first_synced_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (campaign_id) DO UPDATE SET
			total_sent = EXCLUDED.total_sent,
			total_opened = EXCLUDED.total_opened,
			total_clicked = EXCLUDED.total_clicked,
			total_replied = EXCLUDED.total_replied,
			total_bounced = EXCLUDED.total_bounced,
			total_interested = EXCLUDED.total_interested,
			last_synced_at = EXCLUDED.last_synced_at
	`, c.CampaignID,
		c.TotalSent, c.TotalOpened, c.TotalClicked, c.TotalReplied, c.TotalBounced, c.TotalInterested,
		c.BaselineSent, c.BaselineOpened, c.BaselineClicked, c.BaselineReplied, c.BaselineBounced,
		c.FirstSyncedAt, c.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("upsert cumulative: %w", err)
	}
	return nil
}

// AddDaily accumulates deltas into a campaign's daily bucket through the
// atomic database function.
func (r *MetricRepo) AddDaily(ctx context.Context, m *domain.CampaignDailyMetric) error {
	_, err := r.db.ExecContext(ctx,
		`SELECT record_daily_metric($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.CampaignID, m.MetricDate,
		m.SentCount, m.OpenedCount, m.ClickedCount, m.RepliedCount,
		m.PositiveReplies, m.BouncedCount,
	)
	if err != nil {
		return fmt.Errorf("record daily metric: %w", err)
	}
	return nil
}

// RecordHourly accumulates one webhook observation into the hourly bucket
// through the atomic database function.
func (r *MetricRepo) RecordHourly(ctx context.Context, m *domain.HourlyMetric) error {
	_, err := r.db.ExecContext(ctx,
		`SELECT record_hourly_metric($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.WorkspaceID, m.CampaignID, m.MetricDate, m.DayOfWeek, m.HourOfDay,
		m.EmailsSent, m.Opened, m.Clicked, m.Replied,
	)
	if err != nil {
		return fmt.Errorf("record hourly metric: %w", err)
	}
	return nil
}

// DeleteWorkspaceDaily clears the workspace rollup for one provider.
// Campaign-level rows cascade away with their campaigns on reset; the
// rollup table has no campaign foreign key and is cleared here.
func (r *MetricRepo) DeleteWorkspaceDaily(ctx context.Context, workspaceID string, provider domain.Provider) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM workspace_daily_metrics WHERE workspace_id = $1 AND provider = $2`,
		workspaceID, provider,
	)
	if err != nil {
		return fmt.Errorf("delete workspace daily metrics: %w", err)
	}
	return nil
}

// RollupWorkspaceDaily rebuilds the workspace rollup from campaign daily
// buckets for dates on or after since. Existing rollup values never
// decrease; a shrunken source (campaign deleted upstream) must not erase
// history the dashboard already showed.
func (r *MetricRepo) RollupWorkspaceDaily(ctx context.Context, workspaceID string, provider domain.Provider, since time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspace_daily_metrics
			(workspace_id, provider, metric_date,
			 total_sent, total_opened, total_clicked, total_replied,
			 positive_replies, total_bounced, active_campaigns)
		SELECT c.workspace_id, c.provider, d.metric_date,
		       SUM(d.sent_count), SUM(d.opened_count), SUM(d.clicked_count), SUM(d.replied_count),
		       SUM(d.positive_replies), SUM(d.bounced_count),
		       COUNT(DISTINCT c.id) FILTER (WHERE c.status = 'active')
		FROM campaign_daily_metrics d
		JOIN campaigns c ON c.id = d.campaign_id
		WHERE c.workspace_id = $1 AND c.provider = $2 AND d.metric_date >= $3
		GROUP BY c.workspace_id, c.provider, d.metric_date
		ON CONFLICT (workspace_id, provider, metric_date) DO UPDATE SET
			total_sent = GREATEST(workspace_daily_metrics.total_sent, EXCLUDED.total_sent),
			total_opened = GREATEST(workspace_daily_metrics.total_opened, EXCLUDED.total_opened),
			total_clicked = GREATEST(workspace_daily_metrics.total_clicked, EXCLUDED.total_clicked),
			total_replied = GREATEST(workspace_daily_metrics.total_replied, EXCLUDED.total_replied),
			positive_replies = GREATEST(workspace_daily_metrics.positive_replies, EXCLUDED.positive_replies),
			total_bounced = GREATEST(workspace_daily_metrics.total_bounced, EXCLUDED.total_bounced),
			active_campaigns = GREATEST(workspace_daily_metrics.active_campaigns, EXCLUDED.active_campaigns),
			updated_at = NOW()
	`, workspaceID, provider, domain.DateOnly(since))
	if err != nil {
		return fmt.Errorf("rollup workspace daily: %w", err)
	}
	return nil
}
