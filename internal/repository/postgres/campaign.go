package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// CampaignRepo stores unified campaigns and drives the atomic counter
// functions the webhook path depends on.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// Upsert inserts or refreshes a campaign keyed by (workspace, provider,
// platform_id) and reports whether the row was created. The platform
// creation date is kept from the first observation; providers sometimes
// stop returning it later.
func (r *CampaignRepo) Upsert(ctx context.Context, c *domain.Campaign) (string, bool, error) {
	var id string
	var inserted bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO campaigns
			(workspace_id, provider, platform_id, name, status, platform_created_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (workspace_id, provider, platform_id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			platform_created_at = COALESCE(campaigns.platform_created_at, EXCLUDED.platform_created_at),
			last_synced_at = NOW(),
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS inserted
	`, c.WorkspaceID, c.Provider, c.PlatformID, c.Name, c.Status, c.PlatformCreatedAt).Scan(&id, &inserted)
	if err != nil {
		return "", false, fmt.Errorf("upsert campaign: %w", err)
	}
	return id, inserted, nil
}

// ResolveByPlatformID maps a provider's campaign identifier to our row, or
// nil when the campaign was never synced. Webhook payloads carry no
// workspace, so resolution is global per provider; platform ids are unique
// within a provider. A miss is a normal outcome for campaigns we have not
// seen yet.
func (r *CampaignRepo) ResolveByPlatformID(ctx context.Context, provider domain.Provider, platformID string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var platformCreated, lastSynced sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, provider, platform_id, name, status,
		       total_sent, total_opened, total_clicked, total_replied, total_bounced,
		       positive_replies, meetings, platform_created_at, last_synced_at,
		       created_at, updated_at
		FROM campaigns
		WHERE provider = $1 AND platform_id = $2
		LIMIT 1
	`, provider, platformID).Scan(
		&c.ID, &c.WorkspaceID, &c.Provider, &c.PlatformID, &c.Name, &c.Status,
		&c.TotalSent, &c.TotalOpened, &c.TotalClicked, &c.TotalReplied, &c.TotalBounced,
		&c.PositiveReplies, &c.Meetings, &platformCreated, &lastSynced,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve campaign by platform id: %w", err)
	}
	if platformCreated.Valid {
		t := platformCreated.Time
		c.PlatformCreatedAt = &t
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		c.LastSyncedAt = &t
	}
	return c, nil
}

// DeleteByProvider removes every campaign a workspace synced from one
// provider. Steps, cumulatives, daily metrics and activities go with them
// through the cascading foreign keys. Used by reset=true before a full
// re-sync.
func (r *CampaignRepo) DeleteByProvider(ctx context.Context, workspaceID string, provider domain.Provider) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM campaigns WHERE workspace_id = $1 AND provider = $2`,
		workspaceID, provider,
	)
	if err != nil {
		return 0, fmt.Errorf("delete campaigns for %s: %w", provider, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpdateTotals overwrites the lifetime counters with the provider's current
// truth. Positive replies and meetings stay webhook-owned and are not
// touched here.
func (r *CampaignRepo) UpdateTotals(ctx context.Context, id string, c domain.LifetimeCounters) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET total_sent = $2, total_opened = $3, total_clicked = $4,
		    total_replied = $5, total_bounced = $6,
		    last_synced_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id, c.Sent, c.Opened, c.Clicked, c.Replied, c.Bounced)
	if err != nil {
		return fmt.Errorf("update campaign totals: %w", err)
	}
	return nil
}

// IncrementMetric bumps one lifetime counter through the database function,
// so concurrent webhook deliveries never lose increments.
func (r *CampaignRepo) IncrementMetric(ctx context.Context, id, metric string, amount int64) error {
	_, err := r.db.ExecContext(ctx,
		`SELECT increment_campaign_metric($1, $2, $3)`,
		id, metric, amount,
	)
	if err != nil {
		return fmt.Errorf("increment %s: %w", metric, err)
	}
	return nil
}

// AdjustPositiveReplies moves the campaign's positive reply counter and the
// daily row for the given date by delta, atomically and floored at zero.
func (r *CampaignRepo) AdjustPositiveReplies(ctx context.Context, id string, date time.Time, delta int64) error {
	_, err := r.db.ExecContext(ctx,
		`SELECT update_positive_reply_counts($1, $2, $3)`,
		id, domain.DateOnly(date), delta,
	)
	if err != nil {
		return fmt.Errorf("adjust positive replies: %w", err)
	}
	return nil
}
