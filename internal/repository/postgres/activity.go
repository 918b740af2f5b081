package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// ActivityRepo stores per-contact engagement records, reply threads, and
// link clicks. Every Mark method is a single upsert keyed by
// (workspace, campaign, contact, step_number): flags only ever turn on,
// first_* timestamps keep their first value, counts accumulate.
type ActivityRepo struct{ db *sql.DB }

// NewActivityRepo creates a Postgres-backed activity repository.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) MarkSent(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_activities
			(workspace_id, campaign_id, contact_id, step_number, sent, sent_at)
		VALUES ($1, $2, $3, $4, true, $5)
		ON CONFLICT (workspace_id, campaign_id, contact_id, step_number) DO UPDATE SET
			sent = true,
			sent_at = COALESCE(email_activities.sent_at, EXCLUDED.sent_at),
			updated_at = NOW()
		RETURNING id
	`, workspaceID, campaignID, contactID, stepNumber, at).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("mark sent: %w", err)
	}
	return id, nil
}

func (r *ActivityRepo) MarkOpened(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_activities
			(workspace_id, campaign_id, contact_id, step_number, opened, first_opened_at, open_count)
		VALUES ($1, $2, $3, $4, true, $5, 1)
		ON CONFLICT (workspace_id, campaign_id, contact_id, step_number) DO UPDATE SET
			opened = true,
			first_opened_at = COALESCE(email_activities.first_opened_at, EXCLUDED.first_opened_at),
			open_count = email_activities.open_count + 1,
			updated_at = NOW()
		RETURNING id
	`, workspaceID, campaignID, contactID, stepNumber, at).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("mark opened: %w", err)
	}
	return id, nil
}

func (r *ActivityRepo) MarkClicked(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_activities
			(workspace_id, campaign_id, contact_id, step_number, clicked, first_clicked_at, click_count)
		VALUES ($1, $2, $3, $4, true, $5, 1)
		ON CONFLICT (workspace_id, campaign_id, contact_id, step_number) DO UPDATE SET
			clicked = true,
			first_clicked_at = COALESCE(email_activities.first_clicked_at, EXCLUDED.first_clicked_at),
			click_count = email_activities.click_count + 1,
			updated_at = NOW()
		RETURNING id
	`, workspaceID, campaignID, contactID, stepNumber, at).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("mark clicked: %w", err)
	}
	return id, nil
}

// MarkReplied records a reply with its classification. The first reply's
// text wins; later events may recategorize through RecategorizeReply but
// never rewrite the captured text.
func (r *ActivityRepo) MarkReplied(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time, text string, category domain.ReplyCategory, sentiment domain.Sentiment) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_activities
			(workspace_id, campaign_id, contact_id, step_number,
			 replied, replied_at, reply_text, reply_category, reply_sentiment)
		VALUES ($1, $2, $3, $4, true, $5, $6, $7, $8)
		ON CONFLICT (workspace_id, campaign_id, contact_id, step_number) DO UPDATE SET
			replied = true,
			replied_at = COALESCE(email_activities.replied_at, EXCLUDED.replied_at),
			reply_text = COALESCE(NULLIF(email_activities.reply_text, ''), EXCLUDED.reply_text),
			reply_category = EXCLUDED.reply_category,
			reply_sentiment = EXCLUDED.reply_sentiment,
			updated_at = NOW()
		RETURNING id
	`, workspaceID, campaignID, contactID, stepNumber, at, text, category, sentiment).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("mark replied: %w", err)
	}
	return id, nil
}

func (r *ActivityRepo) MarkBounced(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, bounceType, reason string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_activities
			(workspace_id, campaign_id, contact_id, step_number, bounced, bounce_type, bounce_reason)
		VALUES ($1, $2, $3, $4, true, $5, $6)
		ON CONFLICT (workspace_id, campaign_id, contact_id, step_number) DO UPDATE SET
			bounced = true,
			bounce_type = COALESCE(NULLIF(email_activities.bounce_type, ''), EXCLUDED.bounce_type),
			bounce_reason = COALESCE(NULLIF(email_activities.bounce_reason, ''), EXCLUDED.bounce_reason),
			updated_at = NOW()
		RETURNING id
	`, workspaceID, campaignID, contactID, stepNumber, bounceType, reason).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("mark bounced: %w", err)
	}
	return id, nil
}

func (r *ActivityRepo) MarkUnsubscribed(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_activities
			(workspace_id, campaign_id, contact_id, step_number, unsubscribed, unsubscribed_at)
		VALUES ($1, $2, $3, $4, true, $5)
		ON CONFLICT (workspace_id, campaign_id, contact_id, step_number) DO UPDATE SET
			unsubscribed = true,
			unsubscribed_at = COALESCE(email_activities.unsubscribed_at, EXCLUDED.unsubscribed_at),
			updated_at = NOW()
		RETURNING id
	`, workspaceID, campaignID, contactID, stepNumber, at).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("mark unsubscribed: %w", err)
	}
	return id, nil
}

// RecategorizeReply rewrites the classification on the contact's most
// recent reply in the campaign and returns the sentiment it replaced.
// found is false when the contact never replied there, which happens when
// a category-changed event outruns its reply event.
func (r *ActivityRepo) RecategorizeReply(ctx context.Context, workspaceID, campaignID, contactID string, category domain.ReplyCategory, sentiment domain.Sentiment) (domain.Sentiment, bool, error) {
	var prev domain.Sentiment
	err := r.db.QueryRowContext(ctx, `
		WITH current AS (
			SELECT id, reply_sentiment
			FROM email_activities
			WHERE workspace_id = $1 AND campaign_id = $2 AND contact_id = $3 AND replied = true
			ORDER BY replied_at DESC NULLS LAST
			LIMIT 1
		)
		UPDATE email_activities a
		SET reply_category = $4, reply_sentiment = $5, updated_at = NOW()
		FROM current
		WHERE a.id = current.id
		RETURNING current.reply_sentiment
	`, workspaceID, campaignID, contactID, category, sentiment).Scan(&prev)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("recategorize reply: %w", err)
	}
	return prev, true, nil
}

// AppendThread stores one reply body. Append-only.
func (r *ActivityRepo) AppendThread(ctx context.Context, t *domain.MessageThread) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_threads (id, workspace_id, campaign_id, contact_id, direction, body, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.WorkspaceID, t.CampaignID, t.ContactID, t.Direction, t.Body, t.ReceivedAt)
	if err != nil {
		return fmt.Errorf("append thread: %w", err)
	}
	return nil
}

// RecordLinkClick stores one clicked URL against an activity.
func (r *ActivityRepo) RecordLinkClick(ctx context.Context, activityID, url string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO link_clicks (activity_id, url, clicked_at)
		VALUES ($1, $2, $3)
	`, activityID, url, at)
	if err != nil {
		return fmt.Errorf("record link click: %w", err)
	}
	return nil
}
