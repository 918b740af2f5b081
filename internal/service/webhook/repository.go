package webhook

import (
	"context"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// CampaignStore resolves provider campaign ids and drives the atomic
// campaign counter functions.
type CampaignStore interface {
	// ResolveByPlatformID returns the campaign for a provider's external id,
	// or nil when it was never synced.
	ResolveByPlatformID(ctx context.Context, provider domain.Provider, platformID string) (*domain.Campaign, error)

	// IncrementMetric bumps one lifetime counter through the database
	// function. Metric names are the counter column names.
	IncrementMetric(ctx context.Context, id, metric string, amount int64) error

	// AdjustPositiveReplies moves the campaign and daily positive reply
	// counters by delta, atomically and floored at zero.
	AdjustPositiveReplies(ctx context.Context, id string, date time.Time, delta int64) error
}

// EventStore is the raw webhook event log.
type EventStore interface {
	// Insert stores the event and reports whether this was the first
	// delivery. A (provider, event_id) duplicate is a no-op that returns
	// false.
	Insert(ctx context.Context, e *domain.WebhookEvent) (bool, error)

	// MarkProcessed flags the event after a successful dispatch.
	MarkProcessed(ctx context.Context, id string) error
}

// ContactStore manages recipients touched by events.
type ContactStore interface {
	Upsert(ctx context.Context, workspaceID, email, firstName, lastName string) (*domain.Contact, error)
	SetEmailStatus(ctx context.Context, contactID string, status domain.ContactEmailStatus) error
	SetDoNotEmail(ctx context.Context, contactID string) error
}

// ActivityStore applies monotonic engagement updates to per-contact
// activity rows.
type ActivityStore interface {
	MarkSent(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error)
	MarkOpened(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error)
	MarkClicked(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error)
	MarkReplied(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time, text string, category domain.ReplyCategory, sentiment domain.Sentiment) (string, error)
	MarkBounced(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, bounceType, reason string) (string, error)
	MarkUnsubscribed(ctx context.Context, workspaceID, campaignID, contactID string, stepNumber int, at time.Time) (string, error)

	// RecategorizeReply remaps the most recent reply of a contact and
	// returns the sentiment it had before, so the caller can decide whether
	// positive counters moved.
	RecategorizeReply(ctx context.Context, workspaceID, campaignID, contactID string, category domain.ReplyCategory, sentiment domain.Sentiment) (domain.Sentiment, bool, error)

	AppendThread(ctx context.Context, t *domain.MessageThread) error
	RecordLinkClick(ctx context.Context, activityID, url string, at time.Time) error
}

// MetricStore accumulates webhook observations into the hourly and daily
// buckets through the atomic database functions.
type MetricStore interface {
	AddDaily(ctx context.Context, m *domain.CampaignDailyMetric) error
	RecordHourly(ctx context.Context, m *domain.HourlyMetric) error
}
