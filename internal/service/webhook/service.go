package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/metrics"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

// Result statuses returned to the provider. Providers retry on non-2xx, so
// both outcomes answer 200.
const (
	StatusProcessed = "processed"
	StatusStored    = "stored"
)

// Result is the outcome of processing one webhook delivery.
type Result struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	Duplicate bool   `json:"-"`
}

// Service runs the webhook intake pipeline. Safe for concurrent use; every
// write it performs is idempotent or goes through an atomic counter
// function, so concurrent redeliveries cannot double-count.
type Service struct {
	campaigns  CampaignStore
	events     EventStore
	contacts   ContactStore
	activities ActivityStore
	buckets    MetricStore
	verifiers  map[domain.Provider]*Verifier
	metrics    *metrics.Metrics
}

// NewService wires the intake pipeline. verifiers maps each provider to its
// signature verifier; providers without an entry are accepted unverified.
func NewService(
	campaigns CampaignStore,
	events EventStore,
	contacts ContactStore,
	activities ActivityStore,
	buckets MetricStore,
	verifiers map[domain.Provider]*Verifier,
	m *metrics.Metrics,
) *Service {
	return &Service{
		campaigns:  campaigns,
		events:     events,
		contacts:   contacts,
		activities: activities,
		buckets:    buckets,
		verifiers:  verifiers,
		metrics:    m,
	}
}

// Process handles one webhook delivery: verify, normalize, resolve the
// campaign, log the event, dispatch, mark processed.
//
// Unknown campaigns store the raw event unprocessed and answer "stored";
// the campaign usually appears on the next sync. Duplicate (provider,
// event_id) deliveries short-circuit after the log insert and answer
// "processed" without touching any counter.
func (s *Service) Process(ctx context.Context, provider domain.Provider, body []byte, signature string) (*Result, error) {
	if v := s.verifiers[provider]; v != nil {
		if err := v.Verify(body, signature); err != nil {
			s.count(provider, "", "unauthorized")
			return nil, err
		}
	}

	ev, err := Normalize(provider, body)
	if err != nil {
		// Keep the raw body for forensics; nothing else is persisted for
		// payloads that fail validation.
		s.storeRaw(ctx, provider, body)
		s.count(provider, "", "invalid")
		return nil, err
	}
	if ev.EventID == "" {
		ev.EventID = synthesizeEventID(body)
	}

	campaign, err := s.campaigns.ResolveByPlatformID(ctx, provider, ev.PlatformCampaignID)
	if err != nil {
		return nil, fmt.Errorf("resolving campaign %s: %w", ev.PlatformCampaignID, err)
	}
	if campaign == nil {
		row := s.eventRow(provider, ev, body)
		if _, err := s.events.Insert(ctx, row); err != nil {
			return nil, fmt.Errorf("storing event for unknown campaign: %w", err)
		}
		logger.Info("webhook stored for unknown campaign",
			"provider", string(provider),
			"platform_campaign_id", ev.PlatformCampaignID,
			"event_type", string(ev.Type))
		s.count(provider, string(ev.Type), "stored")
		return &Result{Status: StatusStored, EventID: ev.EventID}, nil
	}

	row := s.eventRow(provider, ev, body)
	first, err := s.events.Insert(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("logging event: %w", err)
	}
	if !first {
		s.count(provider, string(ev.Type), "duplicate")
		return &Result{Status: StatusProcessed, EventID: ev.EventID, Duplicate: true}, nil
	}

	if err := s.dispatch(ctx, campaign, ev); err != nil {
		// The event row stays unprocessed; the error surfaces as a 5xx and
		// the provider redelivers into the duplicate short-circuit, so a
		// replay never double-applies whatever did land.
		s.count(provider, string(ev.Type), "error")
		return nil, err
	}

	if err := s.events.MarkProcessed(ctx, row.ID); err != nil {
		logger.Warn("webhook processed but not marked",
			"provider", string(provider), "event_id", ev.EventID, "error", err.Error())
	}
	s.count(provider, string(ev.Type), "processed")
	return &Result{Status: StatusProcessed, EventID: ev.EventID}, nil
}

func (s *Service) eventRow(provider domain.Provider, ev *Event, body []byte) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		Provider:  provider,
		EventType: ev.Type,
		EventID:   ev.EventID,
		Payload:   body,
	}
}

// storeRaw best-effort logs a payload that failed validation. Errors are
// logged and swallowed; the caller is already returning a 400.
func (s *Service) storeRaw(ctx context.Context, provider domain.Provider, body []byte) {
	row := &domain.WebhookEvent{
		Provider: provider,
		EventID:  synthesizeEventID(body),
		Payload:  body,
	}
	if _, err := s.events.Insert(ctx, row); err != nil {
		logger.Warn("failed to store invalid webhook payload",
			"provider", string(provider), "error", err.Error())
	}
}

func (s *Service) count(provider domain.Provider, eventType, outcome string) {
	if s.metrics == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	s.metrics.IncWebhookEvent(string(provider), eventType, outcome)
}

// dispatch applies one normalized event. Activity and contact writes happen
// only when the payload carried an address; counter bumps always happen and
// always go through the database functions.
func (s *Service) dispatch(ctx context.Context, c *domain.Campaign, ev *Event) error {
	at := time.Now().UTC()
	if ev.OccurredAt != nil {
		at = ev.OccurredAt.UTC()
	}

	var contactID string
	if ev.Email != "" {
		contact, err := s.contacts.Upsert(ctx, c.WorkspaceID, ev.Email, ev.FirstName, ev.LastName)
		if err != nil {
			return fmt.Errorf("upserting contact: %w", err)
		}
		contactID = contact.ID
	}

	switch ev.Type {
	case domain.EventSent:
		return s.handleSent(ctx, c, contactID, ev, at)
	case domain.EventOpened:
		return s.handleOpened(ctx, c, contactID, ev, at)
	case domain.EventClicked:
		return s.handleClicked(ctx, c, contactID, ev, at)
	case domain.EventReplied:
		return s.handleReplied(ctx, c, contactID, ev, at)
	case domain.EventBounced:
		return s.handleBounced(ctx, c, contactID, ev, at)
	case domain.EventUnsubscribed:
		return s.handleUnsubscribed(ctx, c, contactID, ev, at)
	case domain.EventCategoryChanged:
		return s.handleCategoryChanged(ctx, c, contactID, ev, at)
	default:
		return &ValidationError{Field: "event_type", Reason: "unhandled"}
	}
}

func (s *Service) handleSent(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	if contactID != "" {
		if _, err := s.activities.MarkSent(ctx, c.WorkspaceID, c.ID, contactID, ev.StepNumber, at); err != nil {
			return fmt.Errorf("marking sent: %w", err)
		}
	}
	if err := s.campaigns.IncrementMetric(ctx, c.ID, "total_sent", 1); err != nil {
		return err
	}
	if err := s.buckets.RecordHourly(ctx, hourlyBucket(c, at, 1, 0, 0, 0)); err != nil {
		return err
	}
	return s.buckets.AddDaily(ctx, &domain.CampaignDailyMetric{
		CampaignID: c.ID,
		MetricDate: domain.DateOnly(at),
		SentCount:  1,
	})
}

func (s *Service) handleOpened(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	if contactID != "" {
		if _, err := s.activities.MarkOpened(ctx, c.WorkspaceID, c.ID, contactID, ev.StepNumber, at); err != nil {
			return fmt.Errorf("marking opened: %w", err)
		}
	}
	if err := s.buckets.RecordHourly(ctx, hourlyBucket(c, at, 0, 1, 0, 0)); err != nil {
		return err
	}
	return s.buckets.AddDaily(ctx, &domain.CampaignDailyMetric{
		CampaignID:  c.ID,
		MetricDate:  domain.DateOnly(at),
		OpenedCount: 1,
	})
}

func (s *Service) handleClicked(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	if contactID != "" {
		activityID, err := s.activities.MarkClicked(ctx, c.WorkspaceID, c.ID, contactID, ev.StepNumber, at)
		if err != nil {
			return fmt.Errorf("marking clicked: %w", err)
		}
		if ev.LinkURL != "" {
			if err := s.activities.RecordLinkClick(ctx, activityID, ev.LinkURL, at); err != nil {
				return fmt.Errorf("recording link click: %w", err)
			}
		}
	}
	return s.buckets.RecordHourly(ctx, hourlyBucket(c, at, 0, 0, 1, 0))
}

func (s *Service) handleReplied(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	category, sentiment := MapReplyCategory(ev.CategoryLabel)

	if contactID != "" {
		if _, err := s.activities.MarkReplied(ctx, c.WorkspaceID, c.ID, contactID, ev.StepNumber, at, ev.ReplyText, category, sentiment); err != nil {
			return fmt.Errorf("marking replied: %w", err)
		}
	}
	if err := s.campaigns.IncrementMetric(ctx, c.ID, "total_replied", 1); err != nil {
		return err
	}
	if err := s.buckets.RecordHourly(ctx, hourlyBucket(c, at, 0, 0, 0, 1)); err != nil {
		return err
	}
	if err := s.buckets.AddDaily(ctx, &domain.CampaignDailyMetric{
		CampaignID:   c.ID,
		MetricDate:   domain.DateOnly(at),
		RepliedCount: 1,
	}); err != nil {
		return err
	}
	if sentiment == domain.SentimentPositive {
		if err := s.campaigns.AdjustPositiveReplies(ctx, c.ID, at, 1); err != nil {
			return err
		}
	}
	if contactID != "" {
		thread := &domain.MessageThread{
			WorkspaceID: c.WorkspaceID,
			CampaignID:  c.ID,
			ContactID:   contactID,
			Direction:   "inbound",
			Body:        ev.ReplyText,
			ReceivedAt:  at,
		}
		if err := s.activities.AppendThread(ctx, thread); err != nil {
			return fmt.Errorf("appending thread: %w", err)
		}
	}
	return nil
}

func (s *Service) handleBounced(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	if contactID != "" {
		if _, err := s.activities.MarkBounced(ctx, c.WorkspaceID, c.ID, contactID, ev.StepNumber, ev.BounceType, ev.BounceReason); err != nil {
			return fmt.Errorf("marking bounced: %w", err)
		}
		if err := s.contacts.SetEmailStatus(ctx, contactID, domain.EmailStatusBounced); err != nil {
			return fmt.Errorf("marking contact bounced: %w", err)
		}
	}
	if err := s.campaigns.IncrementMetric(ctx, c.ID, "total_bounced", 1); err != nil {
		return err
	}
	return s.buckets.AddDaily(ctx, &domain.CampaignDailyMetric{
		CampaignID:   c.ID,
		MetricDate:   domain.DateOnly(at),
		BouncedCount: 1,
	})
}

func (s *Service) handleUnsubscribed(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	if contactID == "" {
		return nil
	}
	if _, err := s.activities.MarkUnsubscribed(ctx, c.WorkspaceID, c.ID, contactID, ev.StepNumber, at); err != nil {
		return fmt.Errorf("marking unsubscribed: %w", err)
	}
	return s.contacts.SetDoNotEmail(ctx, contactID)
}

func (s *Service) handleCategoryChanged(ctx context.Context, c *domain.Campaign, contactID string, ev *Event, at time.Time) error {
	if contactID == "" {
		return nil
	}
	category, sentiment := MapReplyCategory(ev.CategoryLabel)

	prev, found, err := s.activities.RecategorizeReply(ctx, c.WorkspaceID, c.ID, contactID, category, sentiment)
	if err != nil {
		return fmt.Errorf("recategorizing reply: %w", err)
	}
	if !found {
		// Category updates can arrive before the reply webhook; with no
		// reply on record there is nothing to recount.
		logger.Debug("category change without a recorded reply",
			"campaign_id", c.ID, "category", string(category))
		return nil
	}
	if sentiment == domain.SentimentPositive && prev != domain.SentimentPositive {
		return s.campaigns.AdjustPositiveReplies(ctx, c.ID, at, 1)
	}
	return nil
}

func hourlyBucket(c *domain.Campaign, at time.Time, sent, opened, clicked, replied int64) *domain.HourlyMetric {
	at = at.UTC()
	return &domain.HourlyMetric{
		WorkspaceID: c.WorkspaceID,
		CampaignID:  c.ID,
		MetricDate:  domain.DateOnly(at),
		DayOfWeek:   int(at.Weekday()),
		HourOfDay:   at.Hour(),
		EmailsSent:  sent,
		Opened:      opened,
		Clicked:     clicked,
		Replied:     replied,
	}
}
