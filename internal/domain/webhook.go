package domain

import (
	"encoding/json"
	"time"
)

// EventType is the canonical tagged sum of webhook event kinds. Provider
// payloads are normalized into this set before dispatch.
type EventType string

const (
	EventSent            EventType = "sent"
	EventOpened          EventType = "opened"
	EventClicked         EventType = "clicked"
	EventReplied         EventType = "replied"
	EventBounced         EventType = "bounced"
	EventUnsubscribed    EventType = "unsubscribed"
	EventCategoryChanged EventType = "category_changed"
)

// WebhookEvent is the raw event log row. Unique by (provider, event_id);
// inserting a duplicate is a no-op and downstream processing is skipped.
type WebhookEvent struct {
	ID          string          `json:"id" db:"id"`
	Provider    Provider        `json:"provider" db:"provider"`
	EventType   EventType       `json:"event_type" db:"event_type"`
	EventID     string          `json:"event_id" db:"event_id"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Processed   bool            `json:"processed" db:"processed"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
	ReceivedAt  time.Time       `json:"received_at" db:"received_at"`
}

// ReplyCategory is the canonical classification of a reply.
type ReplyCategory string

const (
	CategoryInterested     ReplyCategory = "interested"
	CategoryMeetingRequest ReplyCategory = "meeting_request"
	CategoryNotInterested  ReplyCategory = "not_interested"
	CategoryOutOfOffice    ReplyCategory = "out_of_office"
	CategoryReferral       ReplyCategory = "referral"
	CategoryUnsubscribe    ReplyCategory = "unsubscribe"
	CategoryNeutral        ReplyCategory = "neutral"
)

// Sentiment is the coarse polarity attached to a reply category.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)
