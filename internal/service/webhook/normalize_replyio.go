package webhook

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/outreach"
)

// replyioEventTypes maps Reply.io's wire event names, lower-cased with
// spaces and dashes collapsed to underscores, onto the canonical tagged sum.
var replyioEventTypes = map[string]domain.EventType{
	"email_sent":   domain.EventSent,
	"message_sent": domain.EventSent,
	"sent":         domain.EventSent,

	"email_opened": domain.EventOpened,
	"email_open":   domain.EventOpened,
	"first_open":   domain.EventOpened,
	"opened":       domain.EventOpened,

	"link_clicked":       domain.EventClicked,
	"email_link_clicked": domain.EventClicked,
	"clicked":            domain.EventClicked,

	"email_replied":  domain.EventReplied,
	"person_replied": domain.EventReplied,
	"inbox_reply":    domain.EventReplied,
	"replied":        domain.EventReplied,

	"email_bounced": domain.EventBounced,
	"bounced":       domain.EventBounced,

	"person_unsubscribed": domain.EventUnsubscribed,
	"person_opted_out":    domain.EventUnsubscribed,
	"opted_out":           domain.EventUnsubscribed,
	"unsubscribed":        domain.EventUnsubscribed,

	"category_changed":         domain.EventCategoryChanged,
	"person_category_changed":  domain.EventCategoryChanged,
	"contact_category_updated": domain.EventCategoryChanged,
	"category_updated":         domain.EventCategoryChanged,
}

// normalizeReplyio maps a Reply.io webhook body onto the canonical Event.
func normalizeReplyio(body []byte) (*Event, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ValidationError{Field: "body", Reason: "not valid JSON"}
	}

	wireType := canonicalReplyioType(outreach.FirstString(body, "event", "eventType", "type"))
	ev := &Event{
		Type:               replyioEventTypes[wireType],
		EventID:            outreach.FirstString(body, "eventId", "event_id", "id"),
		PlatformCampaignID: firstID(body, "campaignId", "sequenceId", "campaign_id"),
		Email:              outreach.FirstString(body, "email", "personEmail", "contactEmail"),
		FirstName:          outreach.FirstString(body, "firstName", "first_name"),
		LastName:           outreach.FirstString(body, "lastName", "last_name"),
		OccurredAt:         parseEventTime(body, "date", "eventDate", "occurredAt", "timestamp"),
		ReplyText:          outreach.FirstString(body, "replyText", "text", "message"),
		CategoryLabel:      outreach.FirstString(body, "category", "personCategory", "newCategory", "categoryName"),
		LinkURL:            outreach.FirstString(body, "url", "link", "clickedUrl"),
		BounceType:         outreach.FirstString(body, "bounceType", "bounce_type"),
		BounceReason:       outreach.FirstString(body, "bounceReason", "reason"),
	}
	if n, ok := outreach.FirstNumber(body, "stepNumber", "step", "sequenceStep"); ok {
		ev.StepNumber = int(n)
	}

	if verr := ev.sanitize(); verr != nil {
		return nil, verr
	}
	return ev, nil
}

func canonicalReplyioType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// Normalize parses and validates a raw provider payload into the canonical
// Event. The returned error is a *ValidationError for malformed payloads.
func Normalize(provider domain.Provider, body []byte) (*Event, error) {
	switch provider {
	case domain.ProviderSmartlead:
		return normalizeSmartlead(body)
	case domain.ProviderReplyIO:
		return normalizeReplyio(body)
	default:
		return nil, &ValidationError{Field: "provider", Reason: "unsupported"}
	}
}
