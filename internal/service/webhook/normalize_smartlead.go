package webhook

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/outreach"
)

// smartleadEventTypes maps Smartlead's wire event names to the canonical
// tagged sum. Smartlead renamed a few of these across webhook versions, so
// both spellings stay accepted.
var smartleadEventTypes = map[string]domain.EventType{
	"EMAIL_SENT":            domain.EventSent,
	"EMAIL_OPEN":            domain.EventOpened,
	"EMAIL_OPENED":          domain.EventOpened,
	"EMAIL_CLICK":           domain.EventClicked,
	"EMAIL_LINK_CLICK":      domain.EventClicked,
	"EMAIL_LINK_CLICKED":    domain.EventClicked,
	"EMAIL_REPLY":           domain.EventReplied,
	"EMAIL_REPLIED":         domain.EventReplied,
	"EMAIL_BOUNCE":          domain.EventBounced,
	"EMAIL_BOUNCED":         domain.EventBounced,
	"LEAD_UNSUBSCRIBED":     domain.EventUnsubscribed,
	"LEAD_CATEGORY_UPDATED": domain.EventCategoryChanged,
	"LEAD_CATEGORY_CHANGE":  domain.EventCategoryChanged,
}

// normalizeSmartlead maps a Smartlead webhook body onto the canonical Event.
func normalizeSmartlead(body []byte) (*Event, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ValidationError{Field: "body", Reason: "not valid JSON"}
	}

	wireType := strings.ToUpper(outreach.FirstString(body, "event_type", "eventType", "type"))
	ev := &Event{
		Type:               smartleadEventTypes[wireType],
		EventID:            outreach.FirstString(body, "event_id", "webhook_id", "stats_id"),
		PlatformCampaignID: firstID(body, "campaign_id", "campaignId"),
		Email:              outreach.FirstString(body, "to_email", "lead_email", "email"),
		FirstName:          outreach.FirstString(body, "first_name", "lead_first_name", "to_name"),
		LastName:           outreach.FirstString(body, "last_name", "lead_last_name"),
		OccurredAt:         parseEventTime(body, "event_timestamp", "time_sent", "time_opened", "time_clicked", "time_replied", "timestamp"),
		ReplyText:          outreach.FirstString(body, "reply_body", "reply_message.text", "reply_text", "message_body"),
		CategoryLabel:      outreach.FirstString(body, "lead_category.new_name", "lead_category.name", "lead_category", "category"),
		LinkURL:            outreach.FirstString(body, "link_url", "clicked_link_url", "link", "url"),
		BounceType:         outreach.FirstString(body, "bounce_type", "bounceType"),
		BounceReason:       outreach.FirstString(body, "bounce_reason", "bounce_message", "error_message"),
	}
	if n, ok := outreach.FirstNumber(body, "sequence_number", "seq_number", "email_sequence_number"); ok {
		ev.StepNumber = int(n)
	}

	if verr := ev.sanitize(); verr != nil {
		return nil, verr
	}
	return ev, nil
}

// firstID probes the keys for a campaign-style identifier, accepting both
// numeric and string encodings. Numeric zero means absent.
func firstID(data []byte, keys ...string) string {
	for _, key := range keys {
		v := gjson.GetBytes(data, key)
		switch v.Type {
		case gjson.Number:
			if n := v.Int(); n != 0 {
				return strconv.FormatInt(n, 10)
			}
		case gjson.String:
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return ""
}
