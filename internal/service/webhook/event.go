package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/asaskevich/govalidator"
	"github.com/tidwall/gjson"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// Field caps applied during sanitization. Payload fields beyond these are
// truncated, not rejected; providers occasionally ship padded or garbage
// values and a webhook must stay cheap to accept.
const (
	maxEmailLen = 320
	maxNameLen  = 256
	maxLabelLen = 128
	maxTextLen  = 10000
	maxURLLen   = 2048
)

// Event is a provider webhook payload normalized into the canonical shape
// the dispatcher works with. Normalizers fill it from provider-specific
// field names; sanitize() then enforces the structural rules shared by both
// providers.
type Event struct {
	Type               domain.EventType
	EventID            string
	PlatformCampaignID string
	Email              string
	FirstName          string
	LastName           string
	StepNumber         int
	OccurredAt         *time.Time
	ReplyText          string
	CategoryLabel      string
	LinkURL            string
	BounceType         string
	BounceReason       string
}

// sanitize trims, strips control characters, caps lengths, and validates the
// fields every provider shares. It mutates the event in place and returns
// the first structural violation found.
func (e *Event) sanitize() *ValidationError {
	e.EventID = cleanLine(e.EventID, maxLabelLen)
	e.PlatformCampaignID = cleanLine(e.PlatformCampaignID, maxLabelLen)
	e.Email = strings.ToLower(cleanLine(e.Email, maxEmailLen))
	e.FirstName = cleanLine(e.FirstName, maxNameLen)
	e.LastName = cleanLine(e.LastName, maxNameLen)
	e.ReplyText = cleanText(e.ReplyText, maxTextLen)
	e.CategoryLabel = cleanLine(e.CategoryLabel, maxLabelLen)
	e.LinkURL = cleanURL(e.LinkURL)
	e.BounceType = cleanLine(e.BounceType, maxLabelLen)
	e.BounceReason = cleanLine(e.BounceReason, maxNameLen)

	if e.Type == "" {
		return &ValidationError{Field: "event_type", Reason: "missing or unrecognized"}
	}
	if e.PlatformCampaignID == "" {
		return &ValidationError{Field: "campaign_id", Reason: "missing"}
	}
	if !isNumericID(e.PlatformCampaignID) {
		return &ValidationError{Field: "campaign_id", Reason: "not a numeric id"}
	}
	if e.Email != "" && !govalidator.IsEmail(e.Email) {
		return &ValidationError{Field: "email", Reason: "not a valid address"}
	}
	if e.StepNumber < 1 {
		e.StepNumber = 1
	}
	return nil
}

// synthesizeEventID derives a stable event id from the raw body for
// providers that do not send one. Identical bodies collapse to the same id,
// which is exactly the dedupe we want for at-least-once deliveries.
func synthesizeEventID(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func isNumericID(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// cleanLine strips every control character, trims, and caps to max runes.
func cleanLine(s string, max int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return capRunes(strings.TrimSpace(s), max)
}

// cleanText keeps newlines and tabs so reply bodies stay readable, strips
// every other control character, and caps to max runes.
func cleanText(s string, max int) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return capRunes(strings.TrimSpace(s), max)
}

// cleanURL keeps only absolute http/https URLs; everything else (javascript:,
// data:, relative paths) is dropped.
func cleanURL(s string) string {
	s = cleanLine(s, maxURLLen)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return ""
}

func capRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// parseEventTime probes the keys in order and parses the first usable value
// as a timestamp. String values try the layouts providers actually send;
// numeric values are treated as unix seconds (milliseconds when the
// magnitude says so).
func parseEventTime(data []byte, keys ...string) *time.Time {
	for _, key := range keys {
		v := gjson.GetBytes(data, key)
		switch v.Type {
		case gjson.String:
			if t, ok := parseTimeString(v.Str); ok {
				return &t
			}
		case gjson.Number:
			n := v.Int()
			if n <= 0 {
				continue
			}
			var t time.Time
			if n > 1e12 {
				t = time.UnixMilli(n).UTC()
			} else {
				t = time.Unix(n, 0).UTC()
			}
			return &t
		}
	}
	return nil
}

var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
