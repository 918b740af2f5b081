package domain

import (
	"strings"
	"time"
)

// ContactEmailStatus enumerates deliverability states of a contact address.
type ContactEmailStatus string

const (
	EmailStatusActive  ContactEmailStatus = "active"
	EmailStatusBounced ContactEmailStatus = "bounced"
)

// Contact is a recipient, unique per (workspace, email). Contacts are shared
// across campaigns and survive campaign deletion.
type Contact struct {
	ID          string             `json:"id" db:"id"`
	WorkspaceID string             `json:"workspace_id" db:"workspace_id"`
	CompanyID   *string            `json:"company_id" db:"company_id"`
	Email       string             `json:"email" db:"email"`
	FirstName   string             `json:"first_name" db:"first_name"`
	LastName    string             `json:"last_name" db:"last_name"`
	EmailStatus ContactEmailStatus `json:"email_status" db:"email_status"`
	DoNotEmail  bool               `json:"do_not_email" db:"do_not_email"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// Company groups contacts by email domain, unique per (workspace, domain).
// Created lazily from a contact's address; personal mailbox domains never
// produce one.
type Company struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Domain      string    `json:"domain" db:"domain"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// personalDomains are mailbox providers that never map to a Company.
var personalDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"live.com":       {},
	"msn.com":        {},
	"aol.com":        {},
	"icloud.com":     {},
	"me.com":         {},
	"protonmail.com": {},
	"proton.me":      {},
	"mail.com":       {},
	"gmx.com":        {},
	"gmx.net":        {},
	"yandex.com":     {},
	"yandex.ru":      {},
	"zoho.com":       {},
}

// IsPersonalEmailDomain reports whether the domain belongs to a consumer
// mailbox provider rather than a company.
func IsPersonalEmailDomain(domain string) bool {
	_, ok := personalDomains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// EmailDomain extracts the domain part of an address, lower-cased.
// Returns "" when the address has no @.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// EmailActivity is the unified per-contact per-step engagement record,
// unique by (workspace, campaign, contact, step_number). Boolean flags are
// monotonic: events set them, nothing unsets them.
type EmailActivity struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	CampaignID  string `json:"campaign_id" db:"campaign_id"`
	ContactID   string `json:"contact_id" db:"contact_id"`
	StepNumber  int    `json:"step_number" db:"step_number"`

	Sent   bool       `json:"sent" db:"sent"`
	SentAt *time.Time `json:"sent_at" db:"sent_at"`

	Opened        bool       `json:"opened" db:"opened"`
	FirstOpenedAt *time.Time `json:"first_opened_at" db:"first_opened_at"`
	OpenCount     int        `json:"open_count" db:"open_count"`

	Clicked        bool       `json:"clicked" db:"clicked"`
	FirstClickedAt *time.Time `json:"first_clicked_at" db:"first_clicked_at"`
	ClickCount     int        `json:"click_count" db:"click_count"`

	Replied        bool          `json:"replied" db:"replied"`
	RepliedAt      *time.Time    `json:"replied_at" db:"replied_at"`
	ReplyText      string        `json:"reply_text" db:"reply_text"`
	ReplyCategory  ReplyCategory `json:"reply_category" db:"reply_category"`
	ReplySentiment Sentiment     `json:"reply_sentiment" db:"reply_sentiment"`

	Bounced      bool   `json:"bounced" db:"bounced"`
	BounceType   string `json:"bounce_type" db:"bounce_type"`
	BounceReason string `json:"bounce_reason" db:"bounce_reason"`

	Unsubscribed   bool       `json:"unsubscribed" db:"unsubscribed"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at" db:"unsubscribed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MessageThread captures reply bodies observed through webhooks. Append-only.
type MessageThread struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	CampaignID  string    `json:"campaign_id" db:"campaign_id"`
	ContactID   string    `json:"contact_id" db:"contact_id"`
	Direction   string    `json:"direction" db:"direction"`
	Body        string    `json:"body" db:"body"`
	ReceivedAt  time.Time `json:"received_at" db:"received_at"`
}

// LinkClick records a single URL click on an activity.
type LinkClick struct {
	ID         string    `json:"id" db:"id"`
	ActivityID string    `json:"activity_id" db:"activity_id"`
	URL        string    `json:"url" db:"url"`
	ClickedAt  time.Time `json:"clicked_at" db:"clicked_at"`
}
