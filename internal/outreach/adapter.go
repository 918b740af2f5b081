// Package outreach defines the uniform surface every provider adapter
// implements, plus the text helpers shared by the adapters (personalization
// variable extraction, body previews).
//
// Adapters normalize wildly different provider APIs into three calls. All
// of them take the connection's API key per call because keys are
// per-workspace, while adapter instances (with their rate-limit pacing) are
// process-wide singletons.
package outreach

import (
	"context"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// Adapter is the uniform provider interface the orchestrator drives.
type Adapter interface {
	// Provider identifies which platform this adapter talks to.
	Provider() domain.Provider

	// ListCampaigns returns every campaign on the account, in the
	// provider's listing order. Pagination happens inside the adapter.
	ListCampaigns(ctx context.Context, apiKey string) ([]domain.CampaignRef, error)

	// FetchStats returns the campaign's lifetime counters. Providers that
	// tolerate missing stats (Reply.io) return zero counters, not an error.
	FetchStats(ctx context.Context, apiKey, campaignID string) (domain.LifetimeCounters, error)

	// FetchSteps returns the campaign's sequence emails, normalized and
	// 1-based. Providers that tolerate missing steps return an empty slice.
	FetchSteps(ctx context.Context, apiKey, campaignID string) ([]domain.SequenceStep, error)
}

// ContactFinder is the optional lookup surface used by contact search.
type ContactFinder interface {
	// FindContact reports whether the email exists on the provider account
	// and returns recent message history if it does. Not found is
	// (match with Found=false, nil error), not an error.
	FindContact(ctx context.Context, apiKey, email string) (*ContactMatch, error)
}

// ContactMatch is one provider's view of a searched contact.
type ContactMatch struct {
	Provider          domain.Provider  `json:"provider"`
	Found             bool             `json:"found"`
	PlatformContactID string           `json:"platform_contact_id,omitempty"`
	FirstName         string           `json:"first_name,omitempty"`
	LastName          string           `json:"last_name,omitempty"`
	Campaigns         []string         `json:"campaigns,omitempty"`
	Messages          []MessageSnippet `json:"messages,omitempty"`
}

// MessageSnippet is a truncated message-history entry for contact search.
type MessageSnippet struct {
	CampaignID string     `json:"campaign_id,omitempty"`
	Subject    string     `json:"subject,omitempty"`
	Snippet    string     `json:"snippet"`
	Direction  string     `json:"direction"` // "outbound" or "reply"
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

// Registry maps providers to their adapters.
type Registry map[domain.Provider]Adapter

// Get returns the adapter for p, or nil when the provider is unknown.
func (r Registry) Get(p domain.Provider) Adapter {
	return r[p]
}
