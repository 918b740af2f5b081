// Package smartlead is the Smartlead API adapter. Smartlead authenticates
// with an api_key query parameter and enforces roughly four requests per
// second per key, so every call is paced through the shared request pacer
// before it leaves the process.
package smartlead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/metrics"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/httpretry"
	"github.com/growthloop/outreach-sync/internal/pkg/pacer"
)

// paceKey spaces all Smartlead traffic on one shared schedule; the API
// throttles per key, but a single schedule keeps bursts from concurrent
// workspaces under the limit too.
const paceKey = "smartlead"

var errNotFound = errors.New("not found")

// Client calls the Smartlead REST API. One client serves every workspace;
// the workspace API key travels with each call.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
	metrics    *metrics.Metrics
}

// NewClient creates a Smartlead client from config. Retries honor the
// request pacer, so a retried call still waits its turn in line.
func NewClient(cfg config.SmartleadConfig, p *pacer.Pacer, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, 3,
			httpretry.WithRetryAfter429(2*time.Second),
			httpretry.WithPace(p.Bind(paceKey, cfg.Spacing())),
		),
		metrics: m,
	}
}

func (c *Client) Provider() domain.Provider {
	return domain.ProviderSmartlead
}

// ListCampaigns fetches every campaign on the account in one call.
// Smartlead does not paginate this endpoint.
func (c *Client) ListCampaigns(ctx context.Context, apiKey string) ([]domain.CampaignRef, error) {
	body, err := c.doRequest(ctx, apiKey, http.MethodGet, "/campaigns", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}

	var records []campaignRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parsing campaigns: %w", err)
	}

	refs := make([]domain.CampaignRef, 0, len(records))
	for _, rec := range records {
		if rec.ID.String() == "" {
			continue
		}
		refs = append(refs, domain.CampaignRef{
			PlatformID: rec.ID.String(),
			Name:       rec.Name,
			Status:     domain.CampaignStatus(strings.ToLower(rec.Status)),
			CreatedAt:  parseTime(rec.CreatedAt),
		})
	}
	return refs, nil
}

// FetchStats reads the lifetime analytics counters for one campaign.
// Smartlead returns counters as numeric strings, and field names differ
// between account generations, so each metric probes its synonym list.
// A 404 here is an error: the campaign came from ListCampaigns moments ago.
func (c *Client) FetchStats(ctx context.Context, apiKey, campaignID string) (domain.LifetimeCounters, error) {
	body, err := c.doRequest(ctx, apiKey, http.MethodGet, "/campaigns/"+campaignID+"/analytics", nil)
	if err != nil {
		return domain.LifetimeCounters{}, fmt.Errorf("fetching analytics for campaign %s: %w", campaignID, err)
	}

	var counters domain.LifetimeCounters
	counters.Sent, _ = outreach.FirstNumber(body, sentKeys...)
	counters.Opened, _ = outreach.FirstNumber(body, openedKeys...)
	counters.Clicked, _ = outreach.FirstNumber(body, clickedKeys...)
	counters.Replied, _ = outreach.FirstNumber(body, repliedKeys...)
	counters.Bounced, _ = outreach.FirstNumber(body, bouncedKeys...)
	counters.Interested, _ = outreach.FirstNumber(body, interestedKeys...)
	return counters, nil
}

// FetchSteps reads the email sequence for one campaign and normalizes it.
// Variant steps collapse to their first variant.
func (c *Client) FetchSteps(ctx context.Context, apiKey, campaignID string) ([]domain.SequenceStep, error) {
	body, err := c.doRequest(ctx, apiKey, http.MethodGet, "/campaigns/"+campaignID+"/sequences", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching sequences for campaign %s: %w", campaignID, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing sequences for campaign %s: %w", campaignID, err)
	}

	steps := make([]domain.SequenceStep, 0, len(raw))
	for i, stepJSON := range raw {
		number, ok := outreach.FirstNumber(stepJSON, "seq_number", "step_number")
		if !ok {
			number = int64(i + 1)
		}

		subject := outreach.FirstString(stepJSON, "subject", "email_subject")
		bodyText := outreach.FirstString(stepJSON, "email_body", "body")
		if subject == "" && bodyText == "" {
			// Variant campaigns keep content one level down.
			subject = outreach.FirstString(stepJSON, "sequence_variants.0.subject")
			bodyText = outreach.FirstString(stepJSON, "sequence_variants.0.email_body")
		}

		delay, _ := outreach.FirstNumber(stepJSON, "seq_delay_details.delay_in_days", "delay_in_days", "delay_days")

		steps = append(steps, domain.SequenceStep{
			StepNumber:  int(number),
			Name:        outreach.FirstString(stepJSON, "name"),
			Subject:     subject,
			Body:        bodyText,
			BodyPreview: outreach.BodyPreview(bodyText, outreach.PreviewLength),
			DelayDays:   int(delay),
			Variables:   outreach.ExtractVariables(subject, bodyText),
		})
	}
	return steps, nil
}

// FindContact looks a lead up by email address and, when the lead belongs
// to at least one campaign, pulls recent message history for the first one.
// A missing lead is a clean miss, not an error.
func (c *Client) FindContact(ctx context.Context, apiKey, email string) (*outreach.ContactMatch, error) {
	params := url.Values{}
	params.Set("email", email)

	body, err := c.doRequest(ctx, apiKey, http.MethodGet, "/leads", params)
	if errors.Is(err, errNotFound) {
		return &outreach.ContactMatch{Provider: domain.ProviderSmartlead}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching lead %s: %w", email, err)
	}

	var lead leadRecord
	if err := json.Unmarshal(body, &lead); err != nil {
		return nil, fmt.Errorf("parsing lead: %w", err)
	}
	if lead.ID.String() == "" {
		return &outreach.ContactMatch{Provider: domain.ProviderSmartlead}, nil
	}

	match := &outreach.ContactMatch{
		Provider:          domain.ProviderSmartlead,
		Found:             true,
		PlatformContactID: lead.ID.String(),
		FirstName:         lead.FirstName,
		LastName:          lead.LastName,
	}
	for _, cl := range lead.Campaigns {
		if cl.CampaignName != "" {
			match.Campaigns = append(match.Campaigns, cl.CampaignName)
		}
	}

	if len(lead.Campaigns) > 0 {
		campaignID := lead.Campaigns[0].CampaignID.String()
		snippets, err := c.fetchMessageHistory(ctx, apiKey, campaignID, lead.ID.String())
		if err == nil {
			match.Messages = snippets
		}
		// History is best effort; a failed fetch still returns the match.
	}
	return match, nil
}

func (c *Client) fetchMessageHistory(ctx context.Context, apiKey, campaignID, leadID string) ([]outreach.MessageSnippet, error) {
	path := fmt.Sprintf("/campaigns/%s/leads/%s/message-history", campaignID, leadID)
	body, err := c.doRequest(ctx, apiKey, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing message history: %w", err)
	}

	// Keep the tail of the thread; the search surface shows recent context.
	const maxSnippets = 5
	if len(resp.History) > maxSnippets {
		resp.History = resp.History[len(resp.History)-maxSnippets:]
	}

	snippets := make([]outreach.MessageSnippet, 0, len(resp.History))
	for _, entry := range resp.History {
		direction := "outbound"
		if strings.EqualFold(entry.Type, "REPLY") {
			direction = "inbound"
		}
		snippets = append(snippets, outreach.MessageSnippet{
			CampaignID: campaignID,
			Subject:    entry.Subject,
			Snippet:    outreach.BodyPreview(entry.EmailBody, outreach.PreviewLength),
			Direction:  direction,
			SentAt:     parseTime(entry.Time),
		})
	}
	return snippets, nil
}

func (c *Client) doRequest(ctx context.Context, apiKey, method, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", apiKey)

	u := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncProviderRequest(domain.ProviderSmartlead.String(), "error")
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncProviderRequest(domain.ProviderSmartlead.String(), "error")
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.IncProviderRequest(domain.ProviderSmartlead.String(), "not_found")
		return nil, fmt.Errorf("API error (status %d): %w", resp.StatusCode, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.IncProviderRequest(domain.ProviderSmartlead.String(), "error")
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	c.metrics.IncProviderRequest(domain.ProviderSmartlead.String(), "ok")
	return body, nil
}

// parseTime accepts the timestamp shapes Smartlead emits: RFC 3339,
// a bare datetime, or a bare date.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
