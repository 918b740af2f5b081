// Package replyio is the Reply.io API adapter. Reply.io authenticates with
// an x-api-key header and rate limits by method class, not by request: list
// and step reads share one budget while the campaign stats endpoint has a
// much slower one. The client therefore runs two paced transports, one per
// class, both keyed through the shared request pacer.
package replyio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/metrics"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/httpretry"
	"github.com/growthloop/outreach-sync/internal/pkg/pacer"
)

const (
	listPaceKey  = "replyio:list"
	statsPaceKey = "replyio:stats"

	// listPageSize is the `top` parameter of GET /sequences. Reply.io caps
	// pages at 100; a shorter page marks the end of the listing.
	listPageSize = 100

	// maxListPages bounds the pagination loop against a server that never
	// returns a short page.
	maxListPages = 100
)

var errNotFound = errors.New("not found")

// Client calls the Reply.io REST API. One client serves every workspace;
// the workspace API key travels with each call.
type Client struct {
	baseURL     string
	listClient  httpretry.HTTPDoer
	statsClient httpretry.HTTPDoer
	metrics     *metrics.Metrics
}

// NewClient creates a Reply.io client from config. Retries honor the
// request pacer of their method class, so a retried stats call still waits
// the full stats interval.
func NewClient(cfg config.ReplyIOConfig, p *pacer.Pacer, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		listClient: httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, 3,
			httpretry.WithRetryAfter429(10*time.Second),
			httpretry.WithPace(p.Bind(listPaceKey, cfg.ListSpacing())),
		),
		statsClient: httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, 3,
			httpretry.WithRetryAfter429(10*time.Second),
			httpretry.WithPace(p.Bind(statsPaceKey, cfg.StatsSpacing())),
		),
		metrics: m,
	}
}

func (c *Client) Provider() domain.Provider {
	return domain.ProviderReplyIO
}

// ListCampaigns pages through GET /sequences until a short page. Reply.io
// wraps the page in different envelopes across API versions, so the page
// array is probed rather than decoded into a fixed shape.
func (c *Client) ListCampaigns(ctx context.Context, apiKey string) ([]domain.CampaignRef, error) {
	var refs []domain.CampaignRef
	for page := 0; page < maxListPages; page++ {
		params := url.Values{}
		params.Set("top", strconv.Itoa(listPageSize))
		params.Set("skip", strconv.Itoa(page*listPageSize))

		body, err := c.doRequest(ctx, c.listClient, apiKey, http.MethodGet, "/sequences", params)
		if err != nil {
			return nil, fmt.Errorf("fetching sequences page %d: %w", page, err)
		}

		items, ok := pageItems(body)
		if !ok {
			return nil, fmt.Errorf("parsing sequences page %d: unrecognized payload", page)
		}

		for _, item := range items {
			id := item.Get("id")
			if !id.Exists() {
				continue
			}
			refs = append(refs, domain.CampaignRef{
				PlatformID: id.String(),
				Name:       item.Get("name").String(),
				Status:     mapStatus(item.Get("status").String()),
				CreatedAt:  parseTime(firstResultString(item, "created", "createdAt", "creationDate")),
			})
		}

		if len(items) < listPageSize {
			break
		}
	}
	return refs, nil
}

// FetchStats reads the lifetime counters for one sequence. The endpoint
// sometimes answers with the campaign object, sometimes with a one-element
// array around it, and a 404 simply means the sequence has no stats yet,
// which counts as all zeros.
func (c *Client) FetchStats(ctx context.Context, apiKey, campaignID string) (domain.LifetimeCounters, error) {
	params := url.Values{}
	params.Set("id", campaignID)

	body, err := c.doRequest(ctx, c.statsClient, apiKey, http.MethodGet, "/v1/campaigns", params)
	if errors.Is(err, errNotFound) {
		return domain.LifetimeCounters{}, nil
	}
	if err != nil {
		return domain.LifetimeCounters{}, fmt.Errorf("fetching stats for sequence %s: %w", campaignID, err)
	}

	root := gjson.ParseBytes(body)
	if root.IsArray() {
		arr := root.Array()
		if len(arr) == 0 {
			return domain.LifetimeCounters{}, nil
		}
		body = []byte(arr[0].Raw)
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

// FetchSteps reads the email steps of one sequence. A 404 means the
// sequence has no steps endpoint on this account tier; that is an empty
// sequence, not an error.
func (c *Client) FetchSteps(ctx context.Context, apiKey, campaignID string) ([]domain.SequenceStep, error) {
	body, err := c.doRequest(ctx, c.listClient, apiKey, http.MethodGet, "/sequences/"+campaignID+"/steps", nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching steps for sequence %s: %w", campaignID, err)
	}
	return extractSteps(body), nil
}

// FindContact looks a person up by email address. Reply.io does not expose
// message bodies on this endpoint, so a match carries campaign names only.
func (c *Client) FindContact(ctx context.Context, apiKey, email string) (*outreach.ContactMatch, error) {
	params := url.Values{}
	params.Set("email", email)

	body, err := c.doRequest(ctx, c.listClient, apiKey, http.MethodGet, "/v1/people", params)
	if errors.Is(err, errNotFound) {
		return &outreach.ContactMatch{Provider: domain.ProviderReplyIO}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching person %s: %w", email, err)
	}

	root := gjson.ParseBytes(body)
	id := root.Get("id")
	if !id.Exists() {
		return &outreach.ContactMatch{Provider: domain.ProviderReplyIO}, nil
	}

	match := &outreach.ContactMatch{
		Provider:          domain.ProviderReplyIO,
		Found:             true,
		PlatformContactID: id.String(),
		FirstName:         root.Get("firstName").String(),
		LastName:          root.Get("lastName").String(),
	}
	for _, container := range []string{"campaigns", "sequences"} {
		list := root.Get(container)
		if !list.IsArray() {
			continue
		}
		for _, entry := range list.Array() {
			if name := entry.Get("name").String(); name != "" {
				match.Campaigns = append(match.Campaigns, name)
			}
		}
		break
	}
	return match, nil
}

// pageItems unwraps one listing page. Accepts a bare array or an envelope
// keyed by sequences, items, or campaigns.
func pageItems(body []byte) ([]gjson.Result, bool) {
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array(), true
	}
	for _, key := range []string{"sequences", "items", "campaigns"} {
		if list := root.Get(key); list.IsArray() {
			return list.Array(), true
		}
	}
	return nil, false
}

func (c *Client) doRequest(ctx context.Context, client httpretry.HTTPDoer, apiKey, method, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		c.metrics.IncProviderRequest(domain.ProviderReplyIO.String(), "error")
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncProviderRequest(domain.ProviderReplyIO.String(), "error")
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.IncProviderRequest(domain.ProviderReplyIO.String(), "not_found")
		return nil, fmt.Errorf("API error (status %d): %w", resp.StatusCode, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.IncProviderRequest(domain.ProviderReplyIO.String(), "error")
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	c.metrics.IncProviderRequest(domain.ProviderReplyIO.String(), "ok")
	return body, nil
}

func firstResultString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := item.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// parseTime accepts the timestamp shapes Reply.io emits: RFC 3339 and bare
// datetimes with or without fractional seconds.
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
