package smartlead

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/pkg/pacer"
)

func newTestClient(serverURL string) *Client {
	cfg := config.SmartleadConfig{
		BaseURL:        serverURL,
		TimeoutSeconds: 5,
		SpacingMillis:  1,
	}
	return NewClient(cfg, pacer.New(), nil)
}

func TestListCampaigns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 42, "name": "Outreach Q1", "status": "ACTIVE", "created_at": "2025-01-01"},
			{"id": "87", "name": "Follow-ups", "status": "PAUSED", "created_at": "2025-02-10T08:30:00Z"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	refs, err := client.ListCampaigns(context.Background(), "test-key")
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "42", refs[0].PlatformID)
	assert.Equal(t, "Outreach Q1", refs[0].Name)
	assert.Equal(t, domain.CampaignActive, refs[0].Status)
	require.NotNil(t, refs[0].CreatedAt)
	assert.Equal(t, "2025-01-01", refs[0].CreatedAt.Format("2006-01-02"))

	assert.Equal(t, "87", refs[1].PlatformID)
	assert.Equal(t, domain.CampaignPaused, refs[1].Status)
}

func TestFetchStatsStringCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns/42/analytics", r.URL.Path)
		w.Write([]byte(`{
			"sent_count": "1000",
			"unique_open_count": "300",
			"unique_click_count": "40",
			"reply_count": "25",
			"bounce_count": "5"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	counters, err := client.FetchStats(context.Background(), "test-key", "42")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), counters.Sent)
	assert.Equal(t, int64(300), counters.Opened)
	assert.Equal(t, int64(40), counters.Clicked)
	assert.Equal(t, int64(25), counters.Replied)
	assert.Equal(t, int64(5), counters.Bounced)
	assert.Equal(t, int64(0), counters.Interested)
}

func TestFetchStatsSynonymFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"unique_sent_count": 800,
			"open_count": 120,
			"campaign_lead_stats": {"interested": 9}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	counters, err := client.FetchStats(context.Background(), "test-key", "42")
	require.NoError(t, err)

	assert.Equal(t, int64(800), counters.Sent)
	assert.Equal(t, int64(120), counters.Opened)
	assert.Equal(t, int64(9), counters.Interested)
	assert.Equal(t, int64(0), counters.Replied)
}

func TestFetchStatsNotFoundIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchStats(context.Background(), "test-key", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchSteps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaigns/42/sequences", r.URL.Path)
		w.Write([]byte(`[
			{
				"seq_number": 1,
				"subject": "Quick intro {{first_name}}",
				"email_body": "<p>Hi {{first_name}},</p><p>I work with {{company}}.</p>",
				"seq_delay_details": {"delay_in_days": 0}
			},
			{
				"seq_number": 2,
				"sequence_variants": [
					{"subject": "Following up", "email_body": "<div>Any thoughts, {{first_name}}?</div>"}
				],
				"seq_delay_details": {"delay_in_days": 3}
			}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	steps, err := client.FetchSteps(context.Background(), "test-key", "42")
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, 1, steps[0].StepNumber)
	assert.Equal(t, "Quick intro {{first_name}}", steps[0].Subject)
	assert.Equal(t, 0, steps[0].DelayDays)
	assert.Equal(t, []string{"first_name", "company"}, steps[0].Variables)
	assert.Equal(t, "Hi {{first_name}}, I work with {{company}}.", steps[0].BodyPreview)

	assert.Equal(t, 2, steps[1].StepNumber)
	assert.Equal(t, "Following up", steps[1].Subject)
	assert.Equal(t, 3, steps[1].DelayDays)
	assert.Equal(t, []string{"first_name"}, steps[1].Variables)
}

func TestFindContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/leads":
			assert.Equal(t, "jane@acme.com", r.URL.Query().Get("email"))
			w.Write([]byte(`{
				"id": 501,
				"first_name": "Jane",
				"last_name": "Doe",
				"email": "jane@acme.com",
				"campaign_leads": [{"campaign_id": 42, "campaign_name": "Outreach Q1"}]
			}`))
		case "/campaigns/42/leads/501/message-history":
			w.Write([]byte(`{"history": [
				{"type": "SENT", "time": "2025-03-01T10:00:00Z", "subject": "Quick intro", "email_body": "<p>Hi Jane</p>"},
				{"type": "REPLY", "time": "2025-03-02T09:15:00Z", "subject": "Re: Quick intro", "email_body": "<p>Tell me more</p>"}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	match, err := client.FindContact(context.Background(), "test-key", "jane@acme.com")
	require.NoError(t, err)

	assert.True(t, match.Found)
	assert.Equal(t, domain.ProviderSmartlead, match.Provider)
	assert.Equal(t, "501", match.PlatformContactID)
	assert.Equal(t, "Jane", match.FirstName)
	assert.Equal(t, []string{"Outreach Q1"}, match.Campaigns)
	require.Len(t, match.Messages, 2)
	assert.Equal(t, "outbound", match.Messages[0].Direction)
	assert.Equal(t, "inbound", match.Messages[1].Direction)
	assert.Equal(t, "Tell me more", match.Messages[1].Snippet)
}

func TestFindContactMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	match, err := client.FindContact(context.Background(), "test-key", "nobody@acme.com")
	require.NoError(t, err)
	assert.False(t, match.Found)
	assert.Equal(t, domain.ProviderSmartlead, match.Provider)
}

func TestAPIErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListCampaigns(context.Background(), "bad-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}
