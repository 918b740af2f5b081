package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/metrics"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/service/contactsearch"
	syncsvc "github.com/growthloop/outreach-sync/internal/service/sync"
	"github.com/growthloop/outreach-sync/internal/service/webhook"
)

type fakeSyncService struct {
	gotWorkspace string
	gotOpts      syncsvc.Options
	reports      []syncsvc.Report
	err          error

	gotStopWorkspace string
	gotStopProvider  domain.Provider
	stopErr          error

	statusConn *domain.APIConnection
	statusErr  error
}

func (f *fakeSyncService) RunSync(ctx context.Context, workspaceID string, opts syncsvc.Options) ([]syncsvc.Report, error) {
	f.gotWorkspace = workspaceID
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.reports, nil
}

func (f *fakeSyncService) Stop(ctx context.Context, workspaceID string, provider domain.Provider) error {
	f.gotStopWorkspace = workspaceID
	f.gotStopProvider = provider
	return f.stopErr
}

func (f *fakeSyncService) Status(ctx context.Context, workspaceID string, provider domain.Provider) (*domain.APIConnection, error) {
	return f.statusConn, f.statusErr
}

type fakeWebhookService struct {
	gotProvider  domain.Provider
	gotBody      []byte
	gotSignature string
	result       *webhook.Result
	err          error
}

func (f *fakeWebhookService) Process(ctx context.Context, provider domain.Provider, body []byte, signature string) (*webhook.Result, error) {
	f.gotProvider = provider
	f.gotBody = body
	f.gotSignature = signature
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &webhook.Result{Status: webhook.StatusProcessed, EventID: "ev-1"}, nil
}

type fakeSearchService struct {
	gotWorkspace string
	gotEmail     string
	result       *contactsearch.Result
	err          error
}

func (f *fakeSearchService) Search(ctx context.Context, workspaceID, email string) (*contactsearch.Result, error) {
	f.gotWorkspace = workspaceID
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &contactsearch.Result{Email: email}, nil
}

type testEnv struct {
	sync    *fakeSyncService
	webhook *fakeWebhookService
	search  *fakeSearchService
	router  http.Handler
}

func newTestEnv(authCfg config.AuthConfig) *testEnv {
	env := &testEnv{
		sync: &fakeSyncService{
			reports: []syncsvc.Report{{
				WorkspaceID: "ws-1",
				Provider:    domain.ProviderSmartlead,
				Status:      domain.SyncSuccess,
				Complete:    true,
				Synced:      12,
				DurationMS:  1840,
			}},
		},
		webhook: &fakeWebhookService{},
		search:  &fakeSearchService{},
	}
	h := NewHandlers(NewAuthenticator(authCfg), env.sync, env.webhook, env.search, prometheus.NewRegistry())
	env.router = SetupRoutes(h, NewHealthChecker(nil, nil))
	return env
}

func postJSON(t *testing.T, router http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postRaw(t *testing.T, router http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// =====================================================================
// POST /functions/email-sync
// =====================================================================

func TestEmailSync(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postJSON(t, env.router, "/functions/email-sync", map[string]interface{}{
		"workspace_id": "ws-1",
		"platform":     "smartlead",
		"reset":        true,
		"continue_at":  12,
		"batch_number": 2,
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["complete"])
	assert.Equal(t, float64(1840), resp["duration_ms"])
	assert.Len(t, resp["results"], 1)

	assert.Equal(t, "ws-1", env.sync.gotWorkspace)
	assert.Equal(t, domain.ProviderSmartlead, env.sync.gotOpts.Provider)
	assert.True(t, env.sync.gotOpts.Reset)
	assert.Equal(t, 2, env.sync.gotOpts.BatchNumber)
	require.NotNil(t, env.sync.gotOpts.ContinueAt)
	assert.Equal(t, 12, *env.sync.gotOpts.ContinueAt)
	assert.False(t, env.sync.gotOpts.InternalContinuation)
}

func TestEmailSyncPlatformAliases(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postJSON(t, env.router, "/functions/email-sync", map[string]interface{}{
		"workspace_id": "ws-1",
		"platform":     "reply.io",
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ProviderReplyIO, env.sync.gotOpts.Provider)
}

func TestEmailSyncValidation(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postJSON(t, env.router, "/functions/email-sync",
		map[string]interface{}{"platform": "smartlead"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "workspace_id")

	rec = postJSON(t, env.router, "/functions/email-sync",
		map[string]interface{}{"workspace_id": "ws-1", "platform": "mailchimp"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "unknown provider")

	rec = postRaw(t, env.router, "/functions/email-sync", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmailSyncAuth(t *testing.T) {
	cfg := config.AuthConfig{ServiceRoleKey: "srv-key", AnonKey: "anon-key"}
	body := map[string]interface{}{"workspace_id": "ws-1"}

	env := newTestEnv(cfg)
	rec := postJSON(t, env.router, "/functions/email-sync", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, env.router, "/functions/email-sync", body,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, env.router, "/functions/email-sync", body,
		map[string]string{"Authorization": "Bearer anon-key"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, env.router, "/functions/email-sync", body,
		map[string]string{"Authorization": "Bearer srv-key"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmailSyncInternalContinuationRequiresServiceKey(t *testing.T) {
	cfg := config.AuthConfig{ServiceRoleKey: "srv-key", AnonKey: "anon-key"}
	body := map[string]interface{}{
		"workspace_id":          "ws-1",
		"internal_continuation": true,
		"batch_number":          3,
	}

	env := newTestEnv(cfg)
	rec := postJSON(t, env.router, "/functions/email-sync", body,
		map[string]string{"Authorization": "Bearer anon-key"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, env.router, "/functions/email-sync", body,
		map[string]string{"Authorization": "Bearer srv-key"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.sync.gotOpts.InternalContinuation)
	assert.Equal(t, 3, env.sync.gotOpts.BatchNumber)
}

func TestEmailSyncRunError(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.sync.err = errors.New("listing campaigns: connection refused")

	rec := postJSON(t, env.router, "/functions/email-sync",
		map[string]interface{}{"workspace_id": "ws-1"}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "connection refused")
}

func TestEmailSyncPartialRunSurfacesProgress(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.sync.reports = []syncsvc.Report{{
		WorkspaceID: "ws-1",
		Provider:    domain.ProviderSmartlead,
		Status:      domain.SyncPartial,
		Complete:    false,
		Synced:      20,
		Progress:    &domain.SyncProgress{BatchIndex: 1, CampaignIndex: 20, TotalCampaigns: 57},
		DurationMS:  55012,
	}}

	rec := postJSON(t, env.router, "/functions/email-sync",
		map[string]interface{}{"workspace_id": "ws-1", "platform": "smartlead"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["complete"])

	progress, ok := resp["progress"].(map[string]interface{})
	require.True(t, ok, "single-run response carries the cursor at the top level")
	assert.Equal(t, float64(20), progress["campaign_index"])
	assert.Equal(t, float64(57), progress["total_campaigns"])
}

func TestEmailSyncMultiProviderAggregation(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.sync.reports = []syncsvc.Report{
		{
			WorkspaceID: "ws-1",
			Provider:    domain.ProviderSmartlead,
			Status:      domain.SyncSuccess,
			Complete:    true,
			Synced:      30,
			DurationMS:  12000,
		},
		{
			WorkspaceID: "ws-1",
			Provider:    domain.ProviderReplyIO,
			Status:      domain.SyncPartial,
			Complete:    false,
			Synced:      18,
			Progress:    &domain.SyncProgress{BatchIndex: 1, CampaignIndex: 18, TotalCampaigns: 44},
			DurationMS:  55003,
		},
	}

	rec := postJSON(t, env.router, "/functions/email-sync",
		map[string]interface{}{"workspace_id": "ws-1"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["complete"])
	assert.Equal(t, float64(67003), resp["duration_ms"])
	assert.Len(t, resp["results"], 2)
	// With two providers in flight there is no single top-level cursor;
	// callers read per-provider progress out of results.
	assert.NotContains(t, resp, "progress")
}

// =====================================================================
// POST /functions/sync-stop, GET /functions/sync-status
// =====================================================================

func TestSyncStop(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postJSON(t, env.router, "/functions/sync-stop", map[string]interface{}{
		"workspace_id": "ws-1",
		"platform":     "smartlead",
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
	assert.Equal(t, "ws-1", env.sync.gotStopWorkspace)
	assert.Equal(t, domain.ProviderSmartlead, env.sync.gotStopProvider)
}

func TestSyncStopValidation(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postJSON(t, env.router, "/functions/sync-stop",
		map[string]interface{}{"platform": "smartlead"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unlike email-sync, stop targets exactly one provider.
	rec = postJSON(t, env.router, "/functions/sync-stop",
		map[string]interface{}{"workspace_id": "ws-1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncStopNoConnection(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.sync.stopErr = syncsvc.ErrNoConnection

	rec := postJSON(t, env.router, "/functions/sync-stop", map[string]interface{}{
		"workspace_id": "ws-1",
		"platform":     "replyio",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncStopAuth(t *testing.T) {
	env := newTestEnv(config.AuthConfig{AnonKey: "anon-key"})
	body := map[string]interface{}{"workspace_id": "ws-1", "platform": "smartlead"}

	rec := postJSON(t, env.router, "/functions/sync-stop", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, env.router, "/functions/sync-stop", body,
		map[string]string{"Authorization": "Bearer anon-key"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSyncStatus(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.sync.statusConn = &domain.APIConnection{
		ID:          "conn-1",
		WorkspaceID: "ws-1",
		Provider:    domain.ProviderSmartlead,
		APIKey:      "sl-secret-key",
		IsActive:    true,
		SyncStatus:  domain.SyncPartial,
		SyncProgress: &domain.SyncProgress{
			BatchIndex:     2,
			CampaignIndex:  40,
			TotalCampaigns: 57,
		},
	}

	req := httptest.NewRequest(http.MethodGet,
		"/functions/sync-status?workspace_id=ws-1&platform=smartlead", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "partial", resp["sync_status"])
	progress, ok := resp["sync_progress"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(40), progress["campaign_index"])
	// Credentials never leave the server.
	assert.NotContains(t, rec.Body.String(), "sl-secret-key")
}

func TestSyncStatusNotFound(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet,
		"/functions/sync-status?workspace_id=ws-1&platform=replyio", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncStatusValidation(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/functions/sync-status?platform=smartlead", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/functions/sync-status?workspace_id=ws-1", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =====================================================================
// POST /functions/smartlead-webhook, /functions/replyio-webhook
// =====================================================================

func TestSmartleadWebhook(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	payload := `{"event_type":"EMAIL_SENT","campaign_id":123}`

	rec := postRaw(t, env.router, "/functions/smartlead-webhook", payload,
		map[string]string{"X-Smartlead-Signature": "sha256=abc"})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "processed", resp["status"])
	assert.Equal(t, "ev-1", resp["event_id"])

	assert.Equal(t, domain.ProviderSmartlead, env.webhook.gotProvider)
	assert.Equal(t, payload, string(env.webhook.gotBody))
	assert.Equal(t, "sha256=abc", env.webhook.gotSignature)
}

func TestReplyIOWebhook(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postRaw(t, env.router, "/functions/replyio-webhook", `{"event":"email_opened"}`,
		map[string]string{"X-Replyio-Signature": "sig-r"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ProviderReplyIO, env.webhook.gotProvider)
	assert.Equal(t, "sig-r", env.webhook.gotSignature)
}

func TestWebhookGenericSignatureFallback(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postRaw(t, env.router, "/functions/smartlead-webhook", `{}`,
		map[string]string{"X-Webhook-Signature": "generic-sig"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "generic-sig", env.webhook.gotSignature)
}

func TestWebhookBadSignature(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.webhook.err = webhook.ErrBadSignature

	rec := postRaw(t, env.router, "/functions/smartlead-webhook", `{}`,
		map[string]string{"X-Smartlead-Signature": "forged"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid signature", decodeBody(t, rec)["error"])
}

func TestWebhookValidationError(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.webhook.err = &webhook.ValidationError{Field: "event_type", Reason: "missing"}

	rec := postRaw(t, env.router, "/functions/replyio-webhook", `{"campaign_id":1}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "event_type")
}

func TestWebhookProcessingError(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.webhook.err = errors.New("db write failed")

	rec := postRaw(t, env.router, "/functions/smartlead-webhook", `{}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details never leak to the provider.
	assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])
}

func TestWebhookBodyTooLarge(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postRaw(t, env.router, "/functions/smartlead-webhook",
		strings.Repeat("a", maxWebhookBody+1), nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// =====================================================================
// POST /functions/contact-search
// =====================================================================

func TestContactSearch(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})
	env.search.result = &contactsearch.Result{
		Email:   "jane@acme.com",
		Found:   true,
		FoundIn: []domain.Provider{domain.ProviderSmartlead},
		Matches: []outreach.ContactMatch{
			{
				Provider:          domain.ProviderSmartlead,
				Found:             true,
				PlatformContactID: "sl-991",
				FirstName:         "Jane",
				Campaigns:         []string{"Q3 Outbound"},
			},
			{Provider: domain.ProviderReplyIO},
		},
	}

	rec := postJSON(t, env.router, "/functions/contact-search",
		map[string]interface{}{"workspace_id": "ws-1", "email": "jane@acme.com"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["found"])
	assert.Len(t, resp["results"], 2)

	assert.Equal(t, "ws-1", env.search.gotWorkspace)
	assert.Equal(t, "jane@acme.com", env.search.gotEmail)
}

func TestContactSearchValidation(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	rec := postJSON(t, env.router, "/functions/contact-search",
		map[string]interface{}{"email": "jane@acme.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "workspace_id")

	env.search.err = contactsearch.ErrInvalidEmail
	rec = postJSON(t, env.router, "/functions/contact-search",
		map[string]interface{}{"workspace_id": "ws-1", "email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid email address", decodeBody(t, rec)["error"])

	env.search.err = contactsearch.ErrNoConnections
	rec = postJSON(t, env.router, "/functions/contact-search",
		map[string]interface{}{"workspace_id": "ws-1", "email": "jane@acme.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "no active provider connections")
}

func TestContactSearchAuth(t *testing.T) {
	env := newTestEnv(config.AuthConfig{ServiceRoleKey: "srv-key"})
	body := map[string]interface{}{"workspace_id": "ws-1", "email": "jane@acme.com"}

	rec := postJSON(t, env.router, "/functions/contact-search", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, env.router, "/functions/contact-search", body,
		map[string]string{"Authorization": "Bearer srv-key"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================================================================
// Health and metrics
// =====================================================================

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Contains(t, resp, "status")
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "checks")

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	// Unconfigured backends do not block readiness; the stub deployment
	// runs without either handle.
	assert.Equal(t, http.StatusOK, rec.Code)
	ready := decodeBody(t, rec)
	assert.Equal(t, true, ready["ready"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncSyncRun("smartlead", "success")

	h := NewHandlers(NewAuthenticator(config.AuthConfig{}),
		&fakeSyncService{}, &fakeWebhookService{}, &fakeSearchService{}, reg)
	router := SetupRoutes(h, NewHealthChecker(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "outreach_sync_runs_total")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(config.AuthConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/functions/email-sync", nil)
	req.Header.Set("Origin", "https://app.growthloop.io")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
