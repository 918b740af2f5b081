package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/pkg/httpretry"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

// Continuer posts batch continuations back to this service and pings the
// downstream pipelines when a run completes. Both calls are fire-and-forget:
// a batch never blocks on them and failures only log. A lost continuation is
// recovered by the scheduler's staleness pass, not by retrying our own
// ingress.
type Continuer interface {
	PostContinuation(workspaceID string, provider domain.Provider, nextBatch int)
	FireCompletionHooks(workspaceID string, provider domain.Provider)
}

// completionHooks are the pipelines nudged after a completed run, in order.
var completionHooks = []string{
	"classify-replies",
	"backfill-features",
	"compute-patterns",
}

// HTTPContinuer implements Continuer over the service's own HTTP surface.
type HTTPContinuer struct {
	baseURL    string
	serviceKey string
	client     httpretry.HTTPDoer
	timeout    time.Duration

	// done, when non-nil, receives one signal per finished post. Tests use
	// it to wait for the fire-and-forget goroutines.
	done chan struct{}
}

// NewHTTPContinuer builds the poster. A nil client gets a plain 10s-timeout
// http.Client; retries are deliberately absent.
func NewHTTPContinuer(baseURL, serviceKey string, client httpretry.HTTPDoer) *HTTPContinuer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPContinuer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     client,
		timeout:    10 * time.Second,
	}
}

// continuationRequest is the self-posted batch payload. Field names mirror
// the public sync request schema.
type continuationRequest struct {
	WorkspaceID          string `json:"workspace_id"`
	Platform             string `json:"platform"`
	BatchNumber          int    `json:"batch_number"`
	InternalContinuation bool   `json:"internal_continuation"`
}

// PostContinuation asynchronously posts the next batch request to our own
// email-sync endpoint, authenticated with the service key.
func (c *HTTPContinuer) PostContinuation(workspaceID string, provider domain.Provider, nextBatch int) {
	go c.post("/functions/email-sync", continuationRequest{
		WorkspaceID:          workspaceID,
		Platform:             string(provider),
		BatchNumber:          nextBatch,
		InternalContinuation: true,
	})
}

// FireCompletionHooks nudges the pipelines that consume freshly synced data.
func (c *HTTPContinuer) FireCompletionHooks(workspaceID string, provider domain.Provider) {
	for _, hook := range completionHooks {
		go c.post("/functions/"+hook, map[string]string{
			"workspace_id": workspaceID,
			"platform":     string(provider),
		})
	}
}

func (c *HTTPContinuer) post(path string, body interface{}) {
	defer c.signal()

	payload, err := json.Marshal(body)
	if err != nil {
		logger.Error("self-post marshal failed", "path", path, "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		logger.Error("self-post request build failed", "path", path, "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("self-post failed", "path", path, "error", err.Error())
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		logger.Warn("self-post rejected", "path", path, "status", resp.StatusCode)
		return
	}
	logger.Debug("self-post delivered", "path", path)
}

func (c *HTTPContinuer) signal() {
	if c.done != nil {
		c.done <- struct{}{}
	}
}
