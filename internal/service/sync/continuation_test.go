package sync

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthloop/outreach-sync/internal/domain"
)

type receivedPost struct {
	path string
	auth string
	body []byte
}

func waitPosts(t *testing.T, done chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for post %d of %d", i+1, n)
		}
	}
}

func TestPostContinuationPostsNextBatch(t *testing.T) {
	got := make(chan receivedPost, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- receivedPost{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPContinuer(srv.URL+"/", "service-key", srv.Client())
	c.done = make(chan struct{}, 1)

	c.PostContinuation("ws-1", domain.ProviderSmartlead, 2)
	waitPosts(t, c.done, 1)

	post := <-got
	assert.Equal(t, "/functions/email-sync", post.path)
	assert.Equal(t, "Bearer service-key", post.auth)

	var req continuationRequest
	require.NoError(t, json.Unmarshal(post.body, &req))
	assert.Equal(t, "ws-1", req.WorkspaceID)
	assert.Equal(t, "smartlead", req.Platform)
	assert.Equal(t, 2, req.BatchNumber)
	assert.True(t, req.InternalContinuation)
}

func TestFireCompletionHooksPostsEveryPipeline(t *testing.T) {
	got := make(chan string, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPContinuer(srv.URL, "service-key", srv.Client())
	c.done = make(chan struct{}, 3)

	c.FireCompletionHooks("ws-1", domain.ProviderReplyIO)
	waitPosts(t, c.done, 3)

	paths := []string{<-got, <-got, <-got}
	assert.ElementsMatch(t, []string{
		"/functions/classify-replies",
		"/functions/backfill-features",
		"/functions/compute-patterns",
	}, paths)
}

func TestPostContinuationSwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPContinuer(srv.URL, "service-key", srv.Client())
	c.done = make(chan struct{}, 1)

	// Fire-and-forget: a rejected post completes without surfacing anything.
	c.PostContinuation("ws-1", domain.ProviderSmartlead, 3)
	waitPosts(t, c.done, 1)
}
