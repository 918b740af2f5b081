package api

import (
	"errors"
	"net/http"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/pkg/httputil"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
	syncsvc "github.com/growthloop/outreach-sync/internal/service/sync"
)

type syncRequest struct {
	WorkspaceID          string `json:"workspace_id"`
	Platform             string `json:"platform,omitempty"`
	Reset                bool   `json:"reset,omitempty"`
	ContinueAt           *int   `json:"continue_at,omitempty"`
	BatchNumber          int    `json:"batch_number,omitempty"`
	InternalContinuation bool   `json:"internal_continuation,omitempty"`
}

type syncResponse struct {
	Success    bool                 `json:"success"`
	Complete   bool                 `json:"complete"`
	Progress   *domain.SyncProgress `json:"progress,omitempty"`
	DurationMS int64                `json:"duration_ms"`
	Results    []syncsvc.Report     `json:"results"`
}

type syncFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// EmailSync triggers one sync batch for a workspace. Callers authenticate
// with any configured bearer credential; self-posted continuations must
// carry the service key. The response reports completion: complete=false
// means the budget ran out and another batch is already in flight.
//
//	POST /functions/email-sync
func (h *Handlers) EmailSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.WorkspaceID == "" {
		httputil.BadRequest(w, "workspace_id is required")
		return
	}

	var provider domain.Provider
	if req.Platform != "" {
		p, err := domain.ParseProvider(req.Platform)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		provider = p
	}

	if err := h.auth.Authorize(r, req.InternalContinuation); err != nil {
		httputil.Unauthorized(w, "unauthorized")
		return
	}

	reports, err := h.sync.RunSync(r.Context(), req.WorkspaceID, syncsvc.Options{
		Provider:             provider,
		Reset:                req.Reset,
		ContinueAt:           req.ContinueAt,
		BatchNumber:          req.BatchNumber,
		InternalContinuation: req.InternalContinuation,
	})
	if err != nil {
		logger.Error("sync request failed",
			"workspace_id", req.WorkspaceID, "platform", req.Platform, "error", err.Error())
		httputil.JSON(w, http.StatusInternalServerError, syncFailure{Error: err.Error()})
		return
	}

	resp := syncResponse{Success: true, Complete: true, Results: reports}
	for _, rep := range reports {
		resp.DurationMS += rep.DurationMS
		if !rep.Complete {
			resp.Complete = false
		}
	}
	// The canonical single-provider call also surfaces its cursor at the top
	// level, which is what the dashboard polls while a sync runs.
	if len(reports) == 1 {
		resp.Progress = reports[0].Progress
	}
	httputil.OK(w, resp)
}

type stopRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Platform    string `json:"platform"`
}

// SyncStop marks a connection stopped. A running batch finishes its current
// campaign; the next continuation observes the status and exits without
// enqueuing another.
//
//	POST /functions/sync-stop
func (h *Handlers) SyncStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.WorkspaceID == "" {
		httputil.BadRequest(w, "workspace_id is required")
		return
	}
	provider, err := domain.ParseProvider(req.Platform)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := h.auth.Authorize(r, false); err != nil {
		httputil.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.sync.Stop(r.Context(), req.WorkspaceID, provider); err != nil {
		if errors.Is(err, syncsvc.ErrNoConnection) {
			httputil.NotFound(w, "no connection for platform")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]bool{"success": true})
}

// SyncStatus reports a connection's sync state, including the resumable
// cursor of a paused run.
//
//	GET /functions/sync-status?workspace_id=...&platform=...
func (h *Handlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		httputil.BadRequest(w, "workspace_id is required")
		return
	}
	provider, err := domain.ParseProvider(r.URL.Query().Get("platform"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := h.auth.Authorize(r, false); err != nil {
		httputil.Unauthorized(w, "unauthorized")
		return
	}

	conn, err := h.sync.Status(r.Context(), workspaceID, provider)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if conn == nil {
		httputil.NotFound(w, "no connection for platform")
		return
	}
	httputil.OK(w, conn)
}
