package api

import (
	"errors"
	"net/http"

	"github.com/growthloop/outreach-sync/internal/pkg/httputil"
	"github.com/growthloop/outreach-sync/internal/service/contactsearch"
)

type searchRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Email       string `json:"email"`
}

// ContactSearch checks whether an email address exists in any of the
// workspace's connected providers, returning per-provider matches with
// message-history snippets.
//
//	POST /functions/contact-search
func (h *Handlers) ContactSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.WorkspaceID == "" {
		httputil.BadRequest(w, "workspace_id is required")
		return
	}

	if err := h.auth.Authorize(r, false); err != nil {
		httputil.Unauthorized(w, "unauthorized")
		return
	}

	result, err := h.search.Search(r.Context(), req.WorkspaceID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, contactsearch.ErrInvalidEmail):
			httputil.BadRequest(w, "invalid email address")
		case errors.Is(err, contactsearch.ErrNoConnections):
			httputil.BadRequest(w, "workspace has no active provider connections")
		default:
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.OK(w, result)
}
