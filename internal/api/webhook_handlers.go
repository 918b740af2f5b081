package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/pkg/httputil"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
	"github.com/growthloop/outreach-sync/internal/service/webhook"
)

// maxWebhookBody caps provider payloads at 5 MiB. Real events are a few KB;
// anything larger is abuse or a provider bug.
const maxWebhookBody = 5 << 20

// SmartleadWebhook receives Smartlead event deliveries.
//
//	POST /functions/smartlead-webhook
func (h *Handlers) SmartleadWebhook(w http.ResponseWriter, r *http.Request) {
	h.handleWebhook(w, r, domain.ProviderSmartlead, "X-Smartlead-Signature")
}

// ReplyIOWebhook receives Reply.io event deliveries.
//
//	POST /functions/replyio-webhook
func (h *Handlers) ReplyIOWebhook(w http.ResponseWriter, r *http.Request) {
	h.handleWebhook(w, r, domain.ProviderReplyIO, "X-Replyio-Signature")
}

// handleWebhook runs the shared intake path. The signature is read from the
// provider-specific header, falling back to the generic X-Webhook-Signature
// some relay setups use. Both "processed" and "stored" answer 200 so the
// provider does not redeliver.
func (h *Handlers) handleWebhook(w http.ResponseWriter, r *http.Request, provider domain.Provider, sigHeader string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		httputil.Error(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	signature := r.Header.Get(sigHeader)
	if signature == "" {
		signature = r.Header.Get("X-Webhook-Signature")
	}

	result, err := h.webhooks.Process(r.Context(), provider, body, signature)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrBadSignature):
			httputil.Unauthorized(w, "invalid signature")
		case webhook.IsValidation(err):
			httputil.BadRequest(w, err.Error())
		default:
			logger.Error("webhook processing failed",
				"provider", string(provider), "error", err.Error())
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.OK(w, result)
}
