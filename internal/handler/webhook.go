package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/logging"
	"github.com/crebit/ramp-service/internal/settlement"
)

type webhookProcessor interface {
	ProcessEvent(ctx context.Context, event domain.WebhookEvent) error
	StatusEntry(payinID string) (settlement.Entry, bool)
}

type WebhookHandler struct {
	processor webhookProcessor
}

func NewWebhookHandler(processor webhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// ReceivePayoutEvents ingests provider lifecycle events. The response is
// always HTTP 200, even for malformed bodies and failed processing: a non-2xx
// would make the provider retry and replay the same transition into the
// state machine. Failures are reported in the body only.
func (h *WebhookHandler) ReceivePayoutEvents(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
		RespondJSON(w, http.StatusOK, map[string]string{"status": "error", "error": "unreadable body"})
		return
	}

	var event domain.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn("failed to parse webhook payload", "error", err)
		RespondJSON(w, http.StatusOK, map[string]string{"status": "error", "error": "invalid payload"})
		return
	}

	if err := h.processor.ProcessEvent(r.Context(), event); err != nil {
		log.Error("webhook processing failed",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err,
		)
		RespondJSON(w, http.StatusOK, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WebhookStatus returns the tracked settlement entry for a payin id
// verbatim, or an empty object when the id is unknown.
func (h *WebhookHandler) WebhookStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, ok := h.processor.StatusEntry(id)
	if !ok {
		RespondJSON(w, http.StatusOK, map[string]any{})
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}
