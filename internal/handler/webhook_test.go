package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/settlement"
)

type mockProcessor struct {
	events []domain.WebhookEvent
	err    error
	entry  settlement.Entry
	known  bool
}

func (m *mockProcessor) ProcessEvent(_ context.Context, event domain.WebhookEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *mockProcessor) StatusEntry(string) (settlement.Entry, bool) {
	return m.entry, m.known
}

func validEventBody() string {
	event := domain.WebhookEvent{
		EventID:   "evt-1",
		EventType: domain.EventPayinCreated,
		EventResource: domain.Transaction{
			ID:     "payin-1",
			Status: domain.TransactionStatusAwaitingDeposit,
		},
	}
	b, _ := json.Marshal(event)
	return string(b)
}

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/payout-events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ReceivePayoutEvents(rec, req)
	return rec
}

func TestReceivePayoutEvents(t *testing.T) {
	proc := &mockProcessor{}
	h := NewWebhookHandler(proc)

	rec := postWebhook(h, validEventBody())

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])

	require.Len(t, proc.events, 1)
	assert.Equal(t, "evt-1", proc.events[0].EventID)
	assert.Equal(t, domain.EventPayinCreated, proc.events[0].EventType)
}

func TestReceivePayoutEventsAlwaysAnswers200(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		procErr   error
		wantError string
	}{
		{
			name:      "malformed json",
			body:      "{not json",
			wantError: "invalid payload",
		},
		{
			name:      "processing failure",
			body:      validEventBody(),
			procErr:   errors.New("payout submission failed"),
			wantError: "payout submission failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewWebhookHandler(&mockProcessor{err: tc.procErr})
			rec := postWebhook(h, tc.body)

			// Never a non-2xx: the provider would retry and replay the event.
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp["status"])
			assert.Contains(t, resp["error"], tc.wantError)
		})
	}
}

func TestWebhookStatusKnownPayin(t *testing.T) {
	proc := &mockProcessor{
		entry: settlement.Entry{PayinID: "payin-1", PayinCreated: true, PayinCompleted: true},
		known: true,
	}
	h := NewWebhookHandler(proc)

	req := httptest.NewRequest(http.MethodGet, "/api/webhook-status/payin-1", nil)
	req.SetPathValue("id", "payin-1")
	rec := httptest.NewRecorder()
	h.WebhookStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var entry settlement.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "payin-1", entry.PayinID)
	assert.True(t, entry.PayinCompleted)
}

func TestWebhookStatusUnknownPayinReturnsEmptyObject(t *testing.T) {
	h := NewWebhookHandler(&mockProcessor{})

	req := httptest.NewRequest(http.MethodGet, "/api/webhook-status/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.WebhookStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())
}
