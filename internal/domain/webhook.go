package domain

import "encoding/json"

// Webhook event types pushed by the provider. Anything else is accepted,
// persisted, and ignored at the state-machine level.
const (
	EventPayinCreated    = "payin.created"
	EventPayinProcessing = "payin.processing"
	EventPayinCompleted  = "payin.completed"
	EventPayoutCompleted = "payout.completed"
	EventPayoutFailed    = "payout.failed"
)

// WebhookEvent is the inbound payload the provider POSTs on every payment
// lifecycle transition.
type WebhookEvent struct {
	Event               string      `json:"event"`
	EventID             string      `json:"event_id"`
	EventType           string      `json:"event_type"`
	EventResourceID     string      `json:"event_resource_id"`
	EventResourceStatus string      `json:"event_resource_status"`
	EventResource       Transaction `json:"event_resource"`
	EventCreatedAt      string      `json:"event_created_at"`
}

// Raw returns the event re-serialized for persistence. Marshalling a value
// we just decoded cannot fail.
func (e WebhookEvent) Raw() json.RawMessage {
	b, _ := json.Marshal(e)
	return b
}
