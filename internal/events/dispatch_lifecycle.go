package events

import (
	"encoding/json"
	"time"
)

const DispatchLifecycleTopic = "ops.dispatch.lifecycle.v1"

// Event names are shared verbatim between the push channel and the kafka
// stream so consumers on either path speak the same vocabulary.
const (
	EventNewRequest       = "new_request"
	EventRequestAccepted  = "request_accepted"
	EventRequestCompleted = "request_completed"
	EventRequestCancelled = "request_cancelled"
)

type DispatchLifecycleEvent struct {
	EventType   string          `json:"event_type"`
	RequestID   string          `json:"request_id"`
	RequesterID string          `json:"requester_id"`
	ResponderID string          `json:"responder_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Request     json.RawMessage `json:"request"`
}
