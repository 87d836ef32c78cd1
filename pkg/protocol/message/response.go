package message

import (
	"encoding/json"

	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/subscription"
)

// EventResponse is ["EVENT", subscription_id, raw_event].
type EventResponse struct {
	SubscriptionId subscription.Id
	Event          *event.E
}

func (r EventResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"EVENT", r.SubscriptionId, r.Event})
}

// NoticeResponse is ["NOTICE", message]. Reserved for operator-visible
// advisories; not produced by the core dispatcher in this implementation.
type NoticeResponse struct {
	Message string
}

func (r NoticeResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"NOTICE", r.Message})
}

// EoseResponse is ["EOSE", subscription_id], marking end of stored events.
type EoseResponse struct {
	SubscriptionId subscription.Id
}

func (r EoseResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{"EOSE", r.SubscriptionId})
}
