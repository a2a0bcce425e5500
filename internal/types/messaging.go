package types

import "time"

// PubSubMessage is the queue envelope delivered once per invocation. Data is
// the base64-encoded UTF-8 JSON audit log entry and may be empty.
type PubSubMessage struct {
	Data        string            `json:"data,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	MessageID   string            `json:"messageId,omitempty"`
	PublishTime *time.Time        `json:"publishTime,omitempty"`
}

// PushRequest is the body of a Pub/Sub push subscription request.
type PushRequest struct {
	Message      PubSubMessage `json:"message"`
	Subscription string        `json:"subscription,omitempty"`
}
