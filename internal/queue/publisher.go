// Package queue provides the SQS producer used to drive the relay Lambda and
// the parser that turns SQS record bodies back into Pub/Sub envelopes.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"pushnotify/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// EventPublisher serializes a PubSubMessage and enqueues it on the events
// queue consumed by the notifier Lambda.
type EventPublisher struct {
	client   SQSSender
	queueURL string
	logger   types.Logger
}

// NewEventPublisher creates an EventPublisher targeting queueURL.
func NewEventPublisher(client SQSSender, queueURL string, logger types.Logger) *EventPublisher {
	return &EventPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Publish enqueues msg and returns the SQS message id. A missing MessageID is
// filled with a fresh UUID so the consumer can correlate logs.
func (p *EventPublisher) Publish(ctx context.Context, msg types.PubSubMessage) (string, error) {
	if p.queueURL == "" {
		return "", fmt.Errorf("queue: events queue URL is not configured")
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.New().String()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("queue: failed to marshal PubSubMessage: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"pubsub_message_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.MessageID),
			},
		},
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return "", fmt.Errorf("queue: failed to send event to %s: %w", p.queueURL, err)
	}

	sqsID := aws.ToString(out.MessageId)
	p.logger.Info("event message sent",
		"queue_url", p.queueURL,
		"message_id", msg.MessageID,
		"sqs_message_id", sqsID,
	)
	return sqsID, nil
}

// MessageFromSQS parses an SQS record body into a PubSubMessage. Accepted
// shapes are a JSON PubSubMessage, a JSON PushRequest (detected by its
// "message" key) and a bare base64 payload. A blank body yields an empty
// envelope.
func MessageFromSQS(body string) (types.PubSubMessage, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return types.PubSubMessage{}, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return types.PubSubMessage{Data: trimmed}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return types.PubSubMessage{}, types.NewAppError(types.ErrCodeEventDecode, "SQS body is not valid JSON", err)
	}

	if _, ok := probe["message"]; ok {
		var push types.PushRequest
		if err := json.Unmarshal([]byte(trimmed), &push); err != nil {
			return types.PubSubMessage{}, types.NewAppError(types.ErrCodeEventDecode, "SQS body is not a valid push request", err)
		}
		return push.Message, nil
	}

	var msg types.PubSubMessage
	if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
		return types.PubSubMessage{}, types.NewAppError(types.ErrCodeEventDecode, "SQS body is not a valid Pub/Sub message", err)
	}
	return msg, nil
}
