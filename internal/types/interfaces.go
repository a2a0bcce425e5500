package types

import (
	"context"
	"time"
)

// Logger defines the structured logging interface used throughout the relay.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Deliverer sends a composed notification to a webhook destination.
// Implemented by webhook.Channel.
type Deliverer interface {
	// Format wraps the composed text into the destination's JSON body.
	Format(content string) ([]byte, error)

	// Deliver performs exactly one POST. A transport failure is returned as
	// an error; any HTTP response, whatever its status, is a result.
	Deliver(ctx context.Context, payload []byte, destination string) (*DeliveryResult, error)
}

// DeliveryResult describes the response received from the destination.
type DeliveryResult struct {
	StatusCode        int
	ProviderMessageID string
}

// Handler processes one inbound message and reports exactly one outcome.
// Implemented by notifier.Notifier; consumed by the Lambda, push server and
// Cloud Functions entry points.
type Handler interface {
	Handle(ctx context.Context, msg PubSubMessage) (Completion, error)
}
