package notifier

import (
	"context"
	"fmt"

	"pushnotify/internal/metrics"
	"pushnotify/internal/types"
)

// Completion notices reported to the invoker for the benign outcomes.
const (
	EmptyPayloadMessage  = "Event message's content is empty."
	NotConfiguredMessage = "WEBHOOK_URL environment variable is not set"
)

// Compile-time assertion that Notifier implements types.Handler.
var _ types.Handler = (*Notifier)(nil)

// Notifier is the invocation boundary. Each call to Handle processes exactly
// one envelope and produces exactly one Completion or one error.
type Notifier struct {
	extractor   *Extractor
	deliverer   types.Deliverer
	destination types.SecretString
	metrics     metrics.Recorder
	logger      types.Logger
	clock       types.Clock
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithMetrics sets the telemetry recorder. The default records nothing.
func WithMetrics(r metrics.Recorder) Option {
	return func(n *Notifier) {
		if r != nil {
			n.metrics = r
		}
	}
}

// WithClock overrides the clock used to time deliveries.
func WithClock(c types.Clock) Option {
	return func(n *Notifier) {
		if c != nil {
			n.clock = c
		}
	}
}

// New creates a Notifier. destination may be empty, in which case every
// well-formed event completes as not configured without a network call.
func New(deliverer types.Deliverer, destination types.SecretString, logger types.Logger, opts ...Option) (*Notifier, error) {
	if deliverer == nil {
		return nil, fmt.Errorf("notifier: deliverer is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("notifier: logger is nil")
	}

	n := &Notifier{
		extractor:   NewExtractor(),
		deliverer:   deliverer,
		destination: destination,
		metrics:     metrics.NopRecorder{},
		logger:      logger,
		clock:       types.RealClock{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Handle decodes msg, composes the notification and delivers it.
//
// Outcomes:
//   - empty payload: CompletionEmpty, no delivery
//   - decode or extraction failure: error, no delivery
//   - no destination configured: CompletionNotConfigured, no delivery
//   - transport failure: error
//   - any HTTP response: CompletionDelivered carrying the status code
//
// Errors are logged here before being returned. A logger stored in ctx with
// types.WithLogger takes precedence over the Notifier's own.
func (n *Notifier) Handle(ctx context.Context, msg types.PubSubMessage) (completion types.Completion, err error) {
	logger := n.logger
	if scoped := types.LoggerFromContext(ctx); scoped != nil {
		logger = scoped
	}
	if msg.MessageID != "" {
		logger = logger.With("message_id", msg.MessageID)
	}

	defer func() {
		if rvr := recover(); rvr != nil {
			completion = types.Completion{}
			err = types.NewAppError(types.ErrCodeInternalUnexpected, "notification handler panicked", fmt.Errorf("%v", rvr))
		}
		if err != nil {
			logger.Error("failed to push event to webhook",
				"code", string(types.ErrorCodeOf(err)),
				"error", err.Error(),
			)
			n.metrics.RecordOutcome(ctx, types.OutcomeForError(err))
		}
	}()

	entry, ok, err := Decode(msg.Data)
	if err != nil {
		return types.Completion{}, err
	}
	if !ok {
		logger.Info(EmptyPayloadMessage)
		n.metrics.RecordOutcome(ctx, types.OutcomeEmpty)
		return types.Completion{Kind: types.CompletionEmpty, Message: EmptyPayloadMessage}, nil
	}

	notification, err := n.extractor.Extract(entry)
	if err != nil {
		return types.Completion{}, err
	}
	notification.Content = Compose(notification)

	logger = logger.With(
		"resource_type", notification.Type,
		"function_name", notification.FunctionName,
		"operation", notification.Operation,
		"principal", notification.Principal,
		"project_id", notification.ProjectID,
		"resource_name", notification.ResourceName,
	)

	if !n.destination.IsSet() {
		logger.Info(NotConfiguredMessage)
		n.metrics.RecordOutcome(ctx, types.OutcomeNotConfigured)
		return types.Completion{Kind: types.CompletionNotConfigured, Message: NotConfiguredMessage}, nil
	}

	return n.deliver(ctx, notification, logger)
}

// deliver formats and POSTs the notification once.
func (n *Notifier) deliver(ctx context.Context, notification *types.Notification, logger types.Logger) (types.Completion, error) {
	payload, err := n.deliverer.Format(notification.Content)
	if err != nil {
		return types.Completion{}, types.NewAppError(types.ErrCodeDeliveryRequest, "failed to format webhook payload", err)
	}

	start := n.clock.Now()
	result, err := n.deliverer.Deliver(ctx, payload, n.destination.Unmask())
	elapsed := n.clock.Now().Sub(start)
	if err != nil {
		logger.Warn("an error occurred sending the event to the webhook",
			"duration_ms", elapsed.Milliseconds(),
		)
		return types.Completion{}, err
	}
	if result == nil {
		return types.Completion{}, types.NewAppError(types.ErrCodeInternalUnexpected, "webhook delivery returned no result", nil)
	}

	n.metrics.RecordDelivery(ctx, result.StatusCode, elapsed)
	n.metrics.RecordOutcome(ctx, types.OutcomeDelivered)

	message := StatusLine(result.StatusCode)
	logger.Info(message,
		"status_code", result.StatusCode,
		"provider_message_id", result.ProviderMessageID,
		"duration_ms", elapsed.Milliseconds(),
	)

	return types.Completion{
		Kind:       types.CompletionDelivered,
		Message:    message,
		StatusCode: result.StatusCode,
	}, nil
}

// StatusLine renders the completion message for a received response.
func StatusLine(statusCode int) string {
	return fmt.Sprintf("statusCode: %d", statusCode)
}
