// Package pushnotify exposes the notification relay as a Cloud Functions
// background function triggered by a Pub/Sub topic.
//
// The relay is built from the environment on the first invocation and reused
// by later invocations of the same instance.
package pushnotify

import (
	"context"
	"fmt"
	"os"
	"sync"

	"pushnotify/internal/app"
	"pushnotify/internal/config"
	"pushnotify/internal/logging"
	"pushnotify/internal/types"
)

// PubSubMessage is the payload of a Pub/Sub event.
type PubSubMessage = types.PubSubMessage

var (
	initOnce   sync.Once
	relay      types.Handler
	relayError error
)

// PushEventsToWebhook decodes the audit log entry carried by m and posts a
// notification to WEBHOOK_URL. Empty payloads and an unset WEBHOOK_URL are
// logged and reported as success; decode, extraction and transport failures
// are returned.
func PushEventsToWebhook(ctx context.Context, m PubSubMessage) error {
	initOnce.Do(func() {
		relay, relayError = newRelay()
	})
	if relayError != nil {
		return relayError
	}
	return invoke(ctx, relay, m)
}

func invoke(ctx context.Context, h types.Handler, m PubSubMessage) error {
	_, err := h.Handle(ctx, m)
	return err
}

func newRelay() (types.Handler, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.NewAdapter(logging.New(os.Stdout, cfg.LogLevel, cfg.Service))

	telemetry, err := app.NewTelemetry(context.Background(), cfg, logger, false)
	if err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	return app.NewNotifier(cfg, logger, telemetry.Recorder)
}
