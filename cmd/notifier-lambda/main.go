// Package main is the entrypoint for the Notifier Lambda function.
//
// The Lambda consumes the events SQS queue. Each record body carries one
// Pub/Sub envelope (see queue.MessageFromSQS) and is one notifier invocation:
// decode the audit log entry, compose the message, POST it to WEBHOOK_URL.
//
// Cold Start (main):
//  1. Load configuration (envconfig + optional .env).
//  2. Initialize structured logger.
//  3. Initialize the metrics backend (CloudWatch or none).
//  4. Build the webhook channel and Notifier.
//  5. Register handler and call lambda.Start.
//
// Records whose invocation returns an error are reported in
// batchItemFailures; the queue's redrive policy decides what happens next.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"pushnotify/internal/app"
	"pushnotify/internal/config"
	"pushnotify/internal/logging"
	"pushnotify/internal/queue"
	"pushnotify/internal/types"
)

// Handler holds the dependencies for the SQS-triggered Lambda.
type Handler struct {
	notifier types.Handler
	logger   types.Logger
}

// Handle processes every record of the batch independently.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processRecord(ctx, record); err != nil {
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

// processRecord runs one notifier invocation. The notifier logs its own
// errors; only envelope parse failures are logged here.
func (h *Handler) processRecord(ctx context.Context, record events.SQSMessage) error {
	logger := h.logger.With("sqs_message_id", record.MessageId)

	msg, err := queue.MessageFromSQS(record.Body)
	if err != nil {
		logger.Error("failed to parse SQS record body", "error", err.Error())
		return err
	}
	if msg.MessageID == "" {
		msg.MessageID = record.MessageId
	}

	completion, err := h.notifier.Handle(types.WithLogger(ctx, logger), msg)
	if err != nil {
		return err
	}

	logger.Info("event processed",
		"kind", string(completion.Kind),
		"message", completion.Message,
	)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Service)
	logger.Info("Notifier Lambda initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
	)
	typedLogger := logging.NewAdapter(logger)

	telemetry, err := app.NewTelemetry(context.Background(), cfg, typedLogger, false)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	n, err := app.NewNotifier(cfg, typedLogger, telemetry.Recorder)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}

	handler := &Handler{notifier: n, logger: typedLogger}

	logger.Info("Notifier Lambda initialized",
		"metrics_backend", cfg.Observability.MetricsBackend,
		"webhook_configured", cfg.Webhook.URL.IsSet(),
		"user_agent", cfg.Webhook.UserAgent,
		"timeout", cfg.Webhook.Timeout.String(),
	)

	lambda.Start(handler.Handle)
	return nil
}
