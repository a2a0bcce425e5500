// Package app assembles the relay from a loaded Config. Every entry point
// (Lambda, push server, Cloud Functions entry) builds its Notifier here so
// they share one wiring.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus"

	"pushnotify/internal/config"
	"pushnotify/internal/metrics"
	"pushnotify/internal/notifier"
	"pushnotify/internal/types"
	"pushnotify/internal/webhook"
)

// LoadAWSConfig loads the SDK configuration for cfg.AWS.Region, pointing all
// clients at cfg.AWS.EndpointURL when set (LocalStack).
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.AWS.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
	}
	return awsCfg, nil
}

// Telemetry is the recorder selected by METRICS_BACKEND. Gatherer is non-nil
// only for the Prometheus backend.
type Telemetry struct {
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer
}

// NewTelemetry builds the configured metrics backend. allowPrometheus is false
// for short-lived processes that cannot be scraped; those fall back to no
// metrics with a warning.
func NewTelemetry(ctx context.Context, cfg *config.Config, logger types.Logger, allowPrometheus bool) (Telemetry, error) {
	switch cfg.Observability.MetricsBackend {
	case config.MetricsBackendCloudWatch:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return Telemetry{}, err
		}
		client := cloudwatch.NewFromConfig(awsCfg)
		return Telemetry{
			Recorder: metrics.NewCloudWatchRecorder(client, cfg.Observability.MetricNamespace, logger),
		}, nil

	case config.MetricsBackendPrometheus:
		if !allowPrometheus {
			logger.Warn("prometheus metrics are not available in this runtime, metrics disabled")
			return Telemetry{Recorder: metrics.NopRecorder{}}, nil
		}
		reg := prometheus.NewRegistry()
		rec, err := metrics.NewPrometheusRecorder(reg)
		if err != nil {
			return Telemetry{}, fmt.Errorf("registering prometheus collectors: %w", err)
		}
		return Telemetry{Recorder: rec, Gatherer: reg}, nil

	default:
		return Telemetry{Recorder: metrics.NopRecorder{}}, nil
	}
}

// NewNotifier builds the webhook channel and the Notifier for cfg. An unset
// WEBHOOK_URL is logged once here; invocations then complete as not
// configured.
func NewNotifier(cfg *config.Config, logger types.Logger, recorder metrics.Recorder) (*notifier.Notifier, error) {
	channel, err := webhook.NewChannel(&cfg.Webhook, logger)
	if err != nil {
		return nil, fmt.Errorf("creating webhook channel: %w", err)
	}

	if cfg.Webhook.URL.IsSet() {
		if err := webhook.ValidateDestination(cfg.Webhook.URL.Unmask()); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("WEBHOOK_URL is not set, events will not be delivered")
	}

	return notifier.New(channel, cfg.Webhook.URL, logger, notifier.WithMetrics(recorder))
}
