// Package config defines the configuration structure for the notification
// relay. Configuration is loaded once at process start (Lambda cold start,
// server boot, or the first Cloud Functions invocation) and is immutable
// thereafter; each invocation reads the destination from the loaded struct
// rather than from the process environment.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> struct tag defaults (Lowest)
package config

import (
	"time"

	"pushnotify/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for values that must never be logged.
type SecretString = types.SecretString

// Metrics backends selectable with METRICS_BACKEND.
const (
	MetricsBackendNone       = "none"
	MetricsBackendCloudWatch = "cloudwatch"
	MetricsBackendPrometheus = "prometheus"
)

// Config is the top-level configuration struct. Sub-components receive only
// the subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"OTEL_SERVICE_NAME" default:"pushnotify"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Webhook       WebhookConfig
	Server        ServerConfig
	AWS           AWSConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// WebhookConfig holds the destination and settings for outbound delivery.
// An empty URL is valid: events are then acknowledged as not configured.
type WebhookConfig struct {
	URL          SecretString  `envconfig:"WEBHOOK_URL" validate:"omitempty,url,startswith=https://"`
	UserAgent    string        `envconfig:"WEBHOOK_USER_AGENT" default:"PushNotify-Webhook/1.0"`
	Timeout      time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"10s" validate:"gte=0"`
	MaxRedirects int           `envconfig:"WEBHOOK_MAX_REDIRECTS" default:"3" validate:"gte=0,lte=10"`
}

// ServerConfig holds the push server listener configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// EventQueue is the SQS queue the Lambda consumes; the send-event tool
	// publishes to it.
	EventQueue string `envconfig:"SQS_EVENTS" validate:"omitempty,url"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsBackend  string `envconfig:"METRICS_BACKEND" default:"none" validate:"oneof=none cloudwatch prometheus"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"PushNotify"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrDotenv indicates an explicitly requested dotenv file could not be read.
	ErrDotenv ConfigErrorType = "DOTENV_FAILED"
)
