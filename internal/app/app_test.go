package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushnotify/internal/config"
	"pushnotify/internal/metrics"
	"pushnotify/internal/types"
)

type warnCounter struct{ warns int }

func (l *warnCounter) Info(msg string, args ...any)  {}
func (l *warnCounter) Error(msg string, args ...any) {}
func (l *warnCounter) Warn(msg string, args ...any)  { l.warns++ }
func (l *warnCounter) With(args ...any) types.Logger { return l }

func testConfig(backend string) *config.Config {
	return &config.Config{
		Webhook: config.WebhookConfig{
			UserAgent:    "PushNotify-Webhook/1.0",
			MaxRedirects: 3,
		},
		Observability: config.ObservabilityConfig{
			MetricsBackend:  backend,
			MetricNamespace: "PushNotify",
		},
	}
}

func TestNewTelemetry_None(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), testConfig(config.MetricsBackendNone), &warnCounter{}, true)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopRecorder{}, tel.Recorder)
	assert.Nil(t, tel.Gatherer)
}

func TestNewTelemetry_Prometheus(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), testConfig(config.MetricsBackendPrometheus), &warnCounter{}, true)
	require.NoError(t, err)
	assert.IsType(t, &metrics.PrometheusRecorder{}, tel.Recorder)
	require.NotNil(t, tel.Gatherer)

	tel.Recorder.RecordOutcome(context.Background(), types.OutcomeEmpty)
	families, err := tel.Gatherer.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewTelemetry_PrometheusNotAllowed(t *testing.T) {
	logger := &warnCounter{}
	tel, err := NewTelemetry(context.Background(), testConfig(config.MetricsBackendPrometheus), logger, false)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopRecorder{}, tel.Recorder)
	assert.Nil(t, tel.Gatherer)
	assert.Equal(t, 1, logger.warns)
}

func TestNewNotifier_Unconfigured(t *testing.T) {
	logger := &warnCounter{}
	n, err := NewNotifier(testConfig(config.MetricsBackendNone), logger, metrics.NopRecorder{})
	require.NoError(t, err)
	assert.Equal(t, 1, logger.warns)

	completion, err := n.Handle(context.Background(), types.PubSubMessage{})
	require.NoError(t, err)
	assert.Equal(t, types.CompletionEmpty, completion.Kind)
}

func TestNewNotifier_RejectsInsecureDestination(t *testing.T) {
	cfg := testConfig(config.MetricsBackendNone)
	cfg.Webhook.URL = "http://discord.example.com/api/webhooks/1/token"

	_, err := NewNotifier(cfg, &warnCounter{}, metrics.NopRecorder{})
	assert.Error(t, err)
}
