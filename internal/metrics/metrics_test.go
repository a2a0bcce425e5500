package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushnotify/internal/types"
)

// mockCloudWatchClient captures PutMetricData calls.
type mockCloudWatchClient struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

type countingLogger struct {
	errors int
}

func (l *countingLogger) Info(msg string, args ...any)  {}
func (l *countingLogger) Error(msg string, args ...any) { l.errors++ }
func (l *countingLogger) Warn(msg string, args ...any)  {}
func (l *countingLogger) With(args ...any) types.Logger { return l }

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(204))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
	assert.Equal(t, "other", StatusClass(0))
	assert.Equal(t, "other", StatusClass(700))
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.RecordOutcome(context.Background(), types.OutcomeDelivered)
	r.RecordDelivery(context.Background(), 200, time.Second)
}

func TestCloudWatchRecorder_RecordOutcome(t *testing.T) {
	client := &mockCloudWatchClient{}
	r := NewCloudWatchRecorder(client, "", &countingLogger{})

	r.RecordOutcome(context.Background(), types.OutcomeEmpty)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, types.MetricNamespace, aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 1)

	datum := input.MetricData[0]
	assert.Equal(t, types.MetricInvocation, aws.ToString(datum.MetricName))
	assert.Equal(t, 1.0, aws.ToFloat64(datum.Value))
	assert.Equal(t, cwtypes.StandardUnitCount, datum.Unit)
	require.Len(t, datum.Dimensions, 1)
	assert.Equal(t, types.DimOutcome, aws.ToString(datum.Dimensions[0].Name))
	assert.Equal(t, "empty", aws.ToString(datum.Dimensions[0].Value))
}

func TestCloudWatchRecorder_RecordDelivery(t *testing.T) {
	client := &mockCloudWatchClient{}
	r := NewCloudWatchRecorder(client, "Custom", &countingLogger{})

	r.RecordDelivery(context.Background(), 404, 250*time.Millisecond)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "Custom", aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 2)

	status := input.MetricData[0]
	assert.Equal(t, types.MetricDeliveryStatus, aws.ToString(status.MetricName))
	assert.Equal(t, "4xx", aws.ToString(status.Dimensions[0].Value))

	latency := input.MetricData[1]
	assert.Equal(t, types.MetricDeliveryLatency, aws.ToString(latency.MetricName))
	assert.Equal(t, 250.0, aws.ToFloat64(latency.Value))
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, latency.Unit)
}

func TestCloudWatchRecorder_ErrorsAreLogged(t *testing.T) {
	client := &mockCloudWatchClient{err: errors.New("throttled")}
	logger := &countingLogger{}
	r := NewCloudWatchRecorder(client, "", logger)

	r.RecordOutcome(context.Background(), types.OutcomeDelivered)
	r.RecordDelivery(context.Background(), 200, time.Millisecond)

	assert.Equal(t, 2, logger.errors)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	ctx := context.Background()
	r.RecordOutcome(ctx, types.OutcomeDelivered)
	r.RecordOutcome(ctx, types.OutcomeDelivered)
	r.RecordOutcome(ctx, types.OutcomeDecodeError)
	r.RecordDelivery(ctx, 200, 100*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.invocations.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.invocations.WithLabelValues("decode_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deliveries.WithLabelValues("200")))

	expected := `
# HELP pushnotify_webhook_responses_total Total number of webhook responses by status code
# TYPE pushnotify_webhook_responses_total counter
pushnotify_webhook_responses_total{code="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pushnotify_webhook_responses_total"))
}

func TestPrometheusRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	_, err = NewPrometheusRecorder(reg)
	assert.Error(t, err)
}
