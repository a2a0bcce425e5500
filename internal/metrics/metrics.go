// Package metrics records per-invocation telemetry for the relay. Recording
// never fails an invocation: backend errors are logged and dropped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"pushnotify/internal/types"
)

// Recorder receives one outcome per invocation and, when a POST was made,
// the response status and latency.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome types.Outcome)
	RecordDelivery(ctx context.Context, statusCode int, duration time.Duration)
}

// NopRecorder discards all telemetry.
type NopRecorder struct{}

func (NopRecorder) RecordOutcome(context.Context, types.Outcome)       {}
func (NopRecorder) RecordDelivery(context.Context, int, time.Duration) {}

// StatusClass buckets an HTTP status code as "2xx", "4xx" and so on.
func StatusClass(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", statusCode/100)
}
