package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pushnotify/internal/types"
)

// Compile-time assertion that PrometheusRecorder implements Recorder.
var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder exposes relay metrics for scraping by the push server.
type PrometheusRecorder struct {
	invocations *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	latency     prometheus.Histogram
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pushnotify",
				Name:      "invocations_total",
				Help:      "Total number of processed events by outcome",
			},
			[]string{"outcome"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pushnotify",
				Name:      "webhook_responses_total",
				Help:      "Total number of webhook responses by status code",
			},
			[]string{"code"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pushnotify",
				Name:      "webhook_request_duration_seconds",
				Help:      "Webhook POST round trip time",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{r.invocations, r.deliveries, r.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordOutcome increments the invocation counter for outcome.
func (r *PrometheusRecorder) RecordOutcome(_ context.Context, outcome types.Outcome) {
	r.invocations.WithLabelValues(string(outcome)).Inc()
}

// RecordDelivery counts the response code and observes the latency.
func (r *PrometheusRecorder) RecordDelivery(_ context.Context, statusCode int, duration time.Duration) {
	r.deliveries.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	r.latency.Observe(duration.Seconds())
}
