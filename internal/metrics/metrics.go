package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// ReservoirRequestsTotal tracks outbound calls to the Reservoir API.
	ReservoirRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservoir_api_requests_total",
			Help: "Total number of Reservoir API requests made (by endpoint and status).",
		},
		[]string{"endpoint", "status"},
	)

	// ReservoirRequestDuration measures the duration of outbound Reservoir calls.
	ReservoirRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reservoir_api_request_duration_seconds",
			Help:    "Duration of Reservoir API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms → ~20s
		},
		[]string{"endpoint"},
	)

	FixturesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixtures_generated_total",
			Help: "Number of fixture files written (by action).",
		},
		[]string{"action"},
	)

	GenerateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generate_failures_total",
			Help: "Number of failed generate runs (by stage).",
		},
		[]string{"stage"},
	)
)

// IncReservoirRequest increments the Reservoir request counter.
func IncReservoirRequest(endpoint, status string) {
	ReservoirRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

func IncFixtureGenerated(action string) {
	FixturesGenerated.WithLabelValues(action).Inc()
}

func IncGenerateFailure(stage string) {
	GenerateFailures.WithLabelValues(stage).Inc()
}

// Push sends the default registry to a Prometheus Pushgateway. A CLI run is
// too short-lived to be scraped. Empty url disables pushing.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
