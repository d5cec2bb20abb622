// Package metrics defines the Prometheus collectors for the slot machine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quote_slots"

// Spin results.
const (
	ResultLanded   = "landed"
	ResultAborted  = "aborted"
	ResultRejected = "rejected"
)

// Metrics groups the collectors. Create one per registry.
type Metrics struct {
	// SpinsTotal counts spins by result.
	SpinsTotal *prometheus.CounterVec

	// SpinDuration observes the wall time from start to completion.
	SpinDuration prometheus.Histogram

	// FramesTotal counts published frames by phase.
	FramesTotal *prometheus.CounterVec

	// MediaFailures counts audio cues that could not be played.
	MediaFailures *prometheus.CounterVec

	// StreamSubscribers is the number of live event subscribers.
	StreamSubscribers prometheus.Gauge

	// StreamDropped counts events dropped for slow subscribers.
	StreamDropped prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SpinsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spins_total",
				Help:      "Total spins by result",
			},
			[]string{"result"},
		),
		SpinDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "spin_duration_seconds",
				Help:      "Spin duration from start to completion in seconds",
				Buckets:   []float64{.5, 1, 2, 3, 4, 5, 6, 8, 10},
			},
		),
		FramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Current-quote frames published by phase",
			},
			[]string{"phase"},
		),
		MediaFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_failures_total",
				Help:      "Audio cues that failed by track",
			},
			[]string{"track"},
		),
		StreamSubscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stream_subscribers",
				Help:      "Current number of event stream subscribers",
			},
		),
		StreamDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_dropped_events_total",
				Help:      "Events dropped because a subscriber buffer was full",
			},
		),
	}
}
