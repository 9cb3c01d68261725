package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "mofa_notifier"

// Metrics holds the Prometheus collectors for notifier runs. Each instance
// owns its registry, so tests can create as many as they like.
type Metrics struct {
	NoticesFetched     prometheus.Counter
	NoticesUnparseable prometheus.Counter
	NoticesInWindow    prometheus.Counter
	Runs               *prometheus.CounterVec // labels: outcome={sent,empty,error}
	PublishErrors      prometheus.Counter
	RunDuration        prometheus.Histogram
	LastSuccess        prometheus.Gauge

	registry *prometheus.Registry
	pusher   *push.Pusher
}

// PushConfig points Metrics at a Prometheus Pushgateway. An empty URL
// disables pushing.
type PushConfig struct {
	URL string
	Job string
}

// NewMetrics creates and registers all run metrics.
func NewMetrics(cfg PushConfig) *Metrics {
	m := &Metrics{
		NoticesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_fetched_total",
			Help:      "Total notices extracted from the feed.",
		}),
		NoticesUnparseable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_unparseable_total",
			Help:      "Notices dropped because leaveDate could not be parsed.",
		}),
		NoticesInWindow: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_in_window_total",
			Help:      "Notices published inside the window and included in a digest.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Digests delivered to the webhook but not fanned out to the broker.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-to-deliver run.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without error.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.NoticesFetched,
		m.NoticesUnparseable,
		m.NoticesInWindow,
		m.Runs,
		m.PublishErrors,
		m.RunDuration,
		m.LastSuccess,
	)

	if cfg.URL != "" {
		m.pusher = push.New(cfg.URL, cfg.Job).Gatherer(m.registry)
	}

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PushEnabled reports whether a Pushgateway is configured.
func (m *Metrics) PushEnabled() bool {
	return m.pusher != nil
}

// Push sends the current values to the Pushgateway. It is a no-op when
// pushing is disabled.
func (m *Metrics) Push(ctx context.Context) error {
	if m.pusher == nil {
		return nil
	}
	if err := m.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
