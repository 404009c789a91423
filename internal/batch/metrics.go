package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by Run. A nil *Metrics
// records nothing.
type Metrics struct {
	rendered  *prometheus.CounterVec
	failed    *prometheus.CounterVec
	composite prometheus.Histogram
}

// NewMetrics creates the batch collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skinrender",
			Name:      "jobs_rendered_total",
			Help:      "Renders written successfully, by mode.",
		}, []string{"mode"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skinrender",
			Name:      "jobs_failed_total",
			Help:      "Jobs that produced no image, by stage.",
		}, []string{"stage"}),
		composite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skinrender",
			Name:      "composite_seconds",
			Help:      "Time spent resolving parts and compositing one render.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	reg.MustRegister(m.rendered, m.failed, m.composite)
	return m
}

func (m *Metrics) observeComposite(d time.Duration) {
	if m == nil {
		return
	}
	m.composite.Observe(d.Seconds())
}

func (m *Metrics) observeRendered(mode string) {
	if m == nil {
		return
	}
	m.rendered.WithLabelValues(mode).Inc()
}

func (m *Metrics) observeFailure(stage string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(stage).Inc()
}
