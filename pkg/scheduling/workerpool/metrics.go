package workerpool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gatrack/pkg/metrics"
)

// poolGauges publishes queue depth and worker activity. A nil *poolGauges
// is valid and records nothing.
type poolGauges struct {
	activeGauge prometheus.Gauge
	queuedGauge prometheus.Gauge
}

func newPoolGauges(name string, cfg metrics.Config) *poolGauges {
	if !cfg.Enabled {
		return nil
	}
	r := metrics.For(cfg)
	return &poolGauges{
		activeGauge: r.WorkerPoolActive.WithLabelValues(name),
		queuedGauge: r.WorkerPoolQueued.WithLabelValues(name),
	}
}

func (g *poolGauges) active(n int64) {
	if g == nil {
		return
	}
	g.activeGauge.Set(float64(n))
}

func (g *poolGauges) queued(n int) {
	if g == nil {
		return
	}
	g.queuedGauge.Set(float64(n))
}
