package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus forwards the epoch scalars as gauges.
type Prometheus struct {
	registry *prometheus.Registry
	Metric   *prometheus.GaugeVec
	Epochs   prometheus.Counter
	Last     prometheus.Gauge
}

// NewPrometheus creates the collectors on a dedicated registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		Metric: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "fidle",
				Name:      "epoch_metric",
				Help:      "Scalar metric of the last completed epoch.",
			}, []string{"group", "split"}),
		Epochs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "fidle",
				Name:      "epochs_total",
				Help:      "Number of completed epochs.",
			}),
		Last: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fidle",
				Name:      "epoch",
				Help:      "Index of the last completed epoch.",
			}),
	}
	p.registry.MustRegister(p.Metric, p.Epochs, p.Last)
	return p
}

// Registry returns the registry the collectors are registered on.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// OnEpochEnd sets one gauge per group and split.
func (p *Prometheus) OnEpochEnd(epoch int, logs Logs) {
	for group, splits := range Extract(epoch, logs) {
		for split, v := range splits {
			p.Metric.WithLabelValues(group, split).Set(v)
		}
	}
	p.Epochs.Inc()
	p.Last.Set(float64(epoch))
}
