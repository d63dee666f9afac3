package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firescar/pkg/sims/fire"
)

// Metrics provides observability for fire and decay runs.
type Metrics struct {
	// Fires counted per run
	Fires *prometheus.CounterVec

	// Size distributions of individual fires
	FireArea   prometheus.Histogram
	FireRadius prometheus.Histogram
	FireNodes  prometheus.Histogram

	// Field state sampled by the driver
	FieldMean *prometheus.GaugeVec
	FieldMax  *prometheus.GaugeVec
}

// New creates a Metrics instance with every collector registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Fires: f.NewCounterVec(prometheus.CounterOpts{
			Name: "firescar_fires_total",
			Help: "Total fires generated by run",
		}, []string{"run"}),

		FireArea: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "firescar_fire_area",
			Help:    "Area of individual fires in the reporting unit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),

		FireRadius: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "firescar_fire_radius",
			Help:    "Drawn radius of individual fires in topology length units",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		FireNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "firescar_fire_nodes",
			Help:    "Nodes boosted by individual fires",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),

		FieldMean: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "firescar_field_mean",
			Help: "Mean erodibility of the field at the last sample",
		}, []string{"run"}),

		FieldMax: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "firescar_field_max",
			Help: "Maximum erodibility of the field at the last sample",
		}, []string{"run"}),
	}
}

// ObserveFire records one fire for the given run.
func (m *Metrics) ObserveFire(run string, ev fire.Event) {
	if m != nil {
		m.Fires.WithLabelValues(run).Inc()
		m.FireArea.Observe(ev.Area)
		m.FireRadius.Observe(ev.Radius)
		m.FireNodes.Observe(float64(ev.Nodes))
	}
}

// Sink returns a fire.Sink that records events under run.
func (m *Metrics) Sink(run string) fire.Sink {
	if m == nil {
		return nil
	}
	return func(ev fire.Event) { m.ObserveFire(run, ev) }
}

// ObserveField records the field mean and maximum for the given run.
func (m *Metrics) ObserveField(run string, mean, maxVal float64) {
	if m != nil {
		m.FieldMean.WithLabelValues(run).Set(mean)
		m.FieldMax.WithLabelValues(run).Set(maxVal)
	}
}
