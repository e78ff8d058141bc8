// Package metrics provides Prometheus observability for rule evaluation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the status label.
const (
	StatusBeregnet       = "beregnet"
	StatusUgyldigPeriode = "ugyldig_periode"
	StatusFeil           = "feil"
)

// Metrics records engine runs. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Runs by outcome
	Kjoeringer *prometheus.CounterVec

	// Wall time of a full run
	Varighet prometheus.Histogram

	// Number of sub-periods a window was sliced into
	Delperioder prometheus.Histogram
}

// New registers the engine metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Kjoeringer: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regler_kjoeringer_total",
			Help: "Total rule evaluations by outcome",
		}, []string{"status"}),

		Varighet: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regler_kjoering_varighet_sekunder",
			Help:    "Duration of a rule evaluation across its whole window",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		Delperioder: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regler_delperioder",
			Help:    "Number of sub-periods per evaluation",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		}),
	}
}

// IncrementKjoering records a run outcome.
func (m *Metrics) IncrementKjoering(status string) {
	if m != nil {
		m.Kjoeringer.WithLabelValues(status).Inc()
	}
}

// ObserveVarighet records the duration of a run.
func (m *Metrics) ObserveVarighet(d time.Duration) {
	if m != nil {
		m.Varighet.Observe(d.Seconds())
	}
}

// ObserveDelperioder records how many sub-periods a run produced.
func (m *Metrics) ObserveDelperioder(n int) {
	if m != nil {
		m.Delperioder.Observe(float64(n))
	}
}
