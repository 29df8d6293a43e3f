package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "canvas"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	validations          *prometheus.CounterVec
	violations           *prometheus.CounterVec
	requirementsFailures prometheus.Counter
	resolutions          *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Component tree validations by constraint kind and result.",
		}, []string{"kind", "result"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Violations reported by constraint kind.",
		}, []string{"kind"}),
		requirementsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requirements_failures_total",
			Help:      "Components that failed the requirements check.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Prop source resolutions by source kind and result.",
		}, []string{"source", "result"}),
	}
	for _, c := range []prometheus.Collector{m.validations, m.violations, m.requirementsFailures, m.resolutions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveValidation records one validation run and its violation count.
func (m *Metrics) ObserveValidation(kind string, violations int) {
	if m == nil {
		return
	}
	result := "valid"
	if violations > 0 {
		result = "invalid"
		m.violations.WithLabelValues(kind).Add(float64(violations))
	}
	m.validations.WithLabelValues(kind, result).Inc()
}

// ObserveRequirementsFailure records a component failing the requirements check.
func (m *Metrics) ObserveRequirementsFailure() {
	if m == nil {
		return
	}
	m.requirementsFailures.Inc()
}

// ObserveResolution records a prop source resolution.
func (m *Metrics) ObserveResolution(source, result string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source, result).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
