package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	TrackedKeys prometheus.Gauge
	StatsErrors prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "faucetgate_ratelimit_decisions_total",
			Help: "Ingress throttle decisions by outcome",
		}, []string{"outcome"}),
		TrackedKeys: f.NewGauge(prometheus.GaugeOpts{
			Name: "faucetgate_ratelimit_tracked_keys",
			Help: "Client keys currently holding a token bucket",
		}),
		StatsErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "faucetgate_ratelimit_stats_errors_total",
			Help: "Failed writes to the throttle stats sink",
		}),
	}
}

func (m *Metrics) IncrementDecision(allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetTrackedKeys(count int) {
	if m == nil {
		return
	}
	m.TrackedKeys.Set(float64(count))
}

func (m *Metrics) IncrementStatsErrors() {
	if m == nil {
		return
	}
	m.StatsErrors.Inc()
}
