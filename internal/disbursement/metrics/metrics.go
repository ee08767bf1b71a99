package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the disbursement coordinator.
type Metrics struct {
	// Terminal outcomes by status and reason code
	Outcomes *prometheus.CounterVec

	// Identity verification results by method
	Verifications *prometheus.CounterVec

	// Ledger transfer latency by result
	TransferLatency *prometheus.HistogramVec

	// Store append failures
	StoreFailures prometheus.Counter

	// Requests currently inside the per-identity section
	InFlight prometheus.Gauge
}

// New registers metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "faucetgate_disbursement_outcomes_total",
			Help: "Disbursement requests by terminal status and reason",
		}, []string{"status", "reason"}),

		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "faucetgate_identity_verifications_total",
			Help: "Identity verification results by method",
		}, []string{"method"}), // method: oracle, proof, mock, none

		TransferLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faucetgate_ledger_transfer_duration_seconds",
			Help:    "Duration of ledger transfers including confirmation wait",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"result"}),

		StoreFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "faucetgate_ledger_store_failures_total",
			Help: "Failed reads or appends against the disbursement log",
		}),

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "faucetgate_disbursements_in_flight",
			Help: "Requests currently holding a per-identity lock",
		}),
	}
}

// IncrementOutcome records a terminal outcome.
func (m *Metrics) IncrementOutcome(status, reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status, reason).Inc()
	}
}

// IncrementVerification records which method admitted (or failed) an identity.
func (m *Metrics) IncrementVerification(method string) {
	if m != nil {
		m.Verifications.WithLabelValues(method).Inc()
	}
}

// ObserveTransfer records a ledger transfer duration.
func (m *Metrics) ObserveTransfer(result string, d time.Duration) {
	if m != nil {
		m.TransferLatency.WithLabelValues(result).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementStoreFailures() {
	if m != nil {
		m.StoreFailures.Inc()
	}
}

func (m *Metrics) AddInFlight(delta float64) {
	if m != nil {
		m.InFlight.Add(delta)
	}
}
