// Package coordinatormonitor exposes the coordinator's Prometheus metrics,
// the way the teacher's own (dropped) monitoring package wired dcrlnd's
// runtime counters into a scrape endpoint.
package coordinatormonitor

import (
	"net/http"
	"time"

	"github.com/miden-multisig/coordinator/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter and histogram the coordinator exports.
type Metrics struct {
	TxProposedTotal       prometheus.Counter
	SignaturesAddedTotal  prometheus.Counter
	TxTerminalTotal       *prometheus.CounterVec
	RuntimeMessageSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New builds a Metrics instance registered against a fresh registry, so
// multiple coordinator instances in the same process never collide.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		TxProposedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coordinator",
			Name:      "tx_proposed_total",
			Help:      "Total number of multisig transactions proposed.",
		}),
		SignaturesAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coordinator",
			Name:      "signatures_added_total",
			Help:      "Total number of signatures accepted across all transactions.",
		}),
		TxTerminalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coordinator",
			Name:      "tx_terminal_total",
			Help:      "Total number of transactions reaching a terminal status.",
		}, []string{"status"}),
		RuntimeMessageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coordinator",
			Name:      "runtime_message_duration_seconds",
			Help:      "Time spent processing a client runtime message, by message type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"message"}),
		registry: registry,
	}

	registry.MustRegister(
		m.TxProposedTotal,
		m.SignaturesAddedTotal,
		m.TxTerminalTotal,
		m.RuntimeMessageSeconds,
	)
	return m
}

// Handler returns the HTTP handler that serves this instance's metrics in
// the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The methods below satisfy engine.Metrics, letting *Metrics be passed
// directly as an engine.Config.Metrics without coordinatormonitor and
// engine importing one another's concrete types.

// ObserveTxProposed records a successfully proposed transaction.
func (m *Metrics) ObserveTxProposed() {
	m.TxProposedTotal.Inc()
}

// ObserveSignatureAdded records an accepted signature.
func (m *Metrics) ObserveSignatureAdded() {
	m.SignaturesAddedTotal.Inc()
}

// ObserveTxTerminal records a transaction reaching a terminal status.
func (m *Metrics) ObserveTxTerminal(status domain.MultisigTxStatus) {
	m.TxTerminalTotal.WithLabelValues(status.String()).Inc()
}

// ObserveRuntimeMessage records how long a client runtime message took.
func (m *Metrics) ObserveRuntimeMessage(message string, d time.Duration) {
	m.RuntimeMessageSeconds.WithLabelValues(message).Observe(d.Seconds())
}
