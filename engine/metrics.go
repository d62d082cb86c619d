package engine

import (
	"time"

	"github.com/miden-multisig/coordinator/domain"
)

// Metrics receives observations from engine operations. A nil Config.Metrics
// falls back to noopMetrics so call sites never need a nil check.
type Metrics interface {
	ObserveTxProposed()
	ObserveSignatureAdded()
	ObserveTxTerminal(status domain.MultisigTxStatus)
	ObserveRuntimeMessage(message string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTxProposed()                                {}
func (noopMetrics) ObserveSignatureAdded()                            {}
func (noopMetrics) ObserveTxTerminal(status domain.MultisigTxStatus)  {}
func (noopMetrics) ObserveRuntimeMessage(msg string, d time.Duration) {}

func (e *Engine) metrics() Metrics {
	if e.cfg.Metrics == nil {
		return noopMetrics{}
	}
	return e.cfg.Metrics
}

// timeRuntime runs fn, recording its wall time under the given message
// label regardless of outcome.
func (e *Engine) timeRuntime(message string, fn func() error) error {
	start := time.Now()
	err := fn()
	e.metrics().ObserveRuntimeMessage(message, time.Since(start))
	return err
}
