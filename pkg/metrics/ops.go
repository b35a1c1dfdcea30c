package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records counters for the core warehouse operations.
type OperationMetrics struct {
	receives    *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	fulfillment *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewOperationMetrics registers the operation metrics on the provided registerer.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	receives := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_receives_total",
		Help: "Stock receive attempts by outcome.",
	}, []string{"outcome"})
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_evaluations_total",
		Help: "Allocation evaluations by outcome.",
	}, []string{"outcome"})
	fulfillment := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "picking_fulfillments_total",
		Help: "Picking fulfillment attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "project_transitions_total",
		Help: "Project lifecycle transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(receives, evaluations, fulfillment, transitions)
	return &OperationMetrics{
		receives:    receives,
		evaluations: evaluations,
		fulfillment: fulfillment,
		transitions: transitions,
	}
}

// IncReceive increments the receive counter for the given outcome.
func (m *OperationMetrics) IncReceive(outcome string) {
	if m == nil || m.receives == nil {
		return
	}
	m.receives.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncEvaluation increments the allocation evaluation counter.
func (m *OperationMetrics) IncEvaluation(outcome string) {
	if m == nil || m.evaluations == nil {
		return
	}
	m.evaluations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncFulfillment increments the fulfillment counter.
func (m *OperationMetrics) IncFulfillment(outcome string) {
	if m == nil || m.fulfillment == nil {
		return
	}
	m.fulfillment.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition increments the lifecycle transition counter.
func (m *OperationMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
