// Package metrics exposes Prometheus counters for household activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "roommates"

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	mutations   *prometheus.CounterVec
	completions *prometheus.CounterVec
	activations prometheus.Counter
	payments    prometheus.Counter
	paidAmount  prometheus.Counter
	rpcs        *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Committed writes by entity and action.",
		}, []string{"entity", "action"}),
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_completions_total",
			Help:      "Task completions by outcome (advanced or archived).",
		}, []string{"outcome"}),
		activations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_activations_total",
			Help:      "Billing periods opened.",
		}),
		payments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_payments_total",
			Help:      "Bill shares marked paid.",
		}),
		paidAmount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_paid_amount_total",
			Help:      "Sum of bill shares marked paid, in currency units.",
		}),
		rpcs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
	}
}

// Mutation counts a committed write.
func (m *Metrics) Mutation(entity, action string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, action).Inc()
}

// TaskCompleted counts a completion.
func (m *Metrics) TaskCompleted(archived bool) {
	if m == nil {
		return
	}
	outcome := "advanced"
	if archived {
		outcome = "archived"
	}
	m.completions.WithLabelValues(outcome).Inc()
}

// BillActivated counts an opened billing period.
func (m *Metrics) BillActivated() {
	if m == nil {
		return
	}
	m.activations.Inc()
}

// CyclePaid counts a newly paid share.
func (m *Metrics) CyclePaid(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.payments.Inc()
	m.paidAmount.Add(amount.InexactFloat64())
}

// RPC counts a finished call.
func (m *Metrics) RPC(procedure, code string) {
	if m == nil {
		return
	}
	m.rpcs.WithLabelValues(procedure, code).Inc()
}
