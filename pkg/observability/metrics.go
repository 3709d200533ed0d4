// Package observability bridges engine lifecycle hooks to Prometheus
// collectors. Hosts register the Metrics value and install its Hooks on the
// orchestrator; the /metrics endpoint is wired by the serving layer.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	handlerRuns  *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	escalations  *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		handlerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_runs_total",
				Help:      "Handler executions by handler name and phase.",
			},
			[]string{"handler", "phase"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool dispatches by tool name and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_seconds",
				Help:      "Tool dispatch latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		escalations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "escalations_total",
				Help:      "Human handoffs by urgency.",
			},
			[]string{"urgency"},
		),
	}
}

// Register adds all collectors to the registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.handlerRuns, m.toolCalls, m.toolDuration, m.escalations} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister adds all collectors to the default registry.
func (m *Metrics) MustRegister() {
	prometheus.MustRegister(m.handlerRuns, m.toolCalls, m.toolDuration, m.escalations)
}

// Hooks returns lifecycle hooks that feed these collectors. Compose with
// other hooks in the host if more than observability is needed.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnHandlerEnter: func(_ context.Context, ev *domain.HandlerEvent) {
			m.handlerRuns.WithLabelValues(ev.Handler, string(ev.Phase)).Inc()
		},
		OnToolReturn: func(_ context.Context, ev *domain.ToolEvent) {
			outcome := "ok"
			if ev.IsError {
				outcome = "error"
			}
			m.toolCalls.WithLabelValues(ev.ToolName, outcome).Inc()
			m.toolDuration.WithLabelValues(ev.ToolName).Observe(ev.Duration.Seconds())
		},
		OnEscalation: func(_ context.Context, ev *domain.EscalationEvent) {
			m.escalations.WithLabelValues(ev.Urgency).Inc()
		},
	}
}
