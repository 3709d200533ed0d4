package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/domain"
)

func TestMetricsHooks(t *testing.T) {
	metrics := NewMetrics("windrose_test")
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	hooks := metrics.Hooks()
	ctx := context.Background()

	hooks.OnHandlerEnter(ctx, &domain.HandlerEvent{Handler: domain.HandlerSharpener, Phase: domain.PhaseSharpening})
	hooks.OnHandlerEnter(ctx, &domain.HandlerEvent{Handler: domain.HandlerSharpener, Phase: domain.PhaseSharpening})
	hooks.OnToolReturn(ctx, &domain.ToolEvent{ToolName: domain.ToolSearchFlights, Duration: 120 * time.Millisecond})
	hooks.OnToolReturn(ctx, &domain.ToolEvent{ToolName: domain.ToolSearchFlights, IsError: true})
	hooks.OnEscalation(ctx, &domain.EscalationEvent{Urgency: "high"})

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.handlerRuns.WithLabelValues(domain.HandlerSharpener, string(domain.PhaseSharpening))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.toolCalls.WithLabelValues(domain.ToolSearchFlights, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.toolCalls.WithLabelValues(domain.ToolSearchFlights, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.escalations.WithLabelValues("high")))
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	metrics := NewMetrics("windrose_test")
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	assert.Error(t, metrics.Register(reg))
}
