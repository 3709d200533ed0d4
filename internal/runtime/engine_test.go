package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

// scriptLM replays a fixed sequence of completions, one per call.
type scriptLM struct {
	t       *testing.T
	replies []*ports.Completion
	calls   int
}

func (s *scriptLM) Complete(_ context.Context, _ ports.CompletionRequest) (*ports.Completion, error) {
	s.t.Helper()
	if s.calls >= len(s.replies) {
		s.t.Fatalf("unexpected model call %d, script has %d replies", s.calls+1, len(s.replies))
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

// recordingDispatcher returns canned content per tool name and records calls.
type recordingDispatcher struct {
	results map[string]string
	calls   []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	d.calls = append(d.calls, call.Name)
	content, ok := d.results[call.Name]
	if !ok {
		return domain.ToolResult{ID: call.ID, IsError: true, Error: "unknown tool"}, nil
	}
	return domain.ToolResult{ID: call.ID, Content: content}, nil
}

const neutralAnalysis = `{"explicit_human_request": false, "frustration_level": 1, "issue_complexity": 1, "user_sentiment": "neutral", "involves_payment": false, "recommended_action": "continue"}`

func TestProcessTurn_FirstContactStartsSharpening(t *testing.T) {
	lm := &scriptLM{t: t, replies: []*ports.Completion{
		{Content: `{"category": "planning"}`},
		{Content: `{"extracted": {"destination": "Paris"}, "detected_language": "en", "response": "When would you like to go?"}`},
	}}
	engine := NewEngine(lm, &recordingDispatcher{})

	state := domain.NewTurnState("conv-1", "cust-1")
	result, err := engine.ProcessTurn(context.Background(), state, "I want to go to Paris")
	require.NoError(t, err)

	assert.Equal(t, "When would you like to go?", result.AssistantText)
	assert.Equal(t, domain.PhaseSharpening, state.CurrentPhase)
	assert.False(t, state.PlanReady)
	assert.Equal(t, 2, lm.calls)
}

func TestProcessTurn_PlanCompletionRunsSearchAndPresents(t *testing.T) {
	lm := &scriptLM{t: t, replies: []*ports.Completion{
		{Content: neutralAnalysis}, // escalation pre-check
		{Content: `{"extracted": {"departure_date": "2026-09-10", "return_date": "2026-09-15"}, "all_required_complete": true, "detected_language": "en", "response": "Searching now."}`},
		{ToolCalls: []domain.ToolCall{
			{ID: "call-1", Name: domain.ToolSearchFlights, Args: map[string]any{"origin": "IST", "destination": "CDG"}},
		}},
		{Content: "Here are your options:\n1. TK123 - 120 EUR\n2. AF456 - 150 EUR"},
	}}
	dispatcher := &recordingDispatcher{results: map[string]string{
		domain.ToolSearchFlights: `{"flights": [{"id": "TK123"}, {"id": "AF456"}]}`,
	}}
	engine := NewEngine(lm, dispatcher)

	state := sharpeningState()
	state.Travel.Destination = "Paris"
	state.Travel.MarkCollected(domain.FieldDestination)
	state.SharpeningTurns = 1
	state.Messages = append(state.Messages, domain.NewUserMessage("I want to go to Paris"))

	result, err := engine.ProcessTurn(context.Background(), state, "leaving the 10th, back the 15th")
	require.NoError(t, err)

	assert.True(t, state.PlanReady)
	assert.Equal(t, domain.PhaseAction, state.CurrentPhase)
	assert.Equal(t, []string{domain.ToolSearchFlights}, dispatcher.calls)
	assert.True(t, state.CompletedTasks.Contains(domain.TaskSearchInitiated))
	assert.True(t, state.CompletedTasks.Contains(domain.TaskResultsPresented))
	assert.Contains(t, result.AssistantText, "1. TK123")
}

func TestProcessTurn_EscalationShortCircuits(t *testing.T) {
	lm := &scriptLM{t: t, replies: []*ports.Completion{
		{Content: `{"explicit_human_request": true, "frustration_level": 5, "issue_complexity": 2, "user_sentiment": "very_negative", "involves_payment": false, "recommended_action": "urgent_escalate"}`},
	}}

	var escalated *domain.EscalationEvent
	engine := NewEngine(lm, &recordingDispatcher{}, WithHooks(domain.LifecycleHooks{
		OnEscalation: func(_ context.Context, ev *domain.EscalationEvent) { escalated = ev },
	}))

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("I want to plan a trip"))

	result, err := engine.ProcessTurn(context.Background(), state, "this is useless, get me a manager NOW")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseEscalation, state.CurrentPhase)
	assert.Contains(t, result.AssistantText, "human agent")
	require.NotNil(t, escalated)
	assert.GreaterOrEqual(t, escalated.Score, EscalationThreshold)
	assert.Equal(t, 1, lm.calls, "no handler runs after the handoff")
}

func TestProcessTurn_NoEscalationCheckOnFirstContact(t *testing.T) {
	lm := &scriptLM{t: t, replies: []*ports.Completion{
		{Content: `{"category": "info"}`},
		{Content: "Liquids up to 100ml are allowed in hand luggage."},
	}}
	engine := NewEngine(lm, &recordingDispatcher{})

	state := domain.NewTurnState("conv-1", "cust-1")
	result, err := engine.ProcessTurn(context.Background(), state, "what is the liquid limit in hand luggage?")
	require.NoError(t, err)

	assert.Contains(t, result.AssistantText, "100ml")
	assert.True(t, state.CompletedTasks.Contains(domain.TaskInfoCompleted))
	assert.Equal(t, domain.PhaseCompleted, state.CurrentPhase)
	assert.Equal(t, 2, lm.calls)
}

func TestProcessTurn_ToolFailureDegrades(t *testing.T) {
	lm := &scriptLM{t: t, replies: []*ports.Completion{
		{ToolCalls: []domain.ToolCall{{ID: "call-1", Name: domain.ToolSearchFlights}}},
		{Content: "I couldn't find flights just now. Want me to retry or adjust the dates?"},
	}}
	dispatcher := &recordingDispatcher{results: map[string]string{}} // every tool fails
	engine := NewEngine(lm, dispatcher)

	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseReadyForAction
	state.PlanReady = true
	state.Travel.Destination = "Paris"

	result, err := engine.ProcessTurn(context.Background(), state, "go ahead")
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ToolSearchFlights}, state.FailedActions)
	assert.Contains(t, result.AssistantText, "retry or adjust")

	found := false
	for _, msg := range state.Messages {
		if msg.Role == domain.RoleTool && msg.IsError {
			found = true
		}
	}
	assert.True(t, found, "failed dispatch becomes a failure-flavored tool result")
}

func TestProcessTurn_ActionModelFailureEndsTurnWithApology(t *testing.T) {
	engine := NewEngine(&staticLM{err: errors.New("provider down")}, &recordingDispatcher{},
		WithMaxRetries(0), WithCallTimeout(time.Second))

	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseReadyForAction
	state.PlanReady = true
	state.Travel.Destination = "Paris"

	result, err := engine.ProcessTurn(context.Background(), state, "go ahead")
	require.NoError(t, err)

	// The search step degrades to its apology and the turn ends instead of
	// re-entering the same failing step until the iteration cap.
	assert.Contains(t, result.AssistantText, "couldn't complete")
	assert.Equal(t, 1, state.ActionTurns)
	assert.True(t, state.NeedsUserInput)
	assert.Equal(t, domain.PhaseAction, state.CurrentPhase)
}

func TestProcessTurn_Cancellation(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, &recordingDispatcher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := domain.NewTurnState("conv-1", "cust-1")
	_, err := engine.ProcessTurn(ctx, state, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessTurn_ModelFailureDoesNotAbortTurn(t *testing.T) {
	engine := NewEngine(&staticLM{err: errors.New("provider down")}, &recordingDispatcher{},
		WithMaxRetries(0), WithCallTimeout(time.Second))

	state := sharpeningState()
	result, err := engine.ProcessTurn(context.Background(), state, "take me somewhere warm")
	require.NoError(t, err)

	// Classification is skipped (already sharpening); the sharpener degrades
	// to its fixed apology and the turn ends cleanly.
	assert.Contains(t, result.AssistantText, "Sorry")
	assert.Equal(t, domain.PhaseSharpening, state.CurrentPhase)
}
