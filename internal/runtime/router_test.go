package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/domain"
)

func TestRoute_NoUserMessageEndsTurn(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)
	state := domain.NewTurnState("conv-1", "cust-1")

	next, err := engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerEnd, next)
}

func TestRoute_IdleClassification(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantNext    string
		wantPhase   domain.Phase
		wantIntent  domain.IntentCategory
		wantPlanSet bool
	}{
		{
			name:       "planning goes to sharpener",
			reply:      `{"category": "planning"}`,
			wantNext:   domain.HandlerSharpener,
			wantPhase:  domain.PhaseSharpening,
			wantIntent: domain.IntentPlanning,
		},
		{
			name:       "info goes to info",
			reply:      `{"category": "info"}`,
			wantNext:   domain.HandlerInfo,
			wantPhase:  domain.PhaseInfo,
			wantIntent: domain.IntentInfo,
		},
		{
			name:        "reactive with destination and dates goes straight to action",
			reply:       `{"category": "reactive", "has_destination": true, "has_dates": true}`,
			wantNext:    domain.HandlerAction,
			wantPhase:   domain.PhaseAction,
			wantIntent:  domain.IntentReactive,
			wantPlanSet: true,
		},
		{
			name:       "reactive without dates sharpens first",
			reply:      `{"category": "reactive", "has_destination": true}`,
			wantNext:   domain.HandlerSharpener,
			wantPhase:  domain.PhaseSharpening,
			wantIntent: domain.IntentReactive,
		},
		{
			name:       "unparseable classification defaults to sharpening",
			reply:      "not json at all",
			wantNext:   domain.HandlerSharpener,
			wantPhase:  domain.PhaseSharpening,
			wantIntent: domain.IntentPlanning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&staticLM{content: tt.reply}, nil)
			state := domain.NewTurnState("conv-1", "cust-1")
			state.Messages = append(state.Messages, domain.NewUserMessage("hello"))

			next, err := engine.route(context.Background(), state)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNext, next)
			assert.Equal(t, tt.wantPhase, state.CurrentPhase)
			assert.Equal(t, tt.wantIntent, state.IntentCategory)
			assert.Equal(t, tt.wantPlanSet, state.PlanReady)
		})
	}
}

func TestClassifierPrompt_RequestsTripDetailFlags(t *testing.T) {
	prompt := classifierPrompt("Cancel my flight to Paris departing 2026-09-10 returning 2026-09-15")

	// The reactive fast path reads these booleans off the reply; the contract
	// shown to the model must ask for every one of them.
	assert.Contains(t, prompt, `"category"`)
	assert.Contains(t, prompt, `"has_destination"`)
	assert.Contains(t, prompt, `"has_dates"`)
	assert.Contains(t, prompt, `"has_travelers"`)
}

func TestRoute_Sharpening(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("Paris"))

	next, err := engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerSharpener, next)

	// The sharpener asked a question; the turn ends.
	state.NeedsUserInput = true
	next, err = engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerEnd, next)

	// Plan ready forwards to action regardless.
	state.PlanReady = true
	next, err = engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerAction, next)
	assert.Equal(t, domain.PhaseAction, state.CurrentPhase)
}

func TestRoute_ReadyForActionIsUnconditional(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)
	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseReadyForAction
	state.Messages = append(state.Messages, domain.NewUserMessage("ok"))

	next, err := engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerAction, next)
	assert.Equal(t, domain.PhaseAction, state.CurrentPhase)
}

func TestRoute_ActionRules(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)

	t.Run("results on the table end the turn", func(t *testing.T) {
		state := domain.NewTurnState("conv-1", "cust-1")
		state.CurrentPhase = domain.PhaseAction
		state.CompletedTasks = domain.TaskLedger{domain.TaskResultsPresented}
		state.Messages = append(state.Messages, domain.NewUserMessage("2"))

		next, err := engine.route(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, domain.HandlerEnd, next)
	})

	t.Run("fresh tool result re-enters action", func(t *testing.T) {
		state := domain.NewTurnState("conv-1", "cust-1")
		state.CurrentPhase = domain.PhaseAction
		state.CompletedTasks = domain.TaskLedger{domain.TaskSearchInitiated}
		state.Messages = append(state.Messages,
			domain.NewUserMessage("find flights"),
			domain.NewToolResultMessage("call-1", `{"flights": []}`, false),
		)

		next, err := engine.route(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, domain.HandlerAction, next)
	})

	t.Run("completed action with closing text moves to completed", func(t *testing.T) {
		state := domain.NewTurnState("conv-1", "cust-1")
		state.CurrentPhase = domain.PhaseAction
		state.CompletedTasks = domain.TaskLedger{domain.TaskActionCompleted}
		state.Messages = append(state.Messages,
			domain.NewUserMessage("yes"),
			domain.NewAssistantMessage("Your booking is complete!"),
		)

		next, err := engine.route(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, domain.HandlerEnd, next)
		assert.Equal(t, domain.PhaseCompleted, state.CurrentPhase)
	})

	t.Run("otherwise keeps working", func(t *testing.T) {
		state := domain.NewTurnState("conv-1", "cust-1")
		state.CurrentPhase = domain.PhaseAction
		state.Messages = append(state.Messages, domain.NewUserMessage("search for my trip"))

		next, err := engine.route(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, domain.HandlerAction, next)
	})
}

func TestRoute_InfoReturnsToPreviousPhase(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)

	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseInfo
	state.PreviousPhase = domain.PhaseSharpening
	state.Messages = append(state.Messages, domain.NewUserMessage("do I need a visa?"))

	next, err := engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerEnd, next)
	assert.Equal(t, domain.PhaseSharpening, state.CurrentPhase)

	// No phase to resume: the conversation closes out.
	state.CurrentPhase = domain.PhaseInfo
	state.PreviousPhase = domain.PhaseIdle
	next, err = engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerEnd, next)
	assert.Equal(t, domain.PhaseCompleted, state.CurrentPhase)
}

func TestRoute_Completed(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)

	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseCompleted
	state.CompletedTasks = domain.TaskLedger{domain.TaskBookingCompleted, domain.TaskActionCompleted}
	state.Messages = append(state.Messages, domain.NewUserMessage("thanks, that's all"))

	next, err := engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerEnd, next)
	assert.NotEmpty(t, state.CompletedTasks)

	state.Messages = append(state.Messages, domain.NewUserMessage("actually I'd like to book another trip"))
	next, err = engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerAction, next)
	assert.Equal(t, domain.PhaseAction, state.CurrentPhase)
	assert.Empty(t, state.CompletedTasks, "the ledger resets for the new flow")
}

func TestRoute_EscalationStays(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)
	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseEscalation
	state.Messages = append(state.Messages, domain.NewUserMessage("hello?"))

	next, err := engine.route(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerEnd, next)
	assert.Equal(t, domain.PhaseEscalation, state.CurrentPhase)
}

func TestRunHandler_UnknownHandlerIsHardError(t *testing.T) {
	engine := NewEngine(&staticLM{content: "{}"}, nil)
	state := domain.NewTurnState("conv-1", "cust-1")

	err := engine.runHandler(context.Background(), state, "teleport")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownHandler)
}
