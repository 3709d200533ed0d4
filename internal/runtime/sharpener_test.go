package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/domain"
)

func sharpeningState() *domain.TurnState {
	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseSharpening
	return state
}

func TestRunSharpener_FirstRoundStaysSharpening(t *testing.T) {
	lm := &staticLM{content: `{
		"extracted": {"destination": "Paris"},
		"phase_complete": true,
		"all_required_complete": false,
		"detected_language": "en",
		"response": "Paris is lovely! When would you like to travel?"
	}`}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("I want to go to Paris"))

	require.NoError(t, engine.runSharpener(context.Background(), state))

	assert.Equal(t, domain.PhaseSharpening, state.CurrentPhase)
	assert.False(t, state.PlanReady)
	assert.True(t, state.NeedsUserInput)
	assert.Equal(t, 1, state.SharpeningTurns)
	assert.Equal(t, "Paris", state.Travel.Destination)
	assert.True(t, state.Travel.Collected(domain.FieldDestination))

	text, ok := domain.LastAssistantText(state.Messages)
	require.True(t, ok)
	assert.Contains(t, text, "When would you like to travel?")
}

func TestRunSharpener_RequiredFieldsCompletePlan(t *testing.T) {
	lm := &staticLM{content: `{
		"extracted": {"departure_date": "2026-09-10", "return_date": "2026-09-15", "travelers": 2},
		"all_required_complete": true,
		"detected_language": "en",
		"response": "Great, here is your plan."
	}`}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.Travel.Destination = "Paris"
	state.Travel.MarkCollected(domain.FieldDestination)
	state.SharpeningTurns = 1
	state.Messages = append(state.Messages, domain.NewUserMessage("tomorrow for 5 days, 2 of us"))

	require.NoError(t, engine.runSharpener(context.Background(), state))

	assert.True(t, state.PlanReady)
	assert.False(t, state.NeedsUserInput)
	assert.Equal(t, domain.PhaseReadyForAction, state.CurrentPhase)
	assert.Equal(t, 2, state.Travel.Travelers)
	assert.NotEmpty(t, state.Travel.PlanSummary)
	// Optional fields picked up their defaults on completion.
	assert.Equal(t, "flexible", state.Travel.TransportationPref)
	assert.Equal(t, "hotel", state.Travel.AccommodationPref)
}

func TestRunSharpener_WeaklyTypedExtraction(t *testing.T) {
	// Models occasionally return numbers as strings; the merge absorbs it.
	lm := &staticLM{content: `{
		"extracted": {"travelers": "3", "budget_max": "1500"},
		"detected_language": "en",
		"response": "Noted."
	}`}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("3 of us, 1500 euros max"))

	require.NoError(t, engine.runSharpener(context.Background(), state))
	assert.Equal(t, 3, state.Travel.Travelers)
	assert.Equal(t, 1500.0, state.Travel.BudgetMax)
	assert.True(t, state.Travel.Collected(domain.FieldBudgetMax))
}

func TestRunSharpener_MalformedModelOutputIsTolerated(t *testing.T) {
	lm := &staticLM{content: "Where would you like to go?"}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("hi"))

	require.NoError(t, engine.runSharpener(context.Background(), state))

	assert.False(t, state.PlanReady)
	assert.True(t, state.NeedsUserInput)
	assert.Empty(t, state.Travel.CollectedFields)

	text, ok := domain.LastAssistantText(state.Messages)
	require.True(t, ok)
	assert.Equal(t, "Where would you like to go?", text)
}

func TestRunSharpener_MergeIsIdempotent(t *testing.T) {
	lm := &staticLM{content: `{
		"extracted": {"destination": "Rome"},
		"detected_language": "en",
		"response": "Rome again, noted."
	}`}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("Rome"))

	require.NoError(t, engine.runSharpener(context.Background(), state))
	state.Messages = append(state.Messages, domain.NewUserMessage("Rome, like I said"))
	state.NeedsUserInput = false
	require.NoError(t, engine.runSharpener(context.Background(), state))

	count := 0
	for _, f := range state.Travel.CollectedFields {
		if f == domain.FieldDestination {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRunSharpener_TurnLimitDefaultsOptionalFieldsOnly(t *testing.T) {
	lm := &staticLM{content: `{
		"extracted": {},
		"detected_language": "en",
		"response": "Could you tell me where you want to go?"
	}`}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.SharpeningTurns = 3
	state.Messages = append(state.Messages, domain.NewUserMessage("somewhere nice"))

	require.NoError(t, engine.runSharpener(context.Background(), state))

	// Optional fields defaulted, but required fields still missing and the
	// collection keeps going.
	assert.Equal(t, "flexible", state.Travel.TransportationPref)
	assert.False(t, state.PlanReady)
	assert.Equal(t, domain.PhaseSharpening, state.CurrentPhase)
	assert.Empty(t, state.Travel.Destination)
}

func TestRunSharpener_DetectsTurkish(t *testing.T) {
	lm := &staticLM{content: `{
		"extracted": {"destination": "Antalya"},
		"detected_language": "tr",
		"response": "Antalya harika bir seçim! Ne zaman gitmek istersiniz?"
	}`}
	engine := NewEngine(lm, nil)

	state := sharpeningState()
	state.Messages = append(state.Messages, domain.NewUserMessage("Antalya'ya gitmek istiyorum"))

	require.NoError(t, engine.runSharpener(context.Background(), state))
	assert.Equal(t, "tr", state.Language)
}
