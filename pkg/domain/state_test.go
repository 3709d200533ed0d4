package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	state := domain.NewTurnState("conv-1", "cust-1")
	state.CurrentPhase = domain.PhaseAction
	state.PlanReady = true
	state.SharpeningTurns = 2
	state.ActionTurns = 3
	state.IntentCategory = domain.IntentPlanning
	state.Language = "tr"
	state.CompletedTasks = domain.TaskLedger{domain.TaskSearchInitiated, domain.TaskResultsPresented}
	state.Travel.Destination = "Paris"
	state.Travel.MarkCollected(domain.FieldDestination)
	state.Travel.DepartureDate = "2026-09-10"
	state.Travel.MarkCollected(domain.FieldDepartureDate)
	state.Travel.ReturnDate = "2026-09-15"
	state.Travel.MarkCollected(domain.FieldReturnDate)

	data, err := json.Marshal(state.Snapshot())
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored := domain.Restore("conv-1", "cust-1", &snap)

	assert.Equal(t, domain.PhaseAction, restored.CurrentPhase)
	assert.True(t, restored.PlanReady)
	assert.Equal(t, 2, restored.SharpeningTurns)
	assert.Equal(t, 3, restored.ActionTurns)
	assert.Equal(t, domain.IntentPlanning, restored.IntentCategory)
	assert.Equal(t, "tr", restored.Language)
	// Collected fields compare as a set; insertion order is irrelevant.
	assert.ElementsMatch(t, state.Travel.CollectedFields, restored.Travel.CollectedFields)
	assert.ElementsMatch(t, state.CompletedTasks, restored.CompletedTasks)
	assert.Equal(t, "Paris", restored.Travel.Destination)
}

func TestRestore_NilSnapshotIsFirstContact(t *testing.T) {
	state := domain.Restore("conv-1", "cust-1", nil)
	assert.Equal(t, domain.PhaseIdle, state.CurrentPhase)
	assert.Equal(t, "en", state.Language)
	assert.Equal(t, 1, state.Travel.Travelers)
	assert.Empty(t, state.CompletedTasks)
}

func TestTaskLedger(t *testing.T) {
	var ledger domain.TaskLedger

	ledger = ledger.Append(domain.TaskSearchInitiated)
	ledger = ledger.Append(domain.TaskSearchInitiated)
	ledger = ledger.Append(domain.TaskResultsPresented)

	assert.Equal(t, domain.TaskLedger{domain.TaskSearchInitiated, domain.TaskResultsPresented}, ledger)
	assert.True(t, ledger.Contains(domain.TaskSearchInitiated))
	assert.False(t, ledger.Contains(domain.TaskBookingCompleted))

	merged := ledger.Merge(domain.TaskLedger{domain.TaskResultsPresented, domain.TaskBookingCompleted})
	assert.Equal(t, domain.TaskLedger{domain.TaskSearchInitiated, domain.TaskResultsPresented, domain.TaskBookingCompleted}, merged)

	clone := ledger.Clone()
	clone = clone.Append(domain.TaskActionCompleted)
	assert.False(t, ledger.Contains(domain.TaskActionCompleted))
}

func TestTravelContext_Defaults(t *testing.T) {
	travel := domain.NewTravelContext()
	travel.ApplyDefaults()

	assert.Equal(t, "general", travel.Motivation)
	assert.Equal(t, "EUR", travel.BudgetCurrency)
	assert.Equal(t, "flexible", travel.TransportationPref)
	assert.Equal(t, "hotel", travel.AccommodationPref)
	assert.Equal(t, 1, travel.Travelers)
	// Defaults never fabricate required fields.
	assert.Empty(t, travel.Destination)
	assert.NotEmpty(t, travel.MissingRequired())
}

func TestTravelContext_MarkCollectedIsIdempotent(t *testing.T) {
	travel := domain.NewTravelContext()
	travel.MarkCollected(domain.FieldDestination)
	travel.MarkCollected(domain.FieldDestination)
	assert.Equal(t, []string{domain.FieldDestination}, travel.CollectedFields)
}

func TestAddSuggestions_Deduplicates(t *testing.T) {
	state := domain.NewTurnState("conv-1", "cust-1")
	state.AddSuggestions("Paris", "Rome")
	state.AddSuggestions("Rome", "Venice")
	assert.Equal(t, []string{"Paris", "Rome", "Venice"}, state.Suggestions)
}
