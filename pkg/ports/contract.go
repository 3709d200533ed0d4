package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	conversationID := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := &domain.Snapshot{
			TravelContext:   domain.NewTravelContext(),
			CurrentPhase:    domain.PhaseSharpening,
			PlanReady:       false,
			SharpeningTurns: 2,
			CompletedTasks:  domain.TaskLedger{domain.TaskSearchInitiated},
			Language:        "en",
		}
		snap.TravelContext.Destination = "PAR"
		snap.TravelContext.MarkCollected(domain.FieldDestination)

		err := store.Save(ctx, conversationID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, conversationID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.CurrentPhase, loaded.CurrentPhase)
		assert.Equal(t, snap.SharpeningTurns, loaded.SharpeningTurns)
		assert.Equal(t, "PAR", loaded.TravelContext.Destination)
		// Set semantics, not slice order.
		assert.ElementsMatch(t, snap.TravelContext.CollectedFields, loaded.TravelContext.CollectedFields)
		assert.True(t, loaded.CompletedTasks.Contains(domain.TaskSearchInitiated))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+conversationID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, conversationID, &domain.Snapshot{CurrentPhase: domain.PhaseIdle})
		require.NoError(t, err)

		err = store.Delete(ctx, conversationID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, conversationID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})
}
