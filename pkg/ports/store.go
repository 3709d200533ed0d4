package ports

import (
	"context"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// StateStore persists conversation snapshots between turns.
// Implementations decide the expiry policy; the redis adapter applies a TTL.
type StateStore interface {
	// Save persists the snapshot for a given conversation ID.
	Save(ctx context.Context, conversationID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given conversation ID.
	// Returns domain.ErrSessionNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given conversation ID.
	Delete(ctx context.Context, conversationID string) error
}
