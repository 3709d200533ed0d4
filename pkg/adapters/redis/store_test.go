package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrose-ai/windrose/pkg/adapters/redis"
	"github.com/windrose-ai/windrose/pkg/domain"
	"github.com/windrose-ai/windrose/pkg/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	store := redis.NewFromClient(client)
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	err := store.Save(ctx, "ttl-conv", &domain.Snapshot{CurrentPhase: domain.PhaseAction})
	require.NoError(t, err)

	// Snapshot readable before expiry.
	snap, err := store.Load(ctx, "ttl-conv")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAction, snap.CurrentPhase)

	// Gone after the TTL elapses.
	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, "ttl-conv")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "windrose:conv:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "conv-1", 5*time.Second)
	require.NoError(t, err)

	// Second acquisition must block until released or context timeout.
	shortCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "conv-1", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	// Released lock is reacquirable.
	unlock2, err := locker.Lock(ctx, "conv-1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
