package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	status, err := store.Create(ctx, TypeIngest)
	require.NoError(t, err)

	assert.NotEmpty(t, status.JobID)
	assert.Equal(t, TypeIngest, status.JobType)
	assert.Equal(t, StatePending, status.State)
	assert.Nil(t, status.Result)
	assert.Empty(t, status.Error)
	assert.False(t, status.CreatedAt.IsZero())
	assert.Equal(t, status.CreatedAt, status.UpdatedAt)
}

func TestMemoryStoreIDsAreUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		status, err := store.Create(ctx, TypeFact)
		require.NoError(t, err)
		require.False(t, seen[status.JobID], "duplicate job id %s", status.JobID)
		seen[status.JobID] = true
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()

	status, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestMemoryStoreGetReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, TypeIngest)
	require.NoError(t, err)

	snap, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)

	// Mutating the snapshot must not leak into the store.
	snap.State = StateFailed
	snap.Error = "tampered"

	fresh, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatePending, fresh.State)
	assert.Empty(t, fresh.Error)
}

func TestMemoryStoreGetResultIsStable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, TypeIngest)
	require.NoError(t, err)

	err = store.Update(ctx, created.JobID, func(s *Status) {
		s.State = StateCompleted
		s.Result = map[string]any{"nodes": 3}
	})
	require.NoError(t, err)

	snap, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)

	// Replacing the snapshot's Result must not leak into the store.
	snap.Result = map[string]any{"nodes": 0}

	fresh, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nodes": 3}, fresh.Result)
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, TypeIngest)
	require.NoError(t, err)

	err = store.Update(ctx, created.JobID, func(s *Status) {
		s.State = StateCompleted
		s.Result = map[string]any{"nodes": 3}
	})
	require.NoError(t, err)

	status, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, status.State)
	assert.NotNil(t, status.Result)
	assert.True(t, status.UpdatedAt.After(status.CreatedAt) || status.UpdatedAt.Equal(status.CreatedAt))
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	store := NewMemoryStore()

	err := store.Update(context.Background(), "nope", func(s *Status) {})
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, TypeIngest)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, TypeFact)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(ctx, created.JobID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 11, store.Len())
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
}
