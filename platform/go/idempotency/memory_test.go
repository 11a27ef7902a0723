package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ok, err := store.SetIfAbsent(ctx, "k1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.SetIfAbsent(ctx, "k1", time.Hour)
	require.NoError(t, err)
	require.False(t, ok)

	exists, err := store.Exists(ctx, "k1")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Now()
	store.now = func() time.Time { return current }

	ok, err := store.SetIfAbsent(ctx, "k1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	current = current.Add(2 * time.Minute)

	exists, err := store.Exists(ctx, "k1")
	require.NoError(t, err)
	require.False(t, exists)

	// An expired key can be reserved again.
	ok, err = store.SetIfAbsent(ctx, "k1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.SetIfAbsent(ctx, "k1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "k1"))

	ok, err := store.SetIfAbsent(ctx, "k1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStoreConcurrentReservation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wins atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.SetIfAbsent(ctx, "contended", time.Hour)
			require.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), wins.Load())
}
