package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSourceContract verifies that src holds wantLen examples, rejects
// out-of-range indices and returns stable values under concurrent reads.
func RunSourceContract(t *testing.T, src ports.Source, wantLen int) {
	t.Helper()

	t.Run("Len", func(t *testing.T) {
		assert.Equal(t, wantLen, src.Len())
	})

	t.Run("Out of range", func(t *testing.T) {
		for _, idx := range []int{-1, wantLen, wantLen + 1} {
			_, err := src.Get(idx)
			assert.ErrorIs(t, err, domain.ErrIndexOutOfRange, "Get(%d)", idx)
		}
	})

	if wantLen == 0 {
		return
	}

	t.Run("Stable reads", func(t *testing.T) {
		first, err := src.Get(0)
		require.NoError(t, err)
		again, err := src.Get(0)
		require.NoError(t, err)
		assert.Equal(t, first, again)

		last, err := src.Get(wantLen - 1)
		require.NoError(t, err)
		assert.NotNil(t, last)
	})

	t.Run("Concurrent reads", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, wantLen*4)
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < wantLen; i++ {
					if _, err := src.Get(i); err != nil {
						errs <- err
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent Get: %v", err)
		}
	})
}

// RunAssignmentStoreContract runs a suite of tests to verify that an
// AssignmentStore implementation adheres to the interface contract.
func RunAssignmentStoreContract(t *testing.T, store ports.AssignmentStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Load missing", func(t *testing.T) {
		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)
	})

	t.Run("Save and Load", func(t *testing.T) {
		a := &domain.Assignment{
			N:       4,
			Seed:    7,
			MaxSize: 0,
			Groups: map[string][]int{
				"t+v": {3, 1},
				"v":   {3, 1, 0, 2},
				"t":   {},
			},
		}
		require.NoError(t, store.Save(ctx, key, a))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 4, loaded.N)
		assert.Equal(t, int64(7), loaded.Seed)
		assert.Equal(t, []int{3, 1}, loaded.Groups["t+v"])
		assert.Equal(t, []int{3, 1, 0, 2}, loaded.Groups["v"])
		assert.Empty(t, loaded.Groups["t"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, &domain.Assignment{N: 2, Groups: map[string][]int{"v": {1}}}))
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.N)
		assert.Equal(t, []int{1}, loaded.Groups["v"])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)
	})
}

// RunLockerContract verifies mutual exclusion per key on a Locker.
func RunLockerContract(t *testing.T, locker ports.Locker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("20060102150405")

	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	t.Run("Contention", func(t *testing.T) {
		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err := locker.Lock(short, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Independent keys", func(t *testing.T) {
		other, err := locker.Lock(ctx, key+"-other", 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, other(ctx))
	})

	t.Run("Release", func(t *testing.T) {
		require.NoError(t, unlock(ctx))
		again, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, again(ctx))
	})
}
