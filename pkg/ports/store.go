package ports

import (
	"context"
	"time"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
)

// AssignmentStore persists partitioning results so that several workers can
// share the exact index assignment of a run.
type AssignmentStore interface {
	// Save persists the assignment under key, replacing any previous value.
	Save(ctx context.Context, key string, a *domain.Assignment) error

	// Load retrieves the assignment stored under key.
	// Returns domain.ErrAssignmentNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Assignment, error)

	// Delete removes the assignment stored under key.
	Delete(ctx context.Context, key string) error
}

// UnlockFunc releases a lock acquired through Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work on a key across processes, so that one worker
// computes an assignment while the others wait and then load it.
type Locker interface {
	// Lock blocks until the lock is acquired or ctx is done. The lock
	// expires after ttl if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
