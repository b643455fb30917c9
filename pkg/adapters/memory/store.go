package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
)

// Store implements ports.AssignmentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Assignment
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Assignment),
	}
}

// Save stores a copy of a.
func (s *Store) Save(ctx context.Context, key string, a *domain.Assignment) error {
	copied := clone(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load returns a copy so callers cannot mutate the stored value.
func (s *Store) Load(ctx context.Context, key string) (*domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[key]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	return clone(a), nil
}

// Delete removes the assignment.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func clone(a *domain.Assignment) *domain.Assignment {
	c := *a
	c.Groups = make(map[string][]int, len(a.Groups))
	for g, indices := range a.Groups {
		c.Groups[g] = append([]int{}, indices...)
	}
	return &c
}
