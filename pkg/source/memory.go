package source

import "github.com/ruflab/simple-shapes-dataset/pkg/domain"

// Memory is a source over values held in memory. It is the building block
// for custom domains registered at runtime.
type Memory struct {
	values []any
}

// NewMemory creates a source over values. The slice is copied.
func NewMemory(values ...any) *Memory {
	return &Memory{values: append([]any(nil), values...)}
}

// Len returns the number of values.
func (s *Memory) Len() int { return len(s.values) }

// Get returns the value at index.
func (s *Memory) Get(index int) (any, error) {
	if err := domain.CheckIndex(index, len(s.values)); err != nil {
		return nil, err
	}
	return s.values[index], nil
}
