package alignment

import (
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/sampler"
)

// Result holds one restricted sampler per group.
type Result struct {
	assignment *domain.Assignment
	groups     []domain.GroupKey
	samplers   map[domain.GroupKey]*sampler.Composite
	reused     bool
}

// N is the reference size the groups were drawn from.
func (r *Result) N() int { return r.assignment.N }

// Seed is the permutation seed.
func (r *Result) Seed() int64 { return r.assignment.Seed }

// MaxSize is the per-group cap, zero when uncapped.
func (r *Result) MaxSize() int { return r.assignment.MaxSize }

// Groups returns the group keys in sorted order.
func (r *Result) Groups() []domain.GroupKey {
	return append([]domain.GroupKey(nil), r.groups...)
}

// Len is the number of groups.
func (r *Result) Len() int { return len(r.groups) }

// Sampler returns the restricted sampler of g.
func (r *Result) Sampler(g domain.GroupKey) (*sampler.Composite, bool) {
	s, ok := r.samplers[g]
	return s, ok
}

// Indices returns the global indices of g, in sampler order.
func (r *Result) Indices(g domain.GroupKey) []int {
	indices := r.assignment.Indices(g)
	if indices == nil {
		return nil
	}
	return append([]int{}, indices...)
}

// Reused reports whether the assignment came from a store.
func (r *Result) Reused() bool { return r.reused }

// Assignment returns a copy of the serializable assignment.
func (r *Result) Assignment() *domain.Assignment {
	a := *r.assignment
	a.Groups = make(map[string][]int, len(r.assignment.Groups))
	for g, indices := range r.assignment.Groups {
		a.Groups[g] = append([]int{}, indices...)
	}
	return &a
}
