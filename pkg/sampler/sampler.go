package sampler

import (
	"fmt"
	"sort"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
)

// Composite reads several sources at the same index and returns one record
// keyed by domain identifier. A restricted Composite reads through an index
// list instead.
type Composite struct {
	domains    []domain.DomainDesc
	sources    map[string]ports.Source
	transforms map[string]ports.Transform
	indices    []int
}

// Option configures a Composite.
type Option func(*Composite)

// WithTransforms applies a transform to the payload of the named domains
// after the source has produced it.
func WithTransforms(transforms map[string]ports.Transform) Option {
	return func(c *Composite) {
		for id, t := range transforms {
			c.transforms[id] = t
		}
	}
}

// New creates a Composite over sources. Two descriptors sharing an
// identifier, or a transform for a domain that has no source, are errors.
func New(sources map[domain.DomainDesc]ports.Source, opts ...Option) (*Composite, error) {
	c := &Composite{
		sources:    make(map[string]ports.Source, len(sources)),
		transforms: make(map[string]ports.Transform),
	}
	for desc, src := range sources {
		if err := domain.CheckID(desc.ID()); err != nil {
			return nil, err
		}
		if _, dup := c.sources[desc.ID()]; dup {
			return nil, &domain.ConfigError{Domain: desc.ID(), Reason: "identifier used by two descriptors"}
		}
		c.sources[desc.ID()] = src
		c.domains = append(c.domains, desc)
	}
	sort.Slice(c.domains, func(i, j int) bool { return c.domains[i].ID() < c.domains[j].ID() })

	for _, opt := range opts {
		opt(c)
	}
	for id := range c.transforms {
		if _, ok := c.sources[id]; !ok {
			return nil, fmt.Errorf("transform: %w", &domain.UnknownDomainError{ID: id})
		}
	}
	return c, nil
}

// Len is the number of records. For an unrestricted Composite it is the
// smallest source length, zero when there are no sources.
func (c *Composite) Len() int {
	if c.indices != nil {
		return len(c.indices)
	}
	return c.minLen(c.domains)
}

// LenOf is the number of records readable from the domains ids alone: the
// smallest of their source lengths, or the restriction length for a
// restricted Composite. Unknown identifiers are an error.
func (c *Composite) LenOf(ids []string) (int, error) {
	descs := make([]domain.DomainDesc, 0, len(ids))
	for _, id := range ids {
		desc, ok := c.Domain(id)
		if !ok {
			return 0, &domain.UnknownDomainError{ID: id}
		}
		descs = append(descs, desc)
	}
	if c.indices != nil {
		return len(c.indices), nil
	}
	return c.minLen(descs), nil
}

func (c *Composite) minLen(descs []domain.DomainDesc) int {
	n := -1
	for _, desc := range descs {
		if l := c.sources[desc.ID()].Len(); n < 0 || l < n {
			n = l
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// Domains returns the descriptors sorted by identifier.
func (c *Composite) Domains() []domain.DomainDesc {
	return append([]domain.DomainDesc(nil), c.domains...)
}

// IDs returns the domain identifiers in sorted order.
func (c *Composite) IDs() []string {
	ids := make([]string, len(c.domains))
	for i, desc := range c.domains {
		ids[i] = desc.ID()
	}
	return ids
}

// Domain returns the descriptor registered under id.
func (c *Composite) Domain(id string) (domain.DomainDesc, bool) {
	for _, desc := range c.domains {
		if desc.ID() == id {
			return desc, true
		}
	}
	return domain.DomainDesc{}, false
}

// Source returns the source of the domain id.
func (c *Composite) Source(id string) (ports.Source, bool) {
	src, ok := c.sources[id]
	return src, ok
}

// Indices returns a copy of the restriction, or nil for an unrestricted Composite.
func (c *Composite) Indices() []int {
	if c.indices == nil {
		return nil
	}
	return append([]int(nil), c.indices...)
}

// Get returns the record at index. Source and transform errors are returned
// unchanged.
func (c *Composite) Get(index int) (domain.Record, error) {
	if err := domain.CheckIndex(index, c.Len()); err != nil {
		return nil, err
	}
	if c.indices != nil {
		index = c.indices[index]
	}

	rec := make(domain.Record, len(c.domains))
	for _, desc := range c.domains {
		id := desc.ID()
		v, err := c.sources[id].Get(index)
		if err != nil {
			return nil, err
		}
		if t := c.transforms[id]; t != nil {
			if v, err = t(v); err != nil {
				return nil, err
			}
		}
		rec[id] = v
	}
	return rec, nil
}

// Restrict returns a Composite over the domains ids that reads only the
// given positions, in order. Positions refer to c itself, so restricting a
// restricted Composite composes both index lists. Positions are bounded by
// the lengths of the kept domains only.
func (c *Composite) Restrict(ids []string, indices []int) (*Composite, error) {
	r := &Composite{
		sources:    make(map[string]ports.Source, len(ids)),
		transforms: make(map[string]ports.Transform),
	}
	for _, id := range ids {
		desc, ok := c.Domain(id)
		if !ok {
			return nil, &domain.UnknownDomainError{ID: id}
		}
		if _, dup := r.sources[id]; dup {
			continue
		}
		r.domains = append(r.domains, desc)
		r.sources[id] = c.sources[id]
		if t := c.transforms[id]; t != nil {
			r.transforms[id] = t
		}
	}
	sort.Slice(r.domains, func(i, j int) bool { return r.domains[i].ID() < r.domains[j].ID() })

	n := c.Len()
	if len(ids) > 0 {
		n, _ = c.LenOf(ids)
	}
	r.indices = make([]int, len(indices))
	for i, idx := range indices {
		if err := domain.CheckIndex(idx, n); err != nil {
			return nil, err
		}
		if c.indices != nil {
			idx = c.indices[idx]
		}
		r.indices[i] = idx
	}
	return r, nil
}
