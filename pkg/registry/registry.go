package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ruflab/simple-shapes-dataset/internal/logging"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/observability"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/source"
)

// Factory builds the source of one domain.
type Factory func(cfg source.Config) (ports.Source, error)

type entry struct {
	desc    domain.DomainDesc
	factory Factory
}

// Registry maps domain identifiers to their descriptor and factory.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used when sources are built.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics instruments every instantiated source.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default creates a registry holding the five built-in domains.
func Default(opts ...Option) *Registry {
	r := New(opts...)
	r.set(domain.VisualDomain, func(cfg source.Config) (ports.Source, error) {
		return source.NewImages(cfg)
	})
	r.set(domain.VisualLatentsDomain, func(cfg source.Config) (ports.Source, error) {
		return source.NewPretrainedVisual(cfg)
	})
	r.set(domain.AttributesDomain, func(cfg source.Config) (ports.Source, error) {
		return source.NewAttributes(cfg)
	})
	r.set(domain.RawTextDomain, func(cfg source.Config) (ports.Source, error) {
		return source.NewRawTexts(cfg)
	})
	r.set(domain.TextDomain, func(cfg source.Config) (ports.Source, error) {
		return source.NewTexts(cfg)
	})
	return r
}

// Register adds a domain. An existing registration with the same
// identifier is overwritten. Identifiers that cannot appear in a group key
// are rejected with a ConfigError.
func (r *Registry) Register(desc domain.DomainDesc, factory Factory) error {
	if err := domain.CheckID(desc.ID()); err != nil {
		return err
	}
	if factory == nil {
		return &domain.ConfigError{Domain: desc.ID(), Reason: "nil factory"}
	}
	r.set(desc, factory)
	return nil
}

func (r *Registry) set(desc domain.DomainDesc, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[desc.ID()] = entry{desc: desc, factory: factory}
}

// Resolve returns the descriptor registered under id.
func (r *Registry) Resolve(id string) (domain.DomainDesc, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return domain.DomainDesc{}, &domain.UnknownDomainError{ID: id}
	}
	return e.desc, nil
}

// Classes resolves every identifier and returns the matching factories.
// It fails on the first unknown identifier.
func (r *Registry) Classes(ids []string) (map[domain.DomainDesc]Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.DomainDesc]Factory, len(ids))
	for _, id := range ids {
		e, ok := r.entries[id]
		if !ok {
			return nil, &domain.UnknownDomainError{ID: id}
		}
		out[e.desc] = e.factory
	}
	return out, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Instantiate builds the source of desc for the given split.
func (r *Registry) Instantiate(desc domain.DomainDesc, datasetPath, split string, transform ports.Transform, args map[string]any) (ports.Source, error) {
	r.mu.RLock()
	e, ok := r.entries[desc.ID()]
	r.mu.RUnlock()
	if !ok || e.desc != desc {
		return nil, &domain.UnknownDomainError{ID: desc.ID()}
	}

	src, err := e.factory(source.Config{
		DatasetPath: datasetPath,
		Split:       split,
		Transform:   transform,
		Args:        args,
	})
	if err != nil {
		r.logger.Error("failed to instantiate domain", "domain", desc.ID(), "split", split, "error", err)
		return nil, err
	}
	r.logger.Debug("domain instantiated", "domain", desc.ID(), "split", split, "len", src.Len())
	if r.metrics != nil {
		src = r.metrics.Instrument(desc.ID(), src)
	}
	return src, nil
}

// InstantiateAll resolves every identifier and only then builds the
// sources, so an unknown identifier fails before any file is read.
// Transforms and args are keyed by domain identifier; keys naming an
// unregistered domain are rejected.
func (r *Registry) InstantiateAll(ids []string, datasetPath, split string, transforms map[string]ports.Transform, args map[string]map[string]any) (map[domain.DomainDesc]ports.Source, error) {
	classes, err := r.Classes(ids)
	if err != nil {
		return nil, err
	}
	for id := range transforms {
		if _, err := r.Resolve(id); err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
	}
	for id := range args {
		if _, err := r.Resolve(id); err != nil {
			return nil, fmt.Errorf("domain args: %w", err)
		}
	}

	descs := make([]domain.DomainDesc, 0, len(classes))
	for desc := range classes {
		descs = append(descs, desc)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].ID() < descs[j].ID() })

	sources := make(map[domain.DomainDesc]ports.Source, len(descs))
	for _, desc := range descs {
		src, err := r.Instantiate(desc, datasetPath, split, transforms[desc.ID()], args[desc.ID()])
		if err != nil {
			return nil, err
		}
		sources[desc] = src
	}
	return sources, nil
}
