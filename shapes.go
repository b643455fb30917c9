package shapes

import (
	"context"
	"log/slog"

	"github.com/ruflab/simple-shapes-dataset/internal/logging"
	"github.com/ruflab/simple-shapes-dataset/pkg/alignment"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/observability"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/registry"
	"github.com/ruflab/simple-shapes-dataset/pkg/sampler"
)

// Dataset is one split of the dataset loaded for a set of domains.
type Dataset struct {
	Path  string
	Split string

	sampler *sampler.Composite
	opts    options
}

type options struct {
	registry   *registry.Registry
	transforms map[string]ports.Transform
	args       map[string]map[string]any
	logger     *slog.Logger
	metrics    *observability.Metrics
	align      []alignment.Option
}

// Option configures Open and OpenAligned.
type Option func(*options)

// WithRegistry replaces the built-in domain registry.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithTransforms sets the per-domain transforms, keyed by domain identifier.
func WithTransforms(transforms map[string]ports.Transform) Option {
	return func(o *options) { o.transforms = transforms }
}

// WithDomainArgs sets the per-domain options, keyed by domain identifier.
func WithDomainArgs(args map[string]map[string]any) Option {
	return func(o *options) { o.args = args }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics instruments the sources and records group sizes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAlignOptions passes options to alignment.Align.
func WithAlignOptions(opts ...alignment.Option) Option {
	return func(o *options) { o.align = append(o.align, opts...) }
}

// Open loads the domains of one split. Identifiers are resolved before any
// source is built, and the first failing source aborts the whole load.
func Open(path, split string, domains []string, opts ...Option) (*Dataset, error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = registry.Default(registry.WithLogger(o.logger), registry.WithMetrics(o.metrics))
	}

	sources, err := o.registry.InstantiateAll(domains, path, split, o.transforms, o.args)
	if err != nil {
		return nil, err
	}
	s, err := sampler.New(sources)
	if err != nil {
		return nil, err
	}
	o.logger.Info("dataset opened", "path", path, "split", split, "domains", s.IDs(), "len", s.Len())
	return &Dataset{Path: path, Split: split, sampler: s, opts: o}, nil
}

// Len is the number of records readable from every domain.
func (d *Dataset) Len() int { return d.sampler.Len() }

// Get returns the record at index, keyed by domain identifier.
func (d *Dataset) Get(index int) (domain.Record, error) { return d.sampler.Get(index) }

// Domains returns the loaded descriptors sorted by identifier.
func (d *Dataset) Domains() []domain.DomainDesc { return d.sampler.Domains() }

// Sampler returns the composite sampler over all loaded domains.
func (d *Dataset) Sampler() *sampler.Composite { return d.sampler }

// Align partitions the dataset into groups. Options given here follow the
// ones passed to Open through WithAlignOptions.
func (d *Dataset) Align(ctx context.Context, props alignment.Proportions, opts ...alignment.Option) (*alignment.Result, error) {
	all := []alignment.Option{alignment.WithLogger(d.opts.logger)}
	if d.opts.metrics != nil {
		all = append(all, alignment.WithMetrics(d.opts.metrics))
	}
	all = append(all, d.opts.align...)
	all = append(all, opts...)
	return alignment.Align(ctx, d.sampler, props, all...)
}

// OpenAligned loads exactly the domains named by the groups and aligns them.
func OpenAligned(ctx context.Context, path, split string, props alignment.Proportions, opts ...Option) (*alignment.Result, error) {
	ds, err := Open(path, split, props.Domains(), opts...)
	if err != nil {
		return nil, err
	}
	return ds.Align(ctx, props)
}
