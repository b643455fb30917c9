package alignment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ruflab/simple-shapes-dataset/internal/logging"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/observability"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/sampler"
)

// DefaultLockTTL bounds how long a crashed worker can hold an assignment lock.
const DefaultLockTTL = 30 * time.Second

// Proportions maps each group to the fraction of the reference size it
// receives. Values are independent and must lie in (0, 1].
type Proportions map[domain.GroupKey]float64

// Groups returns the keys in sorted order.
func (p Proportions) Groups() []domain.GroupKey {
	keys := make([]domain.GroupKey, 0, len(p))
	for g := range p {
		keys = append(keys, g)
	}
	domain.SortGroups(keys)
	return keys
}

// Domains returns the union of the group domains in sorted order.
func (p Proportions) Domains() []string {
	seen := make(map[string]bool)
	var ids []string
	for g := range p {
		for _, id := range g.Domains() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

type options struct {
	maxSize int
	seed    int64
	store   ports.AssignmentStore
	locker  ports.Locker
	lockTTL time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures Align.
type Option func(*options)

// WithMaxSize caps every group at k indices. Zero means no cap.
func WithMaxSize(k int) Option {
	return func(o *options) { o.maxSize = k }
}

// WithSeed sets the seed of the permutation. The default is 0.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithStore reuses assignments saved under the same request fingerprint and
// saves the ones it computes.
func WithStore(store ports.AssignmentStore) Option {
	return func(o *options) { o.store = store }
}

// WithLocker holds a per-fingerprint lock around load, compute and save, so
// concurrent workers sharing a store compute an assignment once.
func WithLocker(locker ports.Locker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics publishes group sizes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Align partitions the records of s into groups. Every group receives the
// first round-half-even(p*N) positions of one seeded permutation of
// [0, N), capped by the max size, so smaller groups are prefixes of larger
// ones. N is the shortest source among the domains the groups mention.
//
// The request is validated before any source is read.
func Align(ctx context.Context, s *sampler.Composite, props Proportions, opts ...Option) (*Result, error) {
	o := options{
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	groups := props.Groups()
	if err := validate(s, props, groups, o.maxSize); err != nil {
		return nil, err
	}

	n, err := s.LenOf(props.Domains())
	if err != nil {
		return nil, err
	}

	a, reused, err := o.assignment(ctx, n, props, groups)
	if err != nil {
		return nil, err
	}

	res := &Result{
		assignment: a,
		groups:     groups,
		samplers:   make(map[domain.GroupKey]*sampler.Composite, len(groups)),
		reused:     reused,
	}
	for _, g := range groups {
		restricted, err := s.Restrict(g.Domains(), a.Indices(g))
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g, err)
		}
		res.samplers[g] = restricted
	}

	if o.metrics != nil {
		o.metrics.ObserveAssignment(a)
	}
	o.logger.Debug("alignment ready", "n", n, "seed", o.seed, "max_size", o.maxSize, "groups", len(groups), "reused", reused)
	return res, nil
}

func validate(s *sampler.Composite, props Proportions, groups []domain.GroupKey, maxSize int) error {
	if len(props) == 0 {
		return &domain.ConfigError{Key: "groups", Reason: "no groups requested"}
	}
	for _, g := range groups {
		if g.IsZero() {
			return &domain.ConfigError{Key: "groups", Reason: "group with no domains"}
		}
		if p := props[g]; !(p > 0 && p <= 1) {
			return &domain.ProportionError{Group: g, Value: p}
		}
	}
	for _, g := range groups {
		for _, id := range g.Domains() {
			if _, ok := s.Domain(id); !ok {
				return fmt.Errorf("group %s: %w", g, &domain.UnknownDomainError{ID: id})
			}
		}
	}
	if maxSize < 0 {
		return &domain.ConfigError{Key: "max_size", Reason: fmt.Sprintf("must not be negative, got %d", maxSize)}
	}
	return nil
}

func (o *options) assignment(ctx context.Context, n int, props Proportions, groups []domain.GroupKey) (*domain.Assignment, bool, error) {
	if o.store == nil {
		return compute(n, o.seed, o.maxSize, props, groups), false, nil
	}

	key := Fingerprint(n, o.seed, o.maxSize, props)
	if o.locker != nil {
		unlock, err := o.locker.Lock(ctx, key, o.lockTTL)
		if err != nil {
			return nil, false, fmt.Errorf("failed to lock assignment %s: %w", key, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				o.logger.Warn("failed to release assignment lock", "key", key, "error", err)
			}
		}()
	}

	stored, err := o.store.Load(ctx, key)
	switch {
	case err == nil:
		verr := check(stored, n, o.seed, o.maxSize, props, groups)
		if verr == nil {
			o.logger.Debug("assignment reused", "key", key)
			return stored, true, nil
		}
		o.logger.Warn("stored assignment rejected, recomputing", "key", key, "error", verr)
	case !errors.Is(err, domain.ErrAssignmentNotFound):
		return nil, false, fmt.Errorf("failed to load assignment %s: %w", key, err)
	}

	a := compute(n, o.seed, o.maxSize, props, groups)
	if err := o.store.Save(ctx, key, a); err != nil {
		return nil, false, fmt.Errorf("failed to save assignment %s: %w", key, err)
	}
	o.logger.Debug("assignment saved", "key", key)
	return a, false, nil
}

func compute(n int, seed int64, maxSize int, props Proportions, groups []domain.GroupKey) *domain.Assignment {
	perm := Permutation(n, seed)
	a := &domain.Assignment{
		N:       n,
		Seed:    seed,
		MaxSize: maxSize,
		Groups:  make(map[string][]int, len(groups)),
	}
	for _, g := range groups {
		size := groupSize(props[g], n, maxSize)
		a.Groups[g.String()] = append([]int{}, perm[:size]...)
	}
	return a
}

// check verifies that a stored assignment answers this request.
func check(a *domain.Assignment, n int, seed int64, maxSize int, props Proportions, groups []domain.GroupKey) error {
	if !a.Matches(n, seed, maxSize) {
		return fmt.Errorf("parameters differ: n=%d seed=%d max_size=%d", a.N, a.Seed, a.MaxSize)
	}
	if len(a.Groups) != len(groups) {
		return fmt.Errorf("has %d groups, want %d", len(a.Groups), len(groups))
	}
	for _, g := range groups {
		indices, ok := a.Groups[g.String()]
		if !ok {
			return fmt.Errorf("group %s missing", g)
		}
		if want := groupSize(props[g], n, maxSize); len(indices) != want {
			return fmt.Errorf("group %s has %d indices, want %d", g, len(indices), want)
		}
		seen := make(map[int]bool, len(indices))
		for _, idx := range indices {
			if idx < 0 || idx >= n || seen[idx] {
				return fmt.Errorf("group %s has invalid index %d", g, idx)
			}
			seen[idx] = true
		}
	}
	return nil
}

// Fingerprint identifies a request: the same reference size, seed, cap and
// proportions always produce the same assignment.
func Fingerprint(n int, seed int64, maxSize int, props Proportions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "n=%d;seed=%d;max_size=%d", n, seed, maxSize)
	for _, g := range props.Groups() {
		b.WriteString(";")
		b.WriteString(g.String())
		b.WriteString("=")
		b.WriteString(strconv.FormatFloat(props[g], 'g', -1, 64))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
