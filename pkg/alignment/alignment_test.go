package alignment_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ruflab/simple-shapes-dataset/pkg/adapters/memory"
	"github.com/ruflab/simple-shapes-dataset/pkg/alignment"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/observability"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	domA = domain.DomainDesc{Base: "a", Kind: "a"}
	domB = domain.DomainDesc{Base: "b", Kind: "b"}
	gA   = domain.NewGroupKey("a")
	gB   = domain.NewGroupKey("b")
	gAB  = domain.NewGroupKey("a", "b")
)

// countingSource returns its index and counts every call.
type countingSource struct {
	n     int
	calls atomic.Int64
}

func (s *countingSource) Len() int {
	s.calls.Add(1)
	return s.n
}

func (s *countingSource) Get(index int) (any, error) {
	s.calls.Add(1)
	if err := domain.CheckIndex(index, s.n); err != nil {
		return nil, err
	}
	return index, nil
}

func newSampler(t *testing.T, lenA, lenB int) (*sampler.Composite, *countingSource, *countingSource) {
	t.Helper()
	a, b := &countingSource{n: lenA}, &countingSource{n: lenB}
	s, err := sampler.New(map[domain.DomainDesc]ports.Source{domA: a, domB: b})
	require.NoError(t, err)
	return s, a, b
}

func TestAlign_RoundTrip(t *testing.T) {
	s, _, _ := newSampler(t, 4, 4)

	res, err := alignment.Align(context.Background(), s, alignment.Proportions{
		gAB: 0.5,
		gA:  1,
		gB:  1,
	}, alignment.WithSeed(0))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Len())
	assert.Equal(t, 4, res.N())
	assert.Equal(t, []domain.GroupKey{gA, gAB, gB}, res.Groups())

	ab, ok := res.Sampler(gAB)
	require.True(t, ok)
	a, _ := res.Sampler(gA)
	b, _ := res.Sampler(gB)
	assert.Equal(t, 2, ab.Len())
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []string{"a", "b"}, ab.IDs())
	assert.Equal(t, []string{"a"}, a.IDs())

	pairs := res.Indices(gAB)
	full := res.Indices(gA)
	assert.Equal(t, full[:2], pairs)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, full)

	for local, global := range pairs {
		rec, err := ab.Get(local)
		require.NoError(t, err)
		assert.Equal(t, domain.Record{"a": global, "b": global}, rec)
	}
	_, err = ab.Get(2)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = ab.Get(-1)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestAlign_Deterministic(t *testing.T) {
	s, _, _ := newSampler(t, 100, 100)
	props := alignment.Proportions{gAB: 0.3, gA: 0.9, gB: 0.6}
	ctx := context.Background()

	first, err := alignment.Align(ctx, s, props, alignment.WithSeed(7))
	require.NoError(t, err)
	second, err := alignment.Align(ctx, s, props, alignment.WithSeed(7))
	require.NoError(t, err)
	assert.Equal(t, first.Assignment(), second.Assignment())

	other, err := alignment.Align(ctx, s, props, alignment.WithSeed(8))
	require.NoError(t, err)
	assert.NotEqual(t, first.Indices(gA), other.Indices(gA))
}

func TestAlign_Nesting(t *testing.T) {
	s, _, _ := newSampler(t, 1000, 1000)
	props := alignment.Proportions{gAB: 0.05, gA: 0.4, gB: 0.8}

	res, err := alignment.Align(context.Background(), s, props, alignment.WithSeed(3))
	require.NoError(t, err)

	small, mid, large := res.Indices(gAB), res.Indices(gA), res.Indices(gB)
	assert.Len(t, small, 50)
	assert.Len(t, mid, 400)
	assert.Len(t, large, 800)
	assert.Equal(t, mid, large[:400])
	assert.Equal(t, small, mid[:50])
}

func TestAlign_Boundaries(t *testing.T) {
	s, _, _ := newSampler(t, 10, 10)
	ctx := context.Background()

	res, err := alignment.Align(ctx, s, alignment.Proportions{gA: 1})
	require.NoError(t, err)
	assert.Len(t, res.Indices(gA), 10)

	res, err = alignment.Align(ctx, s, alignment.Proportions{gA: 1, gAB: 0.5}, alignment.WithMaxSize(3))
	require.NoError(t, err)
	assert.Len(t, res.Indices(gA), 3)
	assert.Len(t, res.Indices(gAB), 3)
	assert.Equal(t, 3, res.MaxSize())

	res, err = alignment.Align(ctx, s, alignment.Proportions{gA: 1}, alignment.WithMaxSize(20))
	require.NoError(t, err)
	assert.Len(t, res.Indices(gA), 10)

	for _, p := range []float64{0, -0.1, 1.0000001, 2, math.NaN(), math.Inf(1)} {
		_, err := alignment.Align(ctx, s, alignment.Proportions{gA: p})
		assert.ErrorIs(t, err, domain.ErrInvalidProportion, "p=%v", p)
	}
}

func TestAlign_ReferenceSizeIsShortestMentionedSource(t *testing.T) {
	s, _, _ := newSampler(t, 10, 6)
	ctx := context.Background()

	res, err := alignment.Align(ctx, s, alignment.Proportions{gA: 1, gB: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, res.N())
	for _, idx := range res.Indices(gA) {
		assert.Less(t, idx, 6)
	}

	only, err := alignment.Align(ctx, s, alignment.Proportions{gA: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, only.N())
	group, ok := only.Sampler(gA)
	require.True(t, ok)
	assert.Equal(t, 10, group.Len())
	assert.ElementsMatch(t, alignment.Permutation(10, 0), only.Indices(gA))
	for i := 0; i < group.Len(); i++ {
		_, err := group.Get(i)
		require.NoError(t, err)
	}
}

func TestAlign_EmptyGroup(t *testing.T) {
	s, _, _ := newSampler(t, 10, 10)

	res, err := alignment.Align(context.Background(), s, alignment.Proportions{gAB: 0.01, gA: 1})
	require.NoError(t, err)

	empty, ok := res.Sampler(gAB)
	require.True(t, ok)
	assert.Zero(t, empty.Len())
	assert.Empty(t, res.Indices(gAB))
	_, err = empty.Get(0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestAlign_ValidationBeforeSourcesAreTouched(t *testing.T) {
	ctx := context.Background()
	cases := map[string]struct {
		props alignment.Proportions
		opts  []alignment.Option
		want  error
	}{
		"unknown domain": {
			props: alignment.Proportions{domain.NewGroupKey("z"): 0.5, gA: 1},
			want:  domain.ErrUnknownDomain,
		},
		"invalid proportion": {
			props: alignment.Proportions{gA: 1.5},
			want:  domain.ErrInvalidProportion,
		},
		"negative max size": {
			props: alignment.Proportions{gA: 1},
			opts:  []alignment.Option{alignment.WithMaxSize(-1)},
			want:  domain.ErrConfiguration,
		},
		"no groups": {
			props: alignment.Proportions{},
			want:  domain.ErrConfiguration,
		},
		"empty group key": {
			props: alignment.Proportions{domain.NewGroupKey(): 1},
			want:  domain.ErrConfiguration,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			s, a, b := newSampler(t, 4, 4)
			res, err := alignment.Align(ctx, s, c.props, c.opts...)
			assert.ErrorIs(t, err, c.want)
			assert.Nil(t, res)
			assert.Zero(t, a.calls.Load())
			assert.Zero(t, b.calls.Load())
		})
	}
}

func TestAlign_StoreReuse(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s, _, _ := newSampler(t, 20, 20)
	props := alignment.Proportions{gAB: 0.25, gA: 1}

	first, err := alignment.Align(ctx, s, props, alignment.WithSeed(5), alignment.WithStore(store))
	require.NoError(t, err)
	assert.False(t, first.Reused())

	key := alignment.Fingerprint(20, 5, 0, props)
	stored, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first.Assignment(), stored)

	second, err := alignment.Align(ctx, s, props, alignment.WithSeed(5), alignment.WithStore(store))
	require.NoError(t, err)
	assert.True(t, second.Reused())
	assert.Equal(t, first.Assignment(), second.Assignment())

	// A different seed has a different fingerprint.
	third, err := alignment.Align(ctx, s, props, alignment.WithSeed(6), alignment.WithStore(store))
	require.NoError(t, err)
	assert.False(t, third.Reused())
}

func TestAlign_StoreRejectsCorruptAssignment(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s, _, _ := newSampler(t, 8, 8)
	props := alignment.Proportions{gA: 0.5}
	key := alignment.Fingerprint(8, 0, 0, props)

	require.NoError(t, store.Save(ctx, key, &domain.Assignment{
		N:      8,
		Groups: map[string][]int{"a": {1, 1, 2, 3}},
	}))

	res, err := alignment.Align(ctx, s, props, alignment.WithStore(store))
	require.NoError(t, err)
	assert.False(t, res.Reused())

	plain, err := alignment.Align(ctx, s, props)
	require.NoError(t, err)
	assert.Equal(t, plain.Indices(gA), res.Indices(gA))

	stored, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, plain.Indices(gA), stored.Groups["a"])
}

func TestAlign_LockerSharesComputation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	locker := memory.NewLocker()
	s, _, _ := newSampler(t, 50, 50)
	props := alignment.Proportions{gAB: 0.5, gB: 1}

	const workers = 8
	var (
		wg     sync.WaitGroup
		reused atomic.Int64
		mu     sync.Mutex
		seen   []*domain.Assignment
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := alignment.Align(ctx, s, props,
				alignment.WithStore(store),
				alignment.WithLocker(locker, 0),
			)
			if !assert.NoError(t, err) {
				return
			}
			if res.Reused() {
				reused.Add(1)
			}
			mu.Lock()
			seen = append(seen, res.Assignment())
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers-1), reused.Load())
	require.Len(t, seen, workers)
	for _, a := range seen[1:] {
		assert.Equal(t, seen[0], a)
	}
}

func TestAlign_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	s, _, _ := newSampler(t, 4, 4)

	_, err = alignment.Align(context.Background(), s, alignment.Proportions{gA: 1, gAB: 0.5}, alignment.WithMetrics(m))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "shapes_group_size")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAlign_RestrictedParent(t *testing.T) {
	s, _, _ := newSampler(t, 10, 10)
	parent, err := s.Restrict([]string{"a", "b"}, []int{9, 8, 7, 6})
	require.NoError(t, err)

	res, err := alignment.Align(context.Background(), parent, alignment.Proportions{gA: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, res.N())

	child, _ := res.Sampler(gA)
	for i := 0; i < child.Len(); i++ {
		rec, err := child.Get(i)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec["a"], 6)
	}
}

func TestFingerprint(t *testing.T) {
	props := alignment.Proportions{gA: 1, gAB: 0.5}
	same := alignment.Proportions{gAB: 0.5, gA: 1}

	assert.Equal(t, alignment.Fingerprint(4, 0, 0, props), alignment.Fingerprint(4, 0, 0, same))
	assert.Len(t, alignment.Fingerprint(4, 0, 0, props), 64)
	assert.NotEqual(t, alignment.Fingerprint(4, 0, 0, props), alignment.Fingerprint(5, 0, 0, props))
	assert.NotEqual(t, alignment.Fingerprint(4, 0, 0, props), alignment.Fingerprint(4, 1, 0, props))
	assert.NotEqual(t, alignment.Fingerprint(4, 0, 0, props), alignment.Fingerprint(4, 0, 2, props))
	assert.NotEqual(t, alignment.Fingerprint(4, 0, 0, props), alignment.Fingerprint(4, 0, 0, alignment.Proportions{gA: 1, gAB: 0.25}))
}
