package sampler_test

import (
	"errors"
	"testing"

	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
	"github.com/ruflab/simple-shapes-dataset/pkg/sampler"
	"github.com/ruflab/simple-shapes-dataset/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	domA = domain.DomainDesc{Base: "a", Kind: "a"}
	domB = domain.DomainDesc{Base: "b", Kind: "b"}
)

func ints(n, offset int) *source.Memory {
	values := make([]any, n)
	for i := range values {
		values[i] = offset + i
	}
	return source.NewMemory(values...)
}

func TestComposite_LenIsMinimum(t *testing.T) {
	c, err := sampler.New(map[domain.DomainDesc]ports.Source{
		domA: ints(5, 0),
		domB: ints(3, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.IDs())

	n, err := c.LenOf([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, err = c.LenOf([]string{"z"})
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)

	empty, err := sampler.New(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestComposite_Get(t *testing.T) {
	c, err := sampler.New(map[domain.DomainDesc]ports.Source{
		domA: ints(3, 0),
		domB: ints(3, 100),
	})
	require.NoError(t, err)

	rec, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"a": 2, "b": 102}, rec)

	for _, idx := range []int{-1, 3} {
		_, err = c.Get(idx)
		assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	}
}

func TestComposite_Transforms(t *testing.T) {
	boom := errors.New("boom")
	c, err := sampler.New(
		map[domain.DomainDesc]ports.Source{domA: ints(2, 0), domB: ints(2, 10)},
		sampler.WithTransforms(map[string]ports.Transform{
			"a": func(v any) (any, error) { return v.(int) * 2, nil },
			"b": func(v any) (any, error) {
				if v.(int) == 11 {
					return nil, boom
				}
				return v, nil
			},
		}),
	)
	require.NoError(t, err)

	rec, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"a": 0, "b": 10}, rec)

	_, err = c.Get(1)
	assert.Same(t, boom, err)

	_, err = sampler.New(
		map[domain.DomainDesc]ports.Source{domA: ints(1, 0)},
		sampler.WithTransforms(map[string]ports.Transform{"z": nil}),
	)
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
}

func TestNew_DuplicateIdentifier(t *testing.T) {
	_, err := sampler.New(map[domain.DomainDesc]ports.Source{
		{Base: "v", Kind: "x"}: ints(1, 0),
		{Base: "t", Kind: "x"}: ints(1, 0),
	})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNew_RejectsGroupSeparatorInIdentifier(t *testing.T) {
	_, err := sampler.New(map[domain.DomainDesc]ports.Source{
		{Base: "a", Kind: "a+b"}: ints(3, 0),
	})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestComposite_Restrict(t *testing.T) {
	c, err := sampler.New(map[domain.DomainDesc]ports.Source{
		domA: ints(6, 0),
		domB: ints(6, 100),
	})
	require.NoError(t, err)

	r, err := c.Restrict([]string{"b"}, []int{4, 1, 5})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"b"}, r.IDs())
	assert.Equal(t, []int{4, 1, 5}, r.Indices())
	n, err := r.LenOf([]string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec, err := r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"b": 104}, rec)
	_, err = r.Get(3)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)

	nested, err := r.Restrict([]string{"b"}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, nested.Indices())
	rec, err = nested.Get(0)
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"b": 105}, rec)

	_, err = c.Restrict([]string{"a"}, []int{6})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = c.Restrict([]string{"z"}, []int{0})
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)
	_, err = r.Restrict([]string{"a"}, []int{0})
	assert.ErrorIs(t, err, domain.ErrUnknownDomain)

	empty, err := c.Restrict([]string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
	assert.Empty(t, empty.Indices())
}

func TestComposite_RestrictIgnoresDroppedDomains(t *testing.T) {
	c, err := sampler.New(map[domain.DomainDesc]ports.Source{
		domA: ints(10, 0),
		domB: ints(4, 100),
	})
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	r, err := c.Restrict([]string{"a"}, []int{9, 6})
	require.NoError(t, err)
	rec, err := r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"a": 9}, rec)

	_, err = c.Restrict([]string{"a", "b"}, []int{6})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = c.Restrict([]string{"a"}, []int{10})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestComposite_RestrictKeepsTransforms(t *testing.T) {
	c, err := sampler.New(
		map[domain.DomainDesc]ports.Source{domA: ints(3, 0)},
		sampler.WithTransforms(map[string]ports.Transform{
			"a": func(v any) (any, error) { return -v.(int), nil },
		}),
	)
	require.NoError(t, err)

	r, err := c.Restrict([]string{"a"}, []int{2})
	require.NoError(t, err)
	rec, err := r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, -2, rec["a"])
}
