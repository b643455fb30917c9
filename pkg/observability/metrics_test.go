package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/observability"
	"github.com/ruflab/simple-shapes-dataset/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_CountsGets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	src := m.Instrument("attr", source.NewMemory("a", "b"))
	assert.Equal(t, 2, src.Len())

	v, err := src.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	_, err = src.Get(5)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)

	count, err := testutil.GatherAndCount(reg, "shapes_source_gets_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			values[f.GetName()] += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), values["shapes_source_gets_total"])
	assert.Equal(t, float64(1), values["shapes_source_errors_total"])
}

func TestObserveAssignment(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	m.ObserveAssignment(&domain.Assignment{Groups: map[string][]int{
		"t+v": {0, 1},
		"v":   {0, 1, 2, 3},
	}})

	count, err := testutil.GatherAndCount(reg, "shapes_group_size")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m)
}
