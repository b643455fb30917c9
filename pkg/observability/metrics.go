package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruflab/simple-shapes-dataset/pkg/domain"
	"github.com/ruflab/simple-shapes-dataset/pkg/ports"
)

// Metrics holds the dataset collectors.
type Metrics struct {
	gets      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	groupSize *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		gets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shapes_source_gets_total",
				Help: "Total number of Get calls per domain",
			},
			[]string{"domain"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shapes_source_errors_total",
				Help: "Total number of failed Get calls per domain and reason",
			},
			[]string{"domain", "reason"},
		),
		groupSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shapes_group_size",
				Help: "Number of indices assigned to each aligned group",
			},
			[]string{"group"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.gets, m.failures, m.groupSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrument wraps src so that its reads are counted under the domain id.
func (m *Metrics) Instrument(id string, src ports.Source) ports.Source {
	return &instrumented{Source: src, id: id, m: m}
}

// ObserveAssignment records the size of every group of a.
func (m *Metrics) ObserveAssignment(a *domain.Assignment) {
	for group, indices := range a.Groups {
		m.groupSize.WithLabelValues(group).Set(float64(len(indices)))
	}
}

type instrumented struct {
	ports.Source
	id string
	m  *Metrics
}

func (s *instrumented) Get(index int) (any, error) {
	s.m.gets.WithLabelValues(s.id).Inc()
	v, err := s.Source.Get(index)
	if err != nil {
		reason := "error"
		if errors.Is(err, domain.ErrIndexOutOfRange) {
			reason = "out_of_range"
		}
		s.m.failures.WithLabelValues(s.id, reason).Inc()
	}
	return v, err
}
