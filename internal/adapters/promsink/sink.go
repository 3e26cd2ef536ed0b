// Package promsink publishes observations as Prometheus gauges.
package promsink

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/numerai-exporter/internal/domain/emit"
	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Sink holds one GaugeVec per family. Series are never deleted, so values
// from a previous pass stay visible until overwritten.
type Sink struct {
	gauges map[string]*prometheus.GaugeVec
}

// New registers every family on reg. Families that are already registered
// with identical descriptors are reused.
func New(reg prometheus.Registerer, families []emit.Family) (*Sink, error) {
	s := &Sink{gauges: make(map[string]*prometheus.GaugeVec, len(families))}
	for _, f := range families {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: f.Name, Help: f.Help}, f.Labels)
		if err := reg.Register(g); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, fmt.Errorf("%w: %s: %v", ErrRegister, f.Name, err)
			}
			existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				return nil, fmt.Errorf("%w: %s: existing collector is not a gauge vector", ErrRegister, f.Name)
			}
			g = existing
		}
		s.gauges[f.Name] = g
	}
	return s, nil
}

// Publish sets every observation, last write wins. It stops at the first
// observation that does not match a registered family.
func (s *Sink) Publish(_ context.Context, obs []model.Observation) error {
	for i := range obs {
		if err := s.set(&obs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) set(o *model.Observation) error {
	g, ok := s.gauges[o.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, o.Name)
	}
	gauge, err := g.GetMetricWith(prometheus.Labels(o.Labels))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnknownMetric, o.Name, err)
	}
	gauge.Set(o.Value)
	return nil
}
