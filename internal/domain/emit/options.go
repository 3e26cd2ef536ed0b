package emit

import (
	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/okian/numerai-exporter/internal/domain/scoring"
)

// Option applies a configuration option to the Emitter.
type Option func(*Emitter)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(e *Emitter) {
		if namespace != "" {
			e.namespace = namespace
		}
	}
}

// WithSubsystem sets the metric subsystem (the tournament name).
func WithSubsystem(subsystem string) Option {
	return func(e *Emitter) {
		if subsystem != "" {
			e.subsystem = subsystem
		}
	}
}

// WithPolicy sets the presence policy for nullable fields.
func WithPolicy(policy scoring.Policy) Option {
	return func(e *Emitter) {
		e.policy = policy
	}
}

// WithPeriods sets the lookback windows. Invalid periods are dropped.
func WithPeriods(periods []model.Period) Option {
	return func(e *Emitter) {
		valid := make([]model.Period, 0, len(periods))
		for _, p := range periods {
			if p.Valid() {
				valid = append(valid, p)
			}
		}
		if len(valid) > 0 {
			e.periods = valid
		}
	}
}

// WithPrecision sets the decimal places of percentile means and of every
// other mean.
func WithPrecision(percentilePlaces, valuePlaces int32) Option {
	return func(e *Emitter) {
		if percentilePlaces >= 0 {
			e.percentilePlaces = percentilePlaces
		}
		if valuePlaces >= 0 {
			e.valuePlaces = valuePlaces
		}
	}
}
