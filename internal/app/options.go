package service

import (
	"time"

	"github.com/okian/numerai-exporter/internal/adapters/mq/worker"
	"github.com/okian/numerai-exporter/internal/domain/emit"
	"github.com/okian/numerai-exporter/pkg/logger"
	"github.com/okian/numerai-exporter/pkg/metrics"
)

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithEmitter sets the observation emitter.
func WithEmitter(e *emit.Emitter) Option {
	return func(x *Exporter) {
		if e != nil {
			x.emitter = e
		}
	}
}

// WithPool sets the worker pool used to process models.
func WithPool(p *worker.Pool) Option {
	return func(x *Exporter) {
		if p != nil {
			x.pool = p
		}
	}
}

// WithConcurrency sets how many models are processed in parallel.
// Ignored when WithPool is given.
func WithConcurrency(n int) Option {
	return func(x *Exporter) {
		if n > 0 {
			x.concurrency = n
		}
	}
}

// WithPriceSource enables the NMR price observation.
func WithPriceSource(p PriceSource) Option {
	return func(x *Exporter) {
		x.prices = p
	}
}

// WithInterval sets the time between scheduled passes.
func WithInterval(d time.Duration) Option {
	return func(x *Exporter) {
		if d > 0 {
			x.interval = d
		}
	}
}

// WithLogger sets a custom logger for the exporter.
func WithLogger(l logger.Logger) Option {
	return func(x *Exporter) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithMetrics records self-metrics on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(x *Exporter) {
		if m != nil {
			x.metrics = m
		}
	}
}
