// Package service runs collection passes: fetch scores, aggregate them, and
// publish the resulting observations.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/numerai-exporter/internal/adapters/mq/worker"
	"github.com/okian/numerai-exporter/internal/adapters/scheduler"
	"github.com/okian/numerai-exporter/internal/domain/emit"
	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/okian/numerai-exporter/internal/domain/types"
	"github.com/okian/numerai-exporter/pkg/logger"
	"github.com/okian/numerai-exporter/pkg/metrics"
	"github.com/shopspring/decimal"
)

const defaultInterval = time.Minute

// Source provides models and their round performances.
type Source interface {
	ListModels(ctx context.Context) ([]model.Model, error)
	RoundPerformances(ctx context.Context, modelID string) ([]model.RoundRecord, error)
	LatestRound(ctx context.Context) (int, error)
}

// PriceSource provides the NMR price.
type PriceSource interface {
	NMRPriceUSD(ctx context.Context) (decimal.Decimal, error)
}

// Sink receives every observation of a successful pass.
type Sink interface {
	Publish(ctx context.Context, obs []model.Observation) error
}

// TickResult describes one collection pass.
type TickResult struct {
	ID           string
	StartedAt    time.Time
	Duration     time.Duration
	Models       int
	Observations int
	Err          error
}

// OK reports whether the pass published its observations.
func (r TickResult) OK() bool { return r.Err == nil }

// Exporter ties a Source to a Sink.
type Exporter struct {
	source  Source
	prices  PriceSource
	sink    Sink
	emitter *emit.Emitter
	pool    *worker.Pool

	concurrency int
	interval    time.Duration
	logger      logger.Logger
	metrics     *metrics.Manager

	mu          sync.RWMutex
	last        *TickResult
	lastSuccess time.Time
	runner      *scheduler.Runner
}

// New constructs an Exporter.
func New(source Source, sink Sink, opts ...Option) (*Exporter, error) {
	if source == nil {
		return nil, ErrNoSource
	}
	if sink == nil {
		return nil, ErrNoSink
	}
	x := &Exporter{
		source:      source,
		sink:        sink,
		concurrency: 1,
		interval:    defaultInterval,
		metrics:     metrics.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.logger == nil {
		x.logger = logger.Get().Named("exporter")
	}
	if x.emitter == nil {
		x.emitter = emit.New()
	}
	if x.pool == nil {
		x.pool = worker.NewPool(x.concurrency, worker.WithLogger(x.logger), worker.WithMetrics(x.metrics))
	}
	return x, nil
}

// RunOnce performs one full pass. On any failure nothing is published, so
// previously published values stay in place.
func (x *Exporter) RunOnce(ctx context.Context) TickResult {
	res := TickResult{ID: uuid.NewString(), StartedAt: time.Now()}
	x.logger.Debug(ctx, "tick started", logger.String("tick_id", res.ID))

	obs, models, err := x.collect(ctx)
	if err == nil {
		if err = x.sink.Publish(ctx, obs); err != nil {
			err = fmt.Errorf("publish: %w", err)
		}
	}
	res.Duration = time.Since(res.StartedAt)
	res.Err = err
	if err == nil {
		res.Models = models
		res.Observations = len(obs)
	}

	x.metrics.RecordTick(res.OK(), res.Duration, res.Models, res.Observations)
	x.record(res)

	if err != nil {
		x.metrics.RecordErrorByComponent("exporter", "tick_failed")
		x.logger.Error(ctx, "tick failed",
			logger.String("tick_id", res.ID),
			logger.Duration("took", res.Duration),
			logger.Error(err),
		)
		return res
	}
	x.logger.Info(ctx, "tick finished",
		logger.String("tick_id", res.ID),
		logger.Int("models", res.Models),
		logger.Int("observations", res.Observations),
		logger.Duration("took", res.Duration),
	)
	return res
}

func (x *Exporter) collect(ctx context.Context) ([]model.Observation, int, error) {
	latest, err := x.source.LatestRound(ctx)
	if err != nil {
		return nil, 0, err
	}
	obs := []model.Observation{x.emitter.LatestRound(latest)}

	if x.prices != nil {
		price, err := x.prices.NMRPriceUSD(ctx)
		if err != nil {
			return nil, 0, err
		}
		obs = append(obs, x.emitter.NMRPrice(price))
	}

	models, err := x.source.ListModels(ctx)
	if err != nil {
		return nil, 0, err
	}

	perModel, err := x.pool.Run(ctx, models, func(ctx context.Context, m model.Model) ([]model.Observation, error) {
		records, err := x.source.RoundPerformances(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		return x.emitter.Model(m.Name, records), nil
	})
	if err != nil {
		return nil, 0, err
	}
	return append(obs, perModel...), len(models), nil
}

func (x *Exporter) record(res TickResult) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.last = &res
	if res.OK() {
		x.lastSuccess = res.StartedAt
	}
}

// LastResult returns the latest pass, if any.
func (x *Exporter) LastResult() (TickResult, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.last == nil {
		return TickResult{}, false
	}
	return *x.last, true
}

// Status summarizes the latest pass for health reporting.
func (x *Exporter) Status() types.TickStatus {
	x.mu.RLock()
	defer x.mu.RUnlock()
	st := types.TickStatus{Status: types.StatusPending}
	if !x.lastSuccess.IsZero() {
		ls := x.lastSuccess
		st.LastSuccess = &ls
	}
	if x.last == nil {
		return st
	}
	r := x.last
	started := r.StartedAt
	st.TickID = r.ID
	st.StartedAt = &started
	st.DurationMS = r.Duration.Milliseconds()
	st.Models = r.Models
	st.Observations = r.Observations
	if r.OK() {
		st.Status = types.StatusOK
	} else {
		st.Status = types.StatusFailing
		st.Error = r.Err.Error()
	}
	return st
}

// Start runs a pass immediately and then one per interval until Stop or
// until ctx is done. Failed passes are logged and the schedule continues.
func (x *Exporter) Start(ctx context.Context) error {
	x.mu.Lock()
	if x.runner != nil {
		x.mu.Unlock()
		return nil
	}
	runner := scheduler.New(x.logger.Named("scheduler"), ctx)
	if _, err := runner.Every(x.interval, func(ctx context.Context) { x.RunOnce(ctx) }); err != nil {
		x.mu.Unlock()
		return err
	}
	x.runner = runner
	x.mu.Unlock()

	x.logger.Info(ctx, "exporter started",
		logger.Duration("interval", x.interval),
		logger.Int("concurrency", x.pool.Size()),
	)
	x.RunOnce(ctx)
	runner.Start()
	return nil
}

// Stop halts scheduling and waits for a running pass to return.
func (x *Exporter) Stop() {
	x.mu.Lock()
	runner := x.runner
	x.runner = nil
	x.mu.Unlock()
	if runner == nil {
		return
	}
	runner.Stop()
	x.logger.Info(context.Background(), "exporter stopped")
}
