package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/okian/numerai-exporter/pkg/logger"
	"github.com/okian/numerai-exporter/pkg/metrics"
)

// Handler produces the observations of one model.
type Handler func(ctx context.Context, m model.Model) ([]model.Observation, error)

// Pool fans models out to at most size goroutines per Run.
type Pool struct {
	size    int
	name    string
	logger  logger.Logger
	metrics *metrics.Manager

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool. A size below one means one worker.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		size:    size,
		name:    "worker-pool",
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Size returns the worker count.
func (p *Pool) Size() int { return p.size }

// Run calls h for every model and returns the observations concatenated in
// the order of models. The first failure cancels the remaining jobs and Run
// returns every job error joined; no observations are returned in that case.
func (p *Pool) Run(ctx context.Context, models []model.Model, h Handler) ([]model.Observation, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}
	if len(models) == 0 {
		return nil, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]model.Observation, len(models))
	errs := make([]error, len(models))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(p.size, len(models)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				results[i], errs[i] = p.process(runCtx, models[i], h)
				if errs[i] != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for i := range models {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	out := make([]model.Observation, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (p *Pool) process(ctx context.Context, m model.Model, h Handler) ([]model.Observation, error) {
	start := time.Now()
	p.metrics.WorkerStarted()
	obs, err := h(ctx, m)
	p.metrics.WorkerFinished(time.Since(start), err)
	if err != nil {
		p.metrics.RecordErrorByComponent("worker", "model_failed")
		p.logger.Error(ctx, "model job failed",
			logger.String("model", m.Name),
			logger.Error(err),
		)
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	p.logger.Debug(ctx, "model job done",
		logger.String("model", m.Name),
		logger.Int("observations", len(obs)),
		logger.Duration("took", time.Since(start)),
	)
	return obs, nil
}

// Close rejects further runs. Runs in flight finish normally.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
