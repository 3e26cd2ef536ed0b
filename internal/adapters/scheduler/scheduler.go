// Package scheduler runs periodic jobs on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/numerai-exporter/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Runner schedules jobs bound to a base context. A job that is still running
// when its next activation fires is skipped, and a panicking job is logged
// and recovered.
type Runner struct {
	cron    *cron.Cron
	logger  logger.Logger
	baseCtx context.Context
}

// New creates a runner. Jobs receive baseCtx, or context.Background when nil.
func New(log logger.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if log == nil {
		log = logger.Get().Named("scheduler")
	}
	cl := cronLogger{log: log, ctx: baseCtx}
	return &Runner{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  log,
		baseCtx: baseCtx,
	}
}

// Add registers job under a cron spec such as "@every 1m" or "*/5 * * * *".
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() { job(r.baseCtx) })
	if err != nil {
		return 0, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return id, nil
}

// Every registers job to run at a fixed interval. Intervals below one second
// are rounded up to one second.
func (r *Runner) Every(interval time.Duration, job func(context.Context)) (cron.EntryID, error) {
	return r.Add("@every "+interval.String(), job)
}

// Start begins scheduling in its own goroutine.
func (r *Runner) Start() {
	r.logger.Info(r.baseCtx, "cron started", logger.Int("entries", len(r.cron.Entries())))
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to return.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info(r.baseCtx, "cron stopped")
}

// cronLogger routes cron's logging to the structured logger.
type cronLogger struct {
	log logger.Logger
	ctx context.Context
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(l.ctx, "cron: "+msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(l.ctx, "cron: "+msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(kv []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, logger.Any("extra", kv[len(kv)-1]))
	}
	return out
}
