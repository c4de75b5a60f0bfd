package worker

import (
	"context"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// Task is a unit of recurring work.
type Task func(ctx context.Context)

// Periodic runs a Task on a fixed interval until its context is cancelled.
//
// Runs never overlap: the next tick is scheduled only after the previous
// task returned, and ticks missed meanwhile are dropped rather than queued.
type Periodic struct {
	name         string
	interval     time.Duration
	initialDelay time.Duration
	task         Task
}

// NewPeriodic creates a Periodic that first runs task after initialDelay and
// then every interval.
func NewPeriodic(name string, interval, initialDelay time.Duration, task Task) *Periodic {
	return &Periodic{
		name:         name,
		interval:     interval,
		initialDelay: initialDelay,
		task:         task,
	}
}

// Run blocks until ctx is cancelled. Tasks get a context that keeps ctx's
// values but not its cancellation, so a tick in flight at shutdown completes
// naturally before Run returns.
func (p *Periodic) Run(ctx context.Context) {
	zlog.Logger.Info().
		Str("task", p.name).
		Dur("interval", p.interval).
		Dur("initial_delay", p.initialDelay).
		Msg("periodic task started")

	timer := time.NewTimer(p.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Str("task", p.name).Msg("periodic task stopped")
			return
		case <-timer.C:
			p.runOnce(ctx)
			timer.Reset(p.interval)
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().Str("task", p.name).Interface("panic", r).Msg("periodic task panicked")
		}
	}()

	p.task(context.WithoutCancel(ctx))
}
