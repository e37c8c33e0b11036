package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ExecutionSweeper interface {
	FailStale(ctx context.Context, cutoff, finishedAt time.Time) (int64, error)
}

// Janitor periodically removes expired sessions and closes scraper
// executions whose watcher never reported back, e.g. after a crash.
type Janitor struct {
	sessions   SessionSweeper
	executions ExecutionSweeper

	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewJanitor(sessions SessionSweeper, executions ExecutionSweeper, worker config.Worker, cloudRun config.CloudRun) *Janitor {
	return &Janitor{
		sessions:   sessions,
		executions: executions,
		interval:   worker.SweepInterval,
		staleAfter: 2 * cloudRun.JobTimeout,
		now:        time.Now,
	}
}

func (j *Janitor) WithClock(now func() time.Time) *Janitor {
	j.now = now
	return j
}

func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		return errors.New("janitor is already running")
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	j.cancelFunc = cancel
	j.isRunning = true

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer func() {
			j.mu.Lock()
			j.isRunning = false
			j.cancelFunc = nil
			j.mu.Unlock()
		}()

		if err := j.Run(sweepCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(sweepCtx).Error("janitor stopped", logx.Error(err))
		}
	}()

	return nil
}

func (j *Janitor) Stop() {
	j.mu.Lock()

	if !j.isRunning {
		j.mu.Unlock()
		return
	}

	if j.cancelFunc != nil {
		j.cancelFunc()
	}
	j.mu.Unlock()

	j.wg.Wait()
}

func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isRunning
}

// Run sweeps once right away, then on every tick until the context ends.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.sweep(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	now := j.now().UTC()

	if count, err := j.sessions.DeleteExpired(ctx, now); err != nil {
		logger(ctx).Error("expired session sweep failed", logx.Error(err))
	} else if count > 0 {
		logger(ctx).Info("expired sessions removed", "count", count)
	}

	cutoff := now.Add(-j.staleAfter)

	if count, err := j.executions.FailStale(ctx, cutoff, now); err != nil {
		logger(ctx).Error("stale execution sweep failed", logx.Error(err))
	} else if count > 0 {
		logger(ctx).Warn("stale scraper executions closed", "count", count)
	}
}
