// Package worker holds the background side of the dashboard: the asynq
// handler that follows triggered Cloud Run executions to completion and
// the janitor that sweeps up rows nobody closed.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraper"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/cloudrun"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/application/modules"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type RunStateReader interface {
	ExecutionState(ctx context.Context, job, execution string) (cloudrun.RunState, error)
}

type ExecutionCloser interface {
	Finish(ctx context.Context, id, status, errMsg string, finishedAt time.Time) error
}

// Watcher polls a started Cloud Run execution until it reports a
// completion time, then closes the matching job_executions row.
type Watcher struct {
	cloudRun   RunStateReader
	executions ExecutionCloser

	pollInterval time.Duration
	now          func() time.Time
}

func NewWatcher(cloudRun RunStateReader, executions ExecutionCloser, cfg config.Worker) *Watcher {
	return &Watcher{
		cloudRun:     cloudRun,
		executions:   executions,
		pollInterval: cfg.PollInterval,
		now:          time.Now,
	}
}

func (w *Watcher) WithClock(now func() time.Time) *Watcher {
	w.now = now
	return w
}

func (w *Watcher) Handler() modules.AsynqHandler {
	return modules.AsynqHandler{
		Pattern: scraper.TaskWatch,
		Handle:  w.Handle,
	}
}

// Handle runs until the execution completes or the task context ends.
// Transient lookup errors bubble up so asynq retries the watch, a retry
// simply resumes polling. A run that never completes is left to the
// janitor's stale sweep.
func (w *Watcher) Handle(ctx context.Context, task *asynq.Task) error {
	var payload scraper.WatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal: %v: %w", err, asynq.SkipRetry)
	}

	logger(ctx).Info("watching scraper execution", "job", payload.Job, "execution", payload.Execution)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		state, err := w.cloudRun.ExecutionState(ctx, payload.Job, payload.Execution)
		if err != nil {
			return fmt.Errorf("cloudRun.ExecutionState: %w", err)
		}

		if state.Done {
			return w.close(ctx, payload, state)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) close(ctx context.Context, payload scraper.WatchPayload, state cloudrun.RunState) error {
	status := entity.ExecutionSucceeded
	errMsg := ""

	if !state.Succeeded {
		status = entity.ExecutionFailed

		errMsg = state.Detail
		if errMsg == "" {
			errMsg = "execution failed"
		}
	}

	if err := w.executions.Finish(ctx, payload.ExecutionID, status, errMsg, w.now().UTC()); err != nil {
		return fmt.Errorf("executions.Finish: %w", err)
	}

	logger(ctx).Info("scraper execution finished", "job", payload.Job, "execution", payload.Execution, "status", status)

	return nil
}
