package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraper"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/cloudrun"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/worker"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

type runStateStub struct {
	states []cloudrun.RunState
	err    error
	calls  int

	onCall func(call int)
}

func (s *runStateStub) ExecutionState(context.Context, string, string) (cloudrun.RunState, error) {
	s.calls++

	if s.onCall != nil {
		s.onCall(s.calls)
	}

	if s.err != nil {
		return cloudrun.RunState{}, s.err
	}

	state := s.states[0]
	if len(s.states) > 1 {
		s.states = s.states[1:]
	}

	return state, nil
}

type closerStub struct {
	id         string
	status     string
	errMsg     string
	finishedAt time.Time
	calls      int
	err        error
}

func (s *closerStub) Finish(_ context.Context, id, status, errMsg string, finishedAt time.Time) error {
	s.calls++
	s.id = id
	s.status = status
	s.errMsg = errMsg
	s.finishedAt = finishedAt

	return s.err
}

func watchTask(t *testing.T) *asynq.Task {
	t.Helper()

	payload, err := json.Marshal(scraper.WatchPayload{
		ExecutionID: "exec-row-1",
		Job:         "zoektrends-daily",
		Execution:   "zoektrends-daily-abc12",
	})
	require.NoError(t, err)

	return asynq.NewTask(scraper.TaskWatch, payload)
}

func newWatcher(cloudRun *runStateStub, executions *closerStub) *worker.Watcher {
	cfg := config.Worker{PollInterval: time.Millisecond}

	return worker.NewWatcher(cloudRun, executions, cfg).
		WithClock(func() time.Time { return testNow })
}

func TestWatchClosesSucceededRun(t *testing.T) {
	rq := require.New(t)

	cloudRun := &runStateStub{states: []cloudrun.RunState{
		{},
		{Done: true, Succeeded: true},
	}}
	executions := &closerStub{}

	err := newWatcher(cloudRun, executions).Handle(context.Background(), watchTask(t))
	rq.NoError(err)

	rq.Equal(2, cloudRun.calls)
	rq.Equal(1, executions.calls)
	rq.Equal("exec-row-1", executions.id)
	rq.Equal(entity.ExecutionSucceeded, executions.status)
	rq.Empty(executions.errMsg)
	rq.Equal(testNow, executions.finishedAt)
}

func TestWatchClosesFailedRun(t *testing.T) {
	rq := require.New(t)

	cloudRun := &runStateStub{states: []cloudrun.RunState{
		{Done: true, Succeeded: false, Detail: "task 0 exited with code 1"},
	}}
	executions := &closerStub{}

	err := newWatcher(cloudRun, executions).Handle(context.Background(), watchTask(t))
	rq.NoError(err)

	rq.Equal(entity.ExecutionFailed, executions.status)
	rq.Equal("task 0 exited with code 1", executions.errMsg)
}

func TestWatchFailedRunWithoutDetail(t *testing.T) {
	rq := require.New(t)

	cloudRun := &runStateStub{states: []cloudrun.RunState{{Done: true}}}
	executions := &closerStub{}

	err := newWatcher(cloudRun, executions).Handle(context.Background(), watchTask(t))
	rq.NoError(err)

	rq.Equal(entity.ExecutionFailed, executions.status)
	rq.Equal("execution failed", executions.errMsg)
}

func TestWatchSkipsRetryOnMalformedPayload(t *testing.T) {
	rq := require.New(t)

	watcher := newWatcher(&runStateStub{}, &closerStub{})

	err := watcher.Handle(context.Background(), asynq.NewTask(scraper.TaskWatch, []byte("{")))
	rq.ErrorIs(err, asynq.SkipRetry)
}

func TestWatchPropagatesLookupErrors(t *testing.T) {
	rq := require.New(t)

	cloudRun := &runStateStub{err: errors.New("api unreachable")}
	executions := &closerStub{}

	err := newWatcher(cloudRun, executions).Handle(context.Background(), watchTask(t))
	rq.ErrorContains(err, "api unreachable")
	rq.Zero(executions.calls)
}

func TestWatchStopsWhenContextEnds(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())

	cloudRun := &runStateStub{states: []cloudrun.RunState{{}}}
	cloudRun.onCall = func(call int) {
		if call == 2 {
			cancel()
		}
	}
	executions := &closerStub{}

	err := newWatcher(cloudRun, executions).Handle(ctx, watchTask(t))
	rq.ErrorIs(err, context.Canceled)
	rq.Zero(executions.calls)
}
