package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/worker"
)

type sessionSweeperStub struct {
	calls int
	now   time.Time
	count int64
	err   error
}

func (s *sessionSweeperStub) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.calls++
	s.now = now

	return s.count, s.err
}

type executionSweeperStub struct {
	calls      int
	cutoff     time.Time
	finishedAt time.Time
	count      int64
	err        error
}

func (s *executionSweeperStub) FailStale(_ context.Context, cutoff, finishedAt time.Time) (int64, error) {
	s.calls++
	s.cutoff = cutoff
	s.finishedAt = finishedAt

	return s.count, s.err
}

func newJanitor(sessions *sessionSweeperStub, executions *executionSweeperStub) *worker.Janitor {
	workerCfg := config.Worker{SweepInterval: time.Millisecond}
	cloudRunCfg := config.CloudRun{JobTimeout: time.Hour}

	return worker.NewJanitor(sessions, executions, workerCfg, cloudRunCfg).
		WithClock(func() time.Time { return testNow })
}

func TestJanitorSweeps(t *testing.T) {
	rq := require.New(t)

	sessions := &sessionSweeperStub{count: 3}
	executions := &executionSweeperStub{count: 1}
	janitor := newJanitor(sessions, executions)

	rq.NoError(janitor.Start(context.Background()))
	janitor.Stop()

	rq.GreaterOrEqual(sessions.calls, 1)
	rq.Equal(testNow, sessions.now)

	rq.GreaterOrEqual(executions.calls, 1)
	rq.Equal(testNow.Add(-2*time.Hour), executions.cutoff)
	rq.Equal(testNow, executions.finishedAt)
}

func TestJanitorRefusesDoubleStart(t *testing.T) {
	rq := require.New(t)

	janitor := newJanitor(&sessionSweeperStub{}, &executionSweeperStub{})

	rq.NoError(janitor.Start(context.Background()))
	defer janitor.Stop()

	rq.True(janitor.IsRunning())
	rq.Error(janitor.Start(context.Background()))
}

func TestJanitorStopIsIdempotent(t *testing.T) {
	rq := require.New(t)

	janitor := newJanitor(&sessionSweeperStub{}, &executionSweeperStub{})

	janitor.Stop()

	rq.NoError(janitor.Start(context.Background()))
	janitor.Stop()
	janitor.Stop()

	rq.False(janitor.IsRunning())
}

func TestJanitorSurvivesSweepFailures(t *testing.T) {
	rq := require.New(t)

	sessions := &sessionSweeperStub{err: errors.New("postgres down")}
	executions := &executionSweeperStub{err: errors.New("postgres down")}
	janitor := newJanitor(sessions, executions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := janitor.Run(ctx)
	rq.ErrorIs(err, context.Canceled)

	rq.Equal(1, sessions.calls)
	rq.Equal(1, executions.calls)
}
