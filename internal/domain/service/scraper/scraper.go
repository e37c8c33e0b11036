// Package scraper starts scraper runs and reports on their progress. A
// trigger starts the Cloud Run execution inline so the response carries the
// execution name, then queues a watch task for the worker to follow the run
// to completion.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/xid"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/value"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/cloudrun"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	// TaskWatch is the asynq task the worker consumes to poll a started
	// execution until Cloud Run reports completion.
	TaskWatch = "scraper:watch"

	// Queue keeps the long-running watch tasks off the default queue.
	Queue = "scraper"

	StateIdle    = "idle"
	StateRunning = "running"

	historyLimit = 10
	watchRetries = 3
)

// WatchPayload is the task body exchanged with the worker.
type WatchPayload struct {
	ExecutionID string `json:"execution_id"`
	Job         string `json:"job"`
	Execution   string `json:"execution"`
}

type CloudRunClient interface {
	Trigger(ctx context.Context, jobType value.JobType) (cloudrun.Execution, error)
}

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ExecutionStore interface {
	Create(ctx context.Context, execution entity.JobExecution) error
	MarkRunning(ctx context.Context, id, job, execution string) error
	Finish(ctx context.Context, id, status, errMsg string, finishedAt time.Time) error
	Latest(ctx context.Context) (entity.JobExecution, error)
	Running(ctx context.Context) (bool, error)
	Recent(ctx context.Context, limit int) ([]entity.JobExecution, error)
}

type ScraperService struct {
	cloudRun   CloudRunClient
	tasks      TaskEnqueuer
	executions ExecutionStore
	jobTimeout time.Duration
	now        func() time.Time
}

func NewScraperService(cloudRun CloudRunClient, tasks TaskEnqueuer, executions ExecutionStore, cfg config.CloudRun) *ScraperService {
	return &ScraperService{
		cloudRun:   cloudRun,
		tasks:      tasks,
		executions: executions,
		jobTimeout: cfg.JobTimeout,
		now:        time.Now,
	}
}

// WithClock replaces the time source in tests.
func (s *ScraperService) WithClock(now func() time.Time) *ScraperService {
	s.now = now

	return s
}

// Trigger starts one scraper run. Only a single run may be in flight, a
// second trigger is refused until the first one finishes.
func (s *ScraperService) Trigger(ctx context.Context, jobType value.JobType, triggeredBy string) (entity.JobExecution, error) {
	running, err := s.executions.Running(ctx)
	if err != nil {
		return entity.JobExecution{}, fmt.Errorf("check running executions: %w", err)
	}

	if running {
		metrics.JobTriggersTotal.WithLabelValues(jobType.String(), "blocked").Inc()

		return entity.JobExecution{}, domain.NewError(errcodes.JobAlreadyRunning, "A scraper job is already running")
	}

	execution := entity.JobExecution{
		ID:          xid.New().String(),
		JobType:     jobType.String(),
		Status:      entity.ExecutionPending,
		TriggeredBy: triggeredBy,
		StartedAt:   s.now().UTC(),
	}

	if err = s.executions.Create(ctx, execution); err != nil {
		return entity.JobExecution{}, fmt.Errorf("record execution: %w", err)
	}

	run, err := s.cloudRun.Trigger(ctx, jobType)
	if err != nil {
		s.close(ctx, execution.ID, err)
		metrics.JobTriggersTotal.WithLabelValues(jobType.String(), "error").Inc()

		return entity.JobExecution{}, fmt.Errorf("trigger %s job: %w", jobType, err)
	}

	execution.Job = run.Job
	execution.Execution = run.Execution
	execution.Status = entity.ExecutionRunning

	if err = s.executions.MarkRunning(ctx, execution.ID, run.Job, run.Execution); err != nil {
		return entity.JobExecution{}, fmt.Errorf("mark execution running: %w", err)
	}

	logger(ctx).Info(
		"scraper job triggered",
		"job", run.Job,
		"execution", run.Execution,
		"triggered_by", triggeredBy,
	)
	metrics.JobTriggersTotal.WithLabelValues(jobType.String(), "started").Inc()

	s.queueWatch(ctx, execution.ID, run)

	return execution, nil
}

// Status reports the latest run and a short history for the configuration
// page poll.
func (s *ScraperService) Status(ctx context.Context) (Status, error) {
	latest, err := s.executions.Latest(ctx)
	if err != nil {
		if code, ok := domain.GetCode(err); ok && code == errcodes.NotFound {
			return Status{State: StateIdle, Message: "No scraper jobs have been triggered yet"}, nil
		}

		return Status{}, fmt.Errorf("load latest execution: %w", err)
	}

	history, err := s.executions.Recent(ctx, historyLimit)
	if err != nil {
		return Status{}, fmt.Errorf("load execution history: %w", err)
	}

	status := Status{Latest: &latest, History: history}

	switch latest.Status {
	case entity.ExecutionPending, entity.ExecutionRunning:
		status.State = StateRunning
		status.Message = fmt.Sprintf("A %s scraper job is in progress", latest.JobType)
	case entity.ExecutionFailed:
		status.State = StateIdle
		status.Message = fmt.Sprintf("Last %s run failed: %s", latest.JobType, latest.Error)
	default:
		status.State = StateIdle
		status.Message = fmt.Sprintf("Last %s run finished successfully", latest.JobType)
	}

	return status, nil
}

// Status describes the latest run for the configuration page.
type Status struct {
	State   string                `json:"status"`
	Message string                `json:"message"`
	Latest  *entity.JobExecution  `json:"latest,omitempty"`
	History []entity.JobExecution `json:"history,omitempty"`
}

// queueWatch hands the started run to the worker. The run itself is already
// out at this point, losing the watcher only costs status tracking, so
// failures are logged and left to the stale sweep.
func (s *ScraperService) queueWatch(ctx context.Context, executionID string, run cloudrun.Execution) {
	payload, err := json.Marshal(WatchPayload{
		ExecutionID: executionID,
		Job:         run.Job,
		Execution:   run.Execution,
	})
	if err != nil {
		logger(ctx).Error("failed to marshal watch payload", logx.Error(err))

		return
	}

	_, err = s.tasks.EnqueueContext(
		ctx,
		asynq.NewTask(TaskWatch, payload),
		asynq.Queue(Queue),
		asynq.MaxRetry(watchRetries),
		asynq.Timeout(s.jobTimeout+time.Minute),
	)
	if err != nil {
		logger(ctx).Error("failed to queue execution watcher", "execution", run.Execution, logx.Error(err))
	}
}

func (s *ScraperService) close(ctx context.Context, id string, cause error) {
	if err := s.executions.Finish(ctx, id, entity.ExecutionFailed, cause.Error(), s.now().UTC()); err != nil {
		logger(ctx).Error("failed to close execution", "id", id, logx.Error(err))
	}
}
