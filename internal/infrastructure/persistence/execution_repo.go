package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

type ExecutionRepository struct {
	db *sqlx.DB
}

func NewExecutionRepository(db *sqlx.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create records a new trigger in pending state.
func (r *ExecutionRepository) Create(ctx context.Context, execution entity.JobExecution) error {
	query := `
		INSERT INTO job_executions (id, job_type, job, execution, status, triggered_by, started_at, finished_at, error)
		VALUES (:id, :job_type, :job, :execution, :status, :triggered_by, :started_at, :finished_at, :error)`

	if _, err := r.db.NamedExecContext(ctx, query, execution); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert execution")
	}

	return nil
}

// MarkRunning stores the Cloud Run job and execution names once the job is
// started.
func (r *ExecutionRepository) MarkRunning(ctx context.Context, id, job, execution string) error {
	query := `
		UPDATE job_executions
		SET status = $1, job = $2, execution = $3
		WHERE id = $4`

	return r.execUpdate(ctx, query, entity.ExecutionRunning, job, execution, id)
}

// Finish closes an execution with its terminal status.
func (r *ExecutionRepository) Finish(ctx context.Context, id, status, errMsg string, finishedAt time.Time) error {
	query := `
		UPDATE job_executions
		SET status = $1, error = $2, finished_at = $3
		WHERE id = $4`

	return r.execUpdate(ctx, query, status, errMsg, finishedAt, id)
}

// Latest returns the most recently started execution.
func (r *ExecutionRepository) Latest(ctx context.Context) (entity.JobExecution, error) {
	query := `
		SELECT id, job_type, job, execution, status, triggered_by, started_at, finished_at, error
		FROM job_executions
		ORDER BY started_at DESC
		LIMIT 1`

	var execution entity.JobExecution
	if err := r.db.GetContext(ctx, &execution, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.JobExecution{}, domain.NewError(errcodes.NotFound, "no executions recorded")
		}

		return entity.JobExecution{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get execution")
	}

	return execution, nil
}

// Running reports whether any execution is still pending or running. The
// trigger endpoint refuses to stack jobs.
func (r *ExecutionRepository) Running(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM job_executions WHERE status IN ($1, $2))`

	var running bool
	if err := r.db.GetContext(ctx, &running, query, entity.ExecutionPending, entity.ExecutionRunning); err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to check running executions")
	}

	return running, nil
}

// FailStale closes pending and running executions that started before the
// cutoff. The worker normally closes every row it opens, this covers runs
// orphaned by a crash or restart.
func (r *ExecutionRepository) FailStale(ctx context.Context, cutoff, finishedAt time.Time) (int64, error) {
	query := `
		UPDATE job_executions
		SET status = $1, error = 'no completion reported', finished_at = $2
		WHERE status IN ($3, $4) AND started_at < $5`

	res, err := r.db.ExecContext(ctx, query, entity.ExecutionFailed, finishedAt, entity.ExecutionPending, entity.ExecutionRunning, cutoff)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to close stale executions")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	return rows, nil
}

// Recent lists the latest executions, newest first.
func (r *ExecutionRepository) Recent(ctx context.Context, limit int) ([]entity.JobExecution, error) {
	query := `
		SELECT id, job_type, job, execution, status, triggered_by, started_at, finished_at, error
		FROM job_executions
		ORDER BY started_at DESC
		LIMIT $1`

	var executions []entity.JobExecution
	if err := r.db.SelectContext(ctx, &executions, query, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list executions")
	}

	return executions, nil
}

func (r *ExecutionRepository) execUpdate(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to execute update")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.NotFound, "execution not found")
	}

	return nil
}
