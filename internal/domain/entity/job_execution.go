package entity

import "time"

const (
	ExecutionPending   = "pending"
	ExecutionRunning   = "running"
	ExecutionSucceeded = "succeeded"
	ExecutionFailed    = "failed"
)

// JobExecution records one scraper trigger and its outcome. Job is the
// Cloud Run job name, JobType the daily/exhaustive flavor behind it.
type JobExecution struct {
	ID          string     `json:"id" db:"id"`
	JobType     string     `json:"job_type" db:"job_type"`
	Job         string     `json:"job" db:"job"`
	Execution   string     `json:"execution" db:"execution"`
	Status      string     `json:"status" db:"status"`
	TriggeredBy string     `json:"triggered_by" db:"triggered_by"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Error       string     `json:"error,omitempty" db:"error"`
}
