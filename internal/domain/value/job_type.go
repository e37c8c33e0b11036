package value

import "fmt"

type JobType string

const (
	JobTypeDaily      JobType = "daily"
	JobTypeExhaustive JobType = "exhaustive"
)

// ParseJobType accepts daily or exhaustive. The empty string means the
// run-job form omitted the field and defaults to exhaustive.
func ParseJobType(raw string) (JobType, error) {
	switch raw {
	case "", string(JobTypeExhaustive):
		return JobTypeExhaustive, nil
	case string(JobTypeDaily):
		return JobTypeDaily, nil
	default:
		return "", fmt.Errorf("unknown job type %q", raw)
	}
}

func (t JobType) String() string {
	return string(t)
}
