package http

import (
	"telcoclean/internal/operations"
)

// RunQueue accepts asynchronous pipeline runs.
type RunQueue interface {
	Enqueue(job *operations.Job) error
	GetJob(id string) (*operations.Job, error)
	ListJobs(filter operations.JobFilter) ([]*operations.Job, error)
	GetQueueStats() map[string]interface{}
}
