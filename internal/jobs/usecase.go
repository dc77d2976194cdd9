package jobs

import (
	"context"

	"github.com/ErzenXz/monolith/internal/models"
)

type EnqueueInput struct {
	Type     models.JobType
	Payload  models.JobPayload
	Priority models.JobPriority
}

type EnqueueOutput struct {
	JobID         string
	Status        models.JobStatus
	EstimatedTime string
}

// UseCase is the job lifecycle service: enqueue/poll/mutate/delete plus the
// processing pipeline invoked by the broker trigger.
type UseCase interface {
	Enqueue(ctx context.Context, in *EnqueueInput) (*EnqueueOutput, error)
	GetStatus(ctx context.Context, jobID string) (*models.JobProjection, error)
	UpdateStatus(ctx context.Context, jobID string, status models.JobStatus, progress *int, jobErr *string) (*models.Job, error)
	SaveResult(ctx context.Context, jobID string, result *models.JobResult) (*models.Job, error)
	FailJob(ctx context.Context, jobID string, jobErr string) error
	// DeleteJob releases every artifact URL referenced by the job's results
	// and then removes the record.
	DeleteJob(ctx context.Context, jobID string) error
	ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error)
}

// Processor drives an already-queued job to a terminal state. Safe to invoke
// more than once per id; only the first invocation that observes status
// queued runs the pipeline.
type Processor interface {
	Process(ctx context.Context, jobID string) error
}
