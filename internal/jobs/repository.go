package jobs

import (
	"context"

	"github.com/ErzenXz/monolith/internal/models"
)

// Repository owns the durable job records and the per-priority visibility
// lists. A job id is a member of its priority's list iff the record's status
// is queued; implementations must drop the membership in the same atomic
// step as any transition into a terminal state.
type Repository interface {
	// CreateJob persists a fresh queued record and adds it to its priority
	// list.
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	// UpdateJob applies mutate under optimistic concurrency: the record is
	// re-read, mutated, and written back only if unchanged in between. The
	// stored Version increments on success.
	UpdateJob(ctx context.Context, jobID string, mutate func(job *models.Job) error) (*models.Job, error)
	// DeleteJob removes the record and its list membership. It does not
	// touch stored artifacts.
	DeleteJob(ctx context.Context, jobID string) error
	// ListJobs snapshots all records sorted by creation time descending and
	// paginates the snapshot.
	ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error)
	Ping(ctx context.Context) error
}
