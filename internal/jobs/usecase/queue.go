package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
	"github.com/ErzenXz/monolith/pkg/logger"
	"github.com/ErzenXz/monolith/pkg/utils"
	"github.com/google/uuid"
)

type jobQueueUC struct {
	cfg       *config.Config
	repo      jobs.Repository
	storage   jobs.Storage
	publisher jobs.Publisher
	logger    logger.Logger
}

func NewJobQueue(
	cfg *config.Config,
	repo jobs.Repository,
	storage jobs.Storage,
	publisher jobs.Publisher,
	log logger.Logger,
) jobs.UseCase {
	return &jobQueueUC{
		cfg:       cfg,
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		logger:    log,
	}
}

// Enqueue persists a queued job, makes it visible on its priority list, and
// hands the trigger to the broker. If the broker refuses the trigger the
// record and list entry are rolled back so the caller sees all-or-nothing.
func (u *jobQueueUC) Enqueue(ctx context.Context, in *jobs.EnqueueInput) (*jobs.EnqueueOutput, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("invalid job type %q", in.Type)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.JobPriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}
	if err := in.Payload.Options.Match(in.Type); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:          generateJobID(),
		Type:        in.Type,
		Payload:     in.Payload,
		Status:      models.JobStatusQueued,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
		Attempts:    0,
		MaxAttempts: u.cfg.Queue.MaxAttempts,
		Progress:    0,
	}

	if err := u.repo.CreateJob(ctx, job); err != nil {
		u.logger.Errorf("Enqueue - CreateJob error: %v", err)
		return nil, err
	}

	messageID, err := u.publisher.Publish(ctx, job.ID)
	if err != nil {
		u.logger.Errorf("Enqueue - Publish error: %v", err)
		if delErr := u.repo.DeleteJob(ctx, job.ID); delErr != nil {
			u.logger.Errorf("Enqueue - rollback of job %s failed: %v", job.ID, delErr)
		}
		return nil, fmt.Errorf("failed to queue the job: %w", err)
	}

	if _, err = u.repo.UpdateJob(ctx, job.ID, func(j *models.Job) error {
		j.TriggerMessageID = messageID
		return nil
	}); err != nil {
		// The trigger is already on its way; losing the message id is not
		// worth failing the enqueue over.
		u.logger.Warnf("Enqueue - recording trigger message id for %s failed: %v", job.ID, err)
	}

	return &jobs.EnqueueOutput{
		JobID:         job.ID,
		Status:        models.JobStatusQueued,
		EstimatedTime: utils.EstimateTime(string(job.Type)),
	}, nil
}

func (u *jobQueueUC) GetStatus(ctx context.Context, jobID string) (*models.JobProjection, error) {
	job, err := u.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job.Projection(), nil
}

func (u *jobQueueUC) UpdateStatus(ctx context.Context, jobID string, status models.JobStatus, progress *int, jobErr *string) (*models.Job, error) {
	updated, err := u.repo.UpdateJob(ctx, jobID, func(j *models.Job) error {
		j.Status = status
		if progress != nil {
			j.Progress = *progress
		}
		j.Error = jobErr
		if status.Terminal() {
			now := time.Now().UTC()
			j.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		u.logger.Errorf("UpdateStatus - UpdateJob error for %s: %v", jobID, err)
		return nil, err
	}
	return updated, nil
}

func (u *jobQueueUC) SaveResult(ctx context.Context, jobID string, result *models.JobResult) (*models.Job, error) {
	updated, err := u.repo.UpdateJob(ctx, jobID, func(j *models.Job) error {
		now := time.Now().UTC()
		j.Status = models.JobStatusCompleted
		j.Progress = 100
		j.Error = nil
		j.Results = result
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		u.logger.Errorf("SaveResult - UpdateJob error for %s: %v", jobID, err)
		return nil, err
	}
	return updated, nil
}

func (u *jobQueueUC) FailJob(ctx context.Context, jobID string, jobErr string) error {
	_, err := u.UpdateStatus(ctx, jobID, models.JobStatusFailed, nil, &jobErr)
	return err
}

// DeleteJob releases every artifact URL referenced by the job's results
// before removing the record; a failing gateway leaves the record in place
// so the delete can be retried.
func (u *jobQueueUC) DeleteJob(ctx context.Context, jobID string) error {
	job, err := u.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Results != nil {
		urls := job.Results.ArtifactURLs()
		if len(urls) > 0 {
			res, err := u.storage.DeleteMultiple(ctx, urls)
			if err != nil {
				u.logger.Errorf("DeleteJob - DeleteMultiple error for %s: %v", jobID, err)
				return fmt.Errorf("failed to delete artifacts: %w", err)
			}
			u.logger.Infof("DeleteJob - released %d artifacts for %s (%d failed)", res.Succeeded, jobID, res.Failed)
		}
	}

	return u.repo.DeleteJob(ctx, jobID)
}

func (u *jobQueueUC) ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error) {
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.repo.ListJobs(ctx, limit, offset)
}

func generateJobID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:13]
	return fmt.Sprintf("job_%d_%s", time.Now().UnixMilli(), suffix)
}
