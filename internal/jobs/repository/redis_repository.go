package repository

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	jobKeyPrefix   = "job:"
	queueKeyPrefix = "queue:"

	// casRetries bounds how often an optimistic update is replayed after
	// losing the WATCH race before giving up.
	casRetries = 5

	scanBatch = 100
)

type jobRedisRepo struct {
	redisClient *redis.Client
	// recordTTL is applied on terminal transitions; zero keeps records
	// forever.
	recordTTL time.Duration
}

func NewJobRedisRepo(redisClient *redis.Client, recordTTL time.Duration) jobs.Repository {
	return &jobRedisRepo{
		redisClient: redisClient,
		recordTTL:   recordTTL,
	}
}

func jobKey(jobID string) string {
	return jobKeyPrefix + jobID
}

func queueKey(priority models.JobPriority) string {
	return queueKeyPrefix + string(priority)
}

func (r *jobRedisRepo) CreateJob(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "jobRedisRepo.CreateJob.Marshal")
	}
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jobKey(job.ID), data, 0)
		pipe.LPush(ctx, queueKey(job.Priority), job.ID)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "jobRedisRepo.CreateJob.TxPipelined")
	}
	return nil
}

func (r *jobRedisRepo) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	data, err := r.redisClient.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, errors.Wrap(err, "jobRedisRepo.GetJob.Get")
	}
	job := &models.Job{}
	if err = json.Unmarshal(data, job); err != nil {
		return nil, errors.Wrap(err, "jobRedisRepo.GetJob.Unmarshal")
	}
	return job, nil
}

// UpdateJob re-reads the record under WATCH, applies mutate, and commits the
// write together with any priority-list removal in one transaction. Losing
// the race replays the whole read-mutate-write cycle.
func (r *jobRedisRepo) UpdateJob(ctx context.Context, jobID string, mutate func(job *models.Job) error) (*models.Job, error) {
	var updated *models.Job

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, jobKey(jobID)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return jobs.ErrJobNotFound
			}
			return errors.Wrap(err, "jobRedisRepo.UpdateJob.Get")
		}
		job := &models.Job{}
		if err = json.Unmarshal(data, job); err != nil {
			return errors.Wrap(err, "jobRedisRepo.UpdateJob.Unmarshal")
		}

		wasTerminal := job.Status.Terminal()
		if err = mutate(job); err != nil {
			return err
		}
		job.Version++

		out, err := json.Marshal(job)
		if err != nil {
			return errors.Wrap(err, "jobRedisRepo.UpdateJob.Marshal")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			ttl := time.Duration(0)
			if job.Status.Terminal() && r.recordTTL > 0 {
				ttl = r.recordTTL
			}
			pipe.Set(ctx, jobKey(jobID), out, ttl)
			// Leaving the queued state drops the visibility-list entry in
			// the same transaction as the status write.
			if !wasTerminal && job.Status != models.JobStatusQueued {
				pipe.LRem(ctx, queueKey(job.Priority), 0, jobID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = job
		return nil
	}

	for i := 0; i < casRetries; i++ {
		err := r.redisClient.Watch(ctx, txn, jobKey(jobID))
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, jobs.ErrVersionConflict
}

func (r *jobRedisRepo) DeleteJob(ctx context.Context, jobID string) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, jobKey(jobID))
		pipe.LRem(ctx, queueKey(job.Priority), 0, jobID)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "jobRedisRepo.DeleteJob.TxPipelined")
	}
	return nil
}

func (r *jobRedisRepo) ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.redisClient.Scan(ctx, cursor, jobKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, errors.Wrap(err, "jobRedisRepo.ListJobs.Scan")
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	all := make([]*models.Job, 0, len(keys))
	if len(keys) > 0 {
		values, err := r.redisClient.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, errors.Wrap(err, "jobRedisRepo.ListJobs.MGet")
		}
		for _, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue
			}
			job := &models.Job{}
			if err = json.Unmarshal([]byte(raw), job); err != nil {
				continue
			}
			all = append(all, job)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return &models.JobList{Jobs: []*models.Job{}, Total: total, Limit: limit, Offset: offset}, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &models.JobList{Jobs: all[offset:end], Total: total, Limit: limit, Offset: offset}, nil
}

func (r *jobRedisRepo) Ping(ctx context.Context) error {
	return r.redisClient.Ping(ctx).Err()
}
