package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func makeTestRepo(t *testing.T, recordTTL time.Duration) (jobs.Repository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewJobRedisRepo(client, recordTTL), mr
}

func testJob(id string, priority models.JobPriority) *models.Job {
	return &models.Job{
		ID:        id,
		Type:      models.JobTypeImage,
		Status:    models.JobStatusQueued,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
		Payload: models.JobPayload{
			File:    models.PayloadFile{Name: "photo.jpg", Type: "image/jpeg", Size: 3},
			Options: models.CompressionOptions{Image: &models.ImageOptions{Qualities: []int{80}}},
		},
	}
}

func TestCreateJobRecordAndQueueEntry(t *testing.T) {
	repo, mr := makeTestRepo(t, 0)
	ctx := context.Background()

	if err := repo.CreateJob(ctx, testJob("job_1", models.JobPriorityHigh)); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if !mr.Exists("job:job_1") {
		t.Error("job record missing after CreateJob")
	}
	ids, err := mr.List("queue:high")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "job_1" {
		t.Errorf("queue:high = %v; want [job_1]", ids)
	}

	got, err := repo.GetJob(ctx, "job_1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != models.JobStatusQueued || got.Priority != models.JobPriorityHigh {
		t.Errorf("got status=%s priority=%s; want queued/high", got.Status, got.Priority)
	}
}

func TestGetJobNotFound(t *testing.T) {
	repo, _ := makeTestRepo(t, 0)

	_, err := repo.GetJob(context.Background(), "job_missing")
	if err != jobs.ErrJobNotFound {
		t.Fatalf("GetJob = %v; want ErrJobNotFound", err)
	}
}

func TestUpdateJobLeavesQueueOnStatusChange(t *testing.T) {
	repo, mr := makeTestRepo(t, 0)
	ctx := context.Background()

	if err := repo.CreateJob(ctx, testJob("job_2", models.JobPriorityMedium)); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	updated, err := repo.UpdateJob(ctx, "job_2", func(job *models.Job) error {
		job.Status = models.JobStatusProcessing
		job.Progress = 10
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if updated.Version != 1 {
		t.Errorf("Version = %d; want 1", updated.Version)
	}

	ids, _ := mr.List("queue:medium")
	if len(ids) != 0 {
		t.Errorf("queue:medium still holds %v after leaving queued", ids)
	}

	got, err := repo.GetJob(ctx, "job_2")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != models.JobStatusProcessing || got.Progress != 10 {
		t.Errorf("got status=%s progress=%d; want processing/10", got.Status, got.Progress)
	}
}

func TestUpdateJobTerminalAppliesRecordTTL(t *testing.T) {
	repo, mr := makeTestRepo(t, time.Hour)
	ctx := context.Background()

	if err := repo.CreateJob(ctx, testJob("job_3", models.JobPriorityLow)); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if _, err := repo.UpdateJob(ctx, "job_3", func(job *models.Job) error {
		job.Status = models.JobStatusProcessing
		return nil
	}); err != nil {
		t.Fatalf("UpdateJob to processing: %v", err)
	}
	if ttl := mr.TTL("job:job_3"); ttl != 0 {
		t.Errorf("non-terminal record has TTL %v; want none", ttl)
	}

	if _, err := repo.UpdateJob(ctx, "job_3", func(job *models.Job) error {
		job.Status = models.JobStatusCompleted
		job.Progress = 100
		return nil
	}); err != nil {
		t.Fatalf("UpdateJob to completed: %v", err)
	}
	if ttl := mr.TTL("job:job_3"); ttl != time.Hour {
		t.Errorf("terminal record TTL = %v; want 1h", ttl)
	}
}

func TestUpdateJobMutateErrorPropagates(t *testing.T) {
	repo, _ := makeTestRepo(t, 0)
	ctx := context.Background()

	if err := repo.CreateJob(ctx, testJob("job_4", models.JobPriorityMedium)); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	_, err := repo.UpdateJob(ctx, "job_4", func(job *models.Job) error {
		return jobs.ErrAlreadyProcessed
	})
	if err != jobs.ErrAlreadyProcessed {
		t.Fatalf("UpdateJob = %v; want ErrAlreadyProcessed", err)
	}

	got, _ := repo.GetJob(ctx, "job_4")
	if got.Version != 0 {
		t.Errorf("Version = %d after failed mutate; want 0", got.Version)
	}
}

func TestDeleteJobRemovesRecordAndQueueEntry(t *testing.T) {
	repo, mr := makeTestRepo(t, 0)
	ctx := context.Background()

	if err := repo.CreateJob(ctx, testJob("job_5", models.JobPriorityHigh)); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := repo.DeleteJob(ctx, "job_5"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if mr.Exists("job:job_5") {
		t.Error("record still present after DeleteJob")
	}
	ids, _ := mr.List("queue:high")
	if len(ids) != 0 {
		t.Errorf("queue:high = %v after DeleteJob; want empty", ids)
	}

	if err := repo.DeleteJob(ctx, "job_5"); err != jobs.ErrJobNotFound {
		t.Errorf("second DeleteJob = %v; want ErrJobNotFound", err)
	}
}

func TestListJobsOrderingAndPagination(t *testing.T) {
	repo, _ := makeTestRepo(t, 0)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"job_a", "job_b", "job_c"} {
		job := testJob(id, models.JobPriorityMedium)
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob %s: %v", id, err)
		}
	}

	list, err := repo.ListJobs(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if list.Total != 3 {
		t.Errorf("Total = %d; want 3", list.Total)
	}
	if len(list.Jobs) != 2 || list.Jobs[0].ID != "job_c" || list.Jobs[1].ID != "job_b" {
		t.Errorf("page 1 = %v; want [job_c job_b] newest first", jobIDs(list.Jobs))
	}

	list, err = repo.ListJobs(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListJobs offset 2: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != "job_a" {
		t.Errorf("page 2 = %v; want [job_a]", jobIDs(list.Jobs))
	}

	list, err = repo.ListJobs(ctx, 2, 10)
	if err != nil {
		t.Fatalf("ListJobs past end: %v", err)
	}
	if len(list.Jobs) != 0 {
		t.Errorf("past-end page = %v; want empty", jobIDs(list.Jobs))
	}
}

func jobIDs(jobs []*models.Job) []string {
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}
