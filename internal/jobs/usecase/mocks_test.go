package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                                 {}
func (nopLogger) Debug(args ...interface{})                   {}
func (nopLogger) Debugf(template string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})                    {}
func (nopLogger) Infof(template string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})                    {}
func (nopLogger) Warnf(template string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})                   {}
func (nopLogger) Errorf(template string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})                   {}
func (nopLogger) Fatalf(template string, args ...interface{}) {}

// mockRepo is an in-memory Repository with the same record/list invariant
// the Redis implementation keeps.
type mockRepo struct {
	mu     sync.Mutex
	jobs   map[string]*models.Job
	queues map[models.JobPriority][]string

	createErr error
	deleteErr error
	deleted   []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		jobs:   make(map[string]*models.Job),
		queues: make(map[models.JobPriority][]string),
	}
}

func (m *mockRepo) CreateJob(ctx context.Context, job *models.Job) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	m.jobs[job.ID] = &clone
	m.queues[job.Priority] = append(m.queues[job.Priority], job.ID)
	return nil
}

func (m *mockRepo) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (m *mockRepo) UpdateJob(ctx context.Context, jobID string, mutate func(job *models.Job) error) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	clone := *job
	if err := mutate(&clone); err != nil {
		return nil, err
	}
	clone.Version++
	if job.Status == models.JobStatusQueued && clone.Status != models.JobStatusQueued {
		m.removeFromQueue(jobID, job.Priority)
	}
	m.jobs[jobID] = &clone
	out := clone
	return &out, nil
}

func (m *mockRepo) DeleteJob(ctx context.Context, jobID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return jobs.ErrJobNotFound
	}
	delete(m.jobs, jobID)
	m.removeFromQueue(jobID, job.Priority)
	m.deleted = append(m.deleted, jobID)
	return nil
}

func (m *mockRepo) removeFromQueue(jobID string, priority models.JobPriority) {
	q := m.queues[priority]
	for i, id := range q {
		if id == jobID {
			m.queues[priority] = append(q[:i], q[i+1:]...)
			return
		}
	}
}

func (m *mockRepo) ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		clone := *j
		all = append(all, &clone)
	}
	return &models.JobList{Jobs: all, Total: len(all), Limit: limit, Offset: offset}, nil
}

func (m *mockRepo) Ping(ctx context.Context) error { return nil }

func (m *mockRepo) queueLen(priority models.JobPriority) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[priority])
}

// mockStorage records uploads in call order and can fail the nth upload.
type mockStorage struct {
	mu        sync.Mutex
	uploads   []string
	deleted   []string
	failAfter int
	uploadErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{failAfter: -1}
}

func (m *mockStorage) Upload(ctx context.Context, data []byte, key, contentType string) (*jobs.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil && m.failAfter >= 0 && len(m.uploads) >= m.failAfter {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, key)
	return &jobs.UploadResult{URL: "https://cdn.test/" + key, Size: int64(len(data))}, nil
}

func (m *mockStorage) DeleteMultiple(ctx context.Context, urls []string) (*jobs.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, urls...)
	return &jobs.DeleteResult{Succeeded: len(urls)}, nil
}

func (m *mockStorage) Ping(ctx context.Context) error { return nil }

type mockPublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, jobID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, jobID)
	return fmt.Sprintf("msg-%d", len(m.published)), nil
}

// mockEngine fabricates one variant per requested quality/bitrate so tests
// can check ordering and ratio math without real media.
type mockEngine struct {
	err error
}

func (m *mockEngine) Compress(ctx context.Context, data []byte, jobType models.JobType, opts models.CompressionOptions) (*models.CompressionResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	res := &models.CompressionResult{
		Original: models.OriginalMetadata{Format: "jpeg", Size: int64(len(data))},
	}
	if opts.Image != nil {
		for _, q := range opts.Image.Qualities {
			size := int64(len(data)) * int64(q) / 100
			res.Compressed = append(res.Compressed, models.CompressedFile{
				Label:  fmt.Sprintf("%d%%", q),
				Data:   make([]byte, size),
				Size:   size,
				Format: "webp",
			})
		}
		for _, s := range opts.Image.Thumbnails {
			res.Thumbnails = append(res.Thumbnails, models.Thumbnail{
				Label:  fmt.Sprintf("%dpx", s),
				Data:   []byte{1},
				Size:   1,
				Format: "webp",
			})
		}
	}
	return res, nil
}
