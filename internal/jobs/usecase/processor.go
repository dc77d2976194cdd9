package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
	"github.com/ErzenXz/monolith/pkg/logger"
	"github.com/ErzenXz/monolith/pkg/utils"
)

const maxParallelUploads = 4

// Progress checkpoints of the processing pipeline.
const (
	progressFetching     = 10
	progressTransforming = 30
	progressUploading    = 60
	progressFinalizing   = 90
)

type jobProcessor struct {
	cfg     *config.Config
	queue   jobs.UseCase
	repo    jobs.Repository
	engine  jobs.Engine
	storage jobs.Storage
	logger  logger.Logger
}

func NewJobProcessor(
	cfg *config.Config,
	queue jobs.UseCase,
	repo jobs.Repository,
	engine jobs.Engine,
	storage jobs.Storage,
	log logger.Logger,
) jobs.Processor {
	return &jobProcessor{
		cfg:     cfg,
		queue:   queue,
		repo:    repo,
		engine:  engine,
		storage: storage,
		logger:  log,
	}
}

// Process drives one queued job to a terminal state. The status guard runs
// on a fresh read so duplicate or late triggers fall out as no-ops; every
// pipeline failure is terminal for the job and reported only through the
// record, never to the broker's original caller.
func (p *jobProcessor) Process(ctx context.Context, jobID string) error {
	if ok, usage := utils.CheckCPUUsage(p.cfg.Worker.MaxCPUUsage); !ok {
		p.logger.Warnf("Process - refusing job %s, CPU usage %.1f%%", jobID, usage)
		return jobs.ErrServerBusy
	}

	job, err := p.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusQueued {
		return jobs.ErrAlreadyProcessed
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Queue.JobDeadline())
	defer cancel()

	if err := p.run(ctx, job); err != nil {
		p.logger.Errorf("Process - job %s failed: %v", jobID, err)
		p.markFailed(jobID, err)
		return err
	}
	return nil
}

// markFailed records the terminal failure on a detached context so a job
// that blew its deadline can still report why.
func (p *jobProcessor) markFailed(jobID string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.queue.FailJob(ctx, jobID, cause.Error()); err != nil {
		p.logger.Errorf("Process - FailJob error for %s: %v", jobID, err)
	}
}

func (p *jobProcessor) run(ctx context.Context, job *models.Job) error {
	progress := progressFetching
	if _, err := p.queue.UpdateStatus(ctx, job.ID, models.JobStatusProcessing, &progress, nil); err != nil {
		return err
	}

	data := job.Payload.File.Data
	if len(data) == 0 {
		return fmt.Errorf("job payload carries an empty buffer")
	}
	if err := job.Payload.Options.Match(job.Type); err != nil {
		return err
	}

	progress = progressTransforming
	if _, err := p.queue.UpdateStatus(ctx, job.ID, models.JobStatusProcessing, &progress, nil); err != nil {
		return err
	}

	res, err := p.engine.Compress(ctx, data, job.Type, job.Payload.Options)
	if err != nil {
		return fmt.Errorf("%s compression failed: %w", job.Type, err)
	}

	progress = progressUploading
	if _, err := p.queue.UpdateStatus(ctx, job.ID, models.JobStatusProcessing, &progress, nil); err != nil {
		return err
	}

	uploads, err := p.uploadArtifacts(ctx, job, data, res)
	if err != nil {
		return err
	}

	progress = progressFinalizing
	if _, err := p.queue.UpdateStatus(ctx, job.ID, models.JobStatusProcessing, &progress, nil); err != nil {
		return err
	}

	result := assembleResult(data, res, uploads)
	if _, err := p.queue.SaveResult(ctx, job.ID, result); err != nil {
		return err
	}
	return nil
}

type uploadSpec struct {
	data        []byte
	key         string
	contentType string
}

// uploadArtifacts pushes the original, every variant, and every thumbnail
// concurrently while keeping results in request order: slot i of the output
// always belongs to spec i, never to completion order. On any failure the
// artifacts that did land are deleted again before the error surfaces.
func (p *jobProcessor) uploadArtifacts(ctx context.Context, job *models.Job, original []byte, res *models.CompressionResult) ([]*jobs.UploadResult, error) {
	mediaType := string(job.Type)
	ext := job.Payload.Extension

	specs := make([]uploadSpec, 0, 1+len(res.Compressed)+len(res.Thumbnails))
	specs = append(specs, uploadSpec{
		data:        original,
		key:         jobs.ArtifactKey(mediaType, job.ID, "original", ext),
		contentType: utils.ContentTypeFromExtension(ext),
	})
	for _, c := range res.Compressed {
		specs = append(specs, uploadSpec{
			data:        c.Data,
			key:         jobs.ArtifactKey(mediaType, job.ID, "compressed-"+keySafe(c.Label), c.Format),
			contentType: utils.ContentTypeFromExtension(c.Format),
		})
	}
	for _, t := range res.Thumbnails {
		specs = append(specs, uploadSpec{
			data:        t.Data,
			key:         jobs.ArtifactKey(mediaType, job.ID, "thumbnail-"+keySafe(t.Label), t.Format),
			contentType: utils.ContentTypeFromExtension(t.Format),
		})
	}

	slots := make([]*jobs.UploadResult, len(specs))
	sem := make(chan struct{}, maxParallelUploads)
	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	for i, spec := range specs {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, s uploadSpec) {
			defer func() {
				<-sem
				wg.Done()
			}()
			out, err := p.storage.Upload(ctx, s.data, s.key, s.contentType)
			if err != nil {
				select {
				case errChan <- fmt.Errorf("upload of %s failed: %w", s.key, err):
				default:
				}
				return
			}
			slots[idx] = out
		}(i, spec)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		p.compensate(job.ID, slots)
		return nil, err
	}
	return slots, nil
}

// compensate deletes artifacts already committed before a later upload
// failed, so a failed job leaves no orphans in storage.
func (p *jobProcessor) compensate(jobID string, slots []*jobs.UploadResult) {
	urls := make([]string, 0, len(slots))
	for _, s := range slots {
		if s != nil && s.URL != "" {
			urls = append(urls, s.URL)
		}
	}
	if len(urls) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res, err := p.storage.DeleteMultiple(ctx, urls)
	if err != nil {
		p.logger.Errorf("Process - compensating delete for %s failed: %v", jobID, err)
		return
	}
	p.logger.Infof("Process - compensating delete for %s removed %d artifacts (%d failed)", jobID, res.Succeeded, res.Failed)
}

func assembleResult(original []byte, res *models.CompressionResult, uploads []*jobs.UploadResult) *models.JobResult {
	ratio := "0%"
	if len(res.Compressed) > 0 {
		ratio = utils.CalculateCompressionRatio(int64(len(original)), res.Compressed[0].Size)
	}

	result := &models.JobResult{
		Original: models.OriginalArtifact{
			URL:      uploads[0].URL,
			Size:     int64(len(original)),
			Duration: res.Original.Duration,
		},
		Compressed:       make([]models.VariantArtifact, len(res.Compressed)),
		Thumbnails:       make([]models.ThumbnailArtifact, len(res.Thumbnails)),
		CompressionRatio: ratio,
	}

	for i, c := range res.Compressed {
		result.Compressed[i] = models.VariantArtifact{
			Label:      c.Label,
			URL:        uploads[1+i].URL,
			Size:       c.Size,
			Format:     c.Format,
			Dimensions: c.Dimensions,
			SampleRate: c.SampleRate,
		}
	}
	offset := 1 + len(res.Compressed)
	for i, t := range res.Thumbnails {
		result.Thumbnails[i] = models.ThumbnailArtifact{
			Label:      t.Label,
			URL:        uploads[offset+i].URL,
			Size:       t.Size,
			Dimensions: t.Dimensions,
			Timestamp:  t.Timestamp,
		}
	}
	return result
}

func keySafe(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, label)
}
