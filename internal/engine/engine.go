package engine

import (
	"context"
	"fmt"

	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/ErzenXz/monolith/internal/models"
	"github.com/ErzenXz/monolith/pkg/logger"
)

// MediaEngine fans compression out to the per-kind implementations. Variant
// and thumbnail ordering always follows the requested option lists.
type MediaEngine struct {
	cfg    *config.Config
	logger logger.Logger
}

var _ jobs.Engine = (*MediaEngine)(nil)

func NewMediaEngine(cfg *config.Config, log logger.Logger) *MediaEngine {
	return &MediaEngine{cfg: cfg, logger: log}
}

func (e *MediaEngine) Compress(ctx context.Context, data []byte, jobType models.JobType, opts models.CompressionOptions) (*models.CompressionResult, error) {
	switch jobType {
	case models.JobTypeImage:
		if opts.Image == nil {
			return nil, fmt.Errorf("image job without image options")
		}
		return e.compressImage(ctx, data, opts.Image)
	case models.JobTypeVideo:
		if opts.Video == nil {
			return nil, fmt.Errorf("video job without video options")
		}
		return e.compressVideo(ctx, data, opts.Video)
	case models.JobTypeAudio:
		if opts.Audio == nil {
			return nil, fmt.Errorf("audio job without audio options")
		}
		return e.compressAudio(ctx, data, opts.Audio)
	default:
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
}
