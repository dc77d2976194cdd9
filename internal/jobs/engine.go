package jobs

import (
	"context"

	"github.com/ErzenXz/monolith/internal/models"
)

// Engine turns a raw media buffer into compressed variants and thumbnails.
// Implementations must emit variants in the order of the requested
// quality/bitrate list and thumbnails in the order of the requested sizes or
// timestamps; result URLs are re-associated by position only.
type Engine interface {
	Compress(ctx context.Context, data []byte, jobType models.JobType, opts models.CompressionOptions) (*models.CompressionResult, error)
}
