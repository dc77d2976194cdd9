package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UploadResult struct {
	URL  string
	Size int64
}

type DeleteResult struct {
	Succeeded int
	Failed    int
}

// Storage is the blob gateway artifacts are uploaded to and released from.
type Storage interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error)
	DeleteMultiple(ctx context.Context, urls []string) (*DeleteResult, error)
	Ping(ctx context.Context) error
}

// ArtifactKey builds the object key for one artifact:
// {mediaType}/{jobId}/{prefix}-{timestamp}-{randomSuffix}.{ext}. The
// timestamp plus random suffix keeps keys collision-free within a job's
// artifact set.
func ArtifactKey(mediaType, jobID, prefix, extension string) string {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s/%s/%s-%d-%s.%s", mediaType, jobID, prefix, time.Now().UnixMilli(), suffix, extension)
}
