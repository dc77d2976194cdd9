package jobs

import (
	"regexp"
	"testing"
)

func TestArtifactKeyShape(t *testing.T) {
	key := ArtifactKey("image", "job_123_abc", "compressed-80", "webp")

	pattern := regexp.MustCompile(`^image/job_123_abc/compressed-80-\d+-[0-9a-f]{8}\.webp$`)
	if !pattern.MatchString(key) {
		t.Errorf("key = %q; want {type}/{jobId}/{prefix}-{timestamp}-{suffix}.{ext}", key)
	}

	if ArtifactKey("image", "job_123_abc", "original", "jpg") == key {
		t.Error("two keys collided")
	}
}
