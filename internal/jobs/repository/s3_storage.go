package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/jobs"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type s3Storage struct {
	client *s3.Client
	bucket string
	// baseURL is the public prefix artifacts are served from, without a
	// trailing slash.
	baseURL string
}

func NewS3Storage(client *s3.Client, cfg *config.Config) jobs.Storage {
	base := strings.TrimRight(cfg.S3.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.S3.Endpoint, "/"), cfg.S3.Bucket)
	}
	return &s3Storage{
		client:  client,
		bucket:  cfg.S3.Bucket,
		baseURL: base,
	}
}

func (s *s3Storage) Upload(ctx context.Context, data []byte, key, contentType string) (*jobs.UploadResult, error) {
	size := int64(len(data))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   &contentType,
		ContentLength: &size,
	})
	if err != nil {
		return nil, errors.Wrap(err, "s3Storage.Upload.PutObject")
	}
	return &jobs.UploadResult{
		URL:  s.baseURL + "/" + key,
		Size: size,
	}, nil
}

func (s *s3Storage) DeleteMultiple(ctx context.Context, urls []string) (*jobs.DeleteResult, error) {
	res := &jobs.DeleteResult{}
	for _, url := range urls {
		key, ok := s.keyFromURL(url)
		if !ok {
			res.Failed++
			continue
		}
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		})
		if err != nil {
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

func (s *s3Storage) keyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, s.baseURL+"/"), true
}

func (s *s3Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	return err
}
