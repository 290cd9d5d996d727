// Package storage retrieves raw dataset bytes given a storage locator.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"aihub/internal/config"
	"aihub/internal/domain"
)

var _ domain.ObjectFetcher = (*S3Fetcher)(nil)

// S3Fetcher reads dataset objects from S3-compatible storage. It uses the
// AWS SDK v2 with path-style addressing, which Hetzner-style endpoints
// require.
type S3Fetcher struct {
	client *s3.Client
	bucket string
}

// NewS3Fetcher creates a fetcher from the S3 section of the config.
func NewS3Fetcher(cfg *config.Config) (*S3Fetcher, error) {
	if !cfg.HasS3Config() {
		return nil, fmt.Errorf("S3 config is incomplete")
	}

	endpoint := fmt.Sprintf("https://%s", *cfg.S3Endpoint)

	client := s3.New(s3.Options{
		Region: *cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			*cfg.S3KeyID, *cfg.S3Secret, "",
		),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})

	return &S3Fetcher{client: client, bucket: *cfg.S3Bucket}, nil
}

// Fetch retrieves the object stored under key. The caller owns the reader.
func (f *S3Fetcher) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	return out.Body, nil
}
