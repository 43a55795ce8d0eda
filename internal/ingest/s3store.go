package ingest

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// attachmentCacheControl pins uploaded media for a year; keys are unique so
// objects never change in place.
const attachmentCacheControl = "max-age=31536000"

// ObjectStore persists attachment bodies and returns their public URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error)
}

// S3Store is the production ObjectStore over an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store resolves the ambient credential session and returns a store
// for the given bucket. Missing credentials fail here, before any upload
// begins.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, errors.Wrap(err, "Unable to get AWS credentials")
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Put implements ObjectStore.Put.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(attachmentCacheControl),
		Metadata:     metadata,
	})
	if err != nil {
		return "", errors.Wrapf(err, "put s3://%s/%s", s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// contentTypeFor infers a content type from the file extension, falling
// back to octet-stream for extensionless files.
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	switch ext {
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
