package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
	"github.com/Utkarsh-Singh-byte/agro-tech/internal/infrastructure/metrics"
)

var errStorageDisabled = errors.New("blob storage backend is not configured; set BLOB_S3_* to enable uploads")

// S3Storage stores attachment objects in S3-compatible storage and issues
// public URLs for them.
type S3Storage struct {
	bucket         string
	publicEndpoint string
	endpoint       string
	client         *s3.Client
	log            zerolog.Logger
	disabled       bool
}

// NewS3Storage builds the S3 storage backend. When the bucket or credentials
// are missing the backend starts disabled and every operation fails fast.
func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket:         strings.TrimSpace(cfg.S3Bucket),
		publicEndpoint: strings.TrimSuffix(cfg.S3PublicEndpoint, "/"),
		endpoint:       strings.TrimSuffix(cfg.S3Endpoint, "/"),
		log:            logger,
	}

	accessKey := strings.TrimSpace(cfg.S3AccessKeyID)
	secretKey := strings.TrimSpace(cfg.S3SecretKey)
	if storage.bucket == "" || accessKey == "" || secretKey == "" {
		logger.Warn().Msg("BLOB_S3_BUCKET or credentials are not set; attachment uploads will be disabled until configured")
		storage.disabled = true
		return storage, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return storage, nil
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

// Upload stores the object under key.
func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		metrics.RecordBlobOperation("upload", "error")
		return err
	}
	metrics.RecordBlobOperation("upload", "success")
	return nil
}

// PublicURL returns the externally reachable URL for a stored object.
func (s *S3Storage) PublicURL(key string) string {
	base := s.publicEndpoint
	if base == "" {
		base = s.endpoint
	}
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, key)
}

// RemoveByURL deletes the object the public URL points at. Unknown URLs are
// ignored so cross-bucket references never trigger deletes.
func (s *S3Storage) RemoveByURL(ctx context.Context, url string) error {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.RecordBlobOperation("delete", "error")
		return err
	}
	metrics.RecordBlobOperation("delete", "success")
	return nil
}

func (s *S3Storage) keyFromURL(url string) (string, bool) {
	for _, base := range []string{s.publicEndpoint, s.endpoint} {
		if base == "" {
			continue
		}
		prefix := fmt.Sprintf("%s/%s/", base, s.bucket)
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix), true
		}
	}
	return "", false
}

// Health performs a simple HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
