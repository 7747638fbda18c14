package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3ClientInterface defines the S3 client methods we use
type S3ClientInterface interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Storage implements Backend on an S3 bucket
type S3Storage struct {
	client  S3ClientInterface
	bucket  string
	prefix  string
	region  string
	ensured bool
}

// NewS3Storage creates a backend for s3://<bucket>/<prefix> using the default AWS credential chain
func NewS3Storage(ctx context.Context, bucket, prefix, region, profile string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket, prefix, cfg.Region), nil
}

// NewS3StorageWithClient creates a backend around an existing client
func NewS3StorageWithClient(client S3ClientInterface, bucket, prefix, region string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		prefix: prefix,
		region: region,
	}
}

// Put uploads the artifact, creating the bucket first if it does not exist
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", s.Location(key), err)
	}

	return s.Location(key), nil
}

// Get downloads the artifact
func (s *S3Storage) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s: %w", s.Location(key), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", s.Location(key), err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object content: %w", err)
	}
	return data, nil
}

// Location returns s3://<bucket>/<key>
func (s *S3Storage) Location(key string) string {
	return fmt.Sprintf("%s://%s/%s", SchemeS3, s.bucket, s.objectKey(key))
}

func (s *S3Storage) Close() error {
	return nil
}

func (s *S3Storage) ensureBucket(ctx context.Context) error {
	if s.ensured {
		return nil
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		s.ensured = true
		return nil
	}
	if !isS3NotFound(err) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	// us-east-1 rejects an explicit location constraint
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	s.ensured = true
	return nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// isS3NotFound detects the bare 404 HeadBucket returns for a missing bucket
func isS3NotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
