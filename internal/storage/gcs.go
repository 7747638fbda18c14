package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage implements Backend on a Google Cloud Storage bucket
type GCSStorage struct {
	client  *storage.Client
	bucket  string
	prefix  string
	project string
	ensured bool
}

// NewGCSStorage creates a backend for gs://<bucket>/<prefix> with default
// credentials unless opts say otherwise
func NewGCSStorage(ctx context.Context, bucket, prefix, project string, opts ...option.ClientOption) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCS bucket is required")
	}

	client, err := storage.NewClient(ctx, append([]option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		project: project,
	}, nil
}

// Put writes the object, creating the bucket in the configured project if absent
func (s *GCSStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	writer := s.client.Bucket(s.bucket).Object(s.objectName(key)).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to write %s: %w", s.Location(key), err)
	}
	// the object only exists once Close succeeds
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", s.Location(key), err)
	}

	return s.Location(key), nil
}

// Get reads the object
func (s *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.objectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", s.Location(key), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create reader for GCS object %s: %w", s.Location(key), err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object content: %w", err)
	}
	return data, nil
}

// Location returns gs://<bucket>/<object>
func (s *GCSStorage) Location(key string) string {
	return fmt.Sprintf("%s://%s/%s", SchemeGCS, s.bucket, s.objectName(key))
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) ensureBucket(ctx context.Context) error {
	if s.ensured {
		return nil
	}

	bucket := s.client.Bucket(s.bucket)
	_, err := bucket.Attrs(ctx)
	if err == nil {
		s.ensured = true
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	if s.project == "" {
		return fmt.Errorf("bucket %s does not exist and no GCS project is configured to create it", s.bucket)
	}
	if err := bucket.Create(ctx, s.project, nil); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	s.ensured = true
	return nil
}

func (s *GCSStorage) objectName(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}
