package storage

import (
	"context"
	"errors"
)

// Backend persists backup artifacts
type Backend interface {
	// Put writes data under key, creating the destination container if absent,
	// and returns the full location of the artifact.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get reads the artifact stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// Location returns the full location an artifact stored under key has
	Location(key string) string

	Close() error
}

// ErrNotFound is returned by Get when no artifact exists under the key
var ErrNotFound = errors.New("artifact not found")
