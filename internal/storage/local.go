package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage implements Backend using the local filesystem
type LocalStorage struct {
	baseDir string
	writer  *AtomicWriter
}

// NewLocalStorage creates a local backend rooted at baseDir, creating it if absent
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".ahub", "backups")
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", baseDir, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", abs, err)
	}

	return &LocalStorage{
		baseDir: abs,
		writer:  NewAtomicWriter(),
	}, nil
}

// Put writes the artifact atomically
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := s.Location(key)
	if err := s.writer.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Get reads the artifact
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	path := s.Location(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Location returns the file path for key
func (s *LocalStorage) Location(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *LocalStorage) Close() error {
	return nil
}
