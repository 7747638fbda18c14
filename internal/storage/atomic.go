package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AtomicWriter writes files through a temp file and rename so a reader never sees a partial file
type AtomicWriter struct {
	locks   map[string]*sync.Mutex // per-file locks
	locksMu sync.Mutex             // protects the locks map
}

// NewAtomicWriter creates a new atomic writer
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{
		locks: make(map[string]*sync.Mutex),
	}
}

// WriteFile writes data to a file atomically, creating parent directories
func (w *AtomicWriter) WriteFile(filename string, data []byte, perm os.FileMode) error {
	fileLock := w.getFileLock(filename)
	fileLock.Lock()
	defer fileLock.Unlock()

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := filename + ".tmp." + generateTempSuffix()

	if err := writeSynced(tempFile, data, perm); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := verifyFileIntegrity(tempFile, data); err != nil {
		os.Remove(tempFile)
		return err
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// writeSynced writes and fsyncs the file so the data survives a crash
func writeSynced(filename string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// getFileLock gets or creates a lock for a specific file
func (w *AtomicWriter) getFileLock(filename string) *sync.Mutex {
	w.locksMu.Lock()
	defer w.locksMu.Unlock()

	if lock, exists := w.locks[filename]; exists {
		return lock
	}

	lock := &sync.Mutex{}
	w.locks[filename] = lock
	return lock
}

// verifyFileIntegrity verifies that written data matches expected data
func verifyFileIntegrity(filename string, expectedData []byte) error {
	actualData, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	expectedHash := sha256.Sum256(expectedData)
	actualHash := sha256.Sum256(actualData)

	if expectedHash != actualHash {
		return fmt.Errorf("file integrity check failed: hash mismatch")
	}

	return nil
}

// generateTempSuffix generates a unique suffix for temporary files
func generateTempSuffix() string {
	timestamp := time.Now().UnixNano()
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d-%d", timestamp, os.Getpid())))
	return hex.EncodeToString(hash[:4])
}
