package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/pkg/logger"
)

const fileExt = ".json"

// FileStorage implements the Storage interface with one JSON file per key
type FileStorage struct {
	basePath string
	logger   *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewFileStorage creates a new file-based storage implementation
func NewFileStorage(basePath string, logger *logger.Logger) (*FileStorage, error) {
	if basePath == "" {
		basePath = constants.DefaultStoragePath
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fs := &FileStorage{
		basePath: basePath,
		logger:   logger.WithComponent("file-storage"),
	}

	fs.logger.Info("Initialized file storage", "base_path", basePath)
	return fs, nil
}

func (fs *FileStorage) path(key string) string {
	return filepath.Join(fs.basePath, key+fileExt)
}

// Read loads and decodes the file for key
func (fs *FileStorage) Read(ctx context.Context, key string, out any) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.closed {
		return false, ErrClosed
	}

	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fs.logger.Debug("Key not found", "key", key)
			return false, nil
		}
		fs.logger.Error("Failed to read key file", "key", key, "error", err)
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		fs.logger.Error("Failed to unmarshal value", "key", key, "error", err)
		return true, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Write encodes value and replaces the file for key. The data goes to a
// temporary file first and is renamed into place, so readers never see a
// half-written value.
func (fs *FileStorage) Write(ctx context.Context, key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fs.logger.Error("Failed to marshal value", "key", key, "error", err)
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(fs.basePath, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		fs.logger.Error("Failed to write temp file", "key", key, "error", err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, fs.path(key)); err != nil {
		os.Remove(tmpName)
		fs.logger.Error("Failed to replace key file", "key", key, "error", err)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	fs.logger.Debug("Successfully wrote key", "key", key, "bytes", len(data))
	return nil
}

// Delete removes the file for key
func (fs *FileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}

	if err := os.Remove(fs.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		fs.logger.Error("Failed to delete key file", "key", key, "error", err)
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	fs.logger.Info("Deleted key", "key", key)
	return nil
}

// Keys lists the keys that have a file in the base directory
func (fs *FileStorage) Keys(ctx context.Context) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the storage closed
func (fs *FileStorage) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.closed {
		fs.logger.Info("Closing file storage")
		fs.closed = true
	}
	return nil
}

// Ping checks if the storage is accessible
func (fs *FileStorage) Ping(ctx context.Context) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.closed {
		return ErrClosed
	}

	// Check if base directory is accessible
	if _, err := os.Stat(fs.basePath); err != nil {
		fs.logger.Error("Storage ping failed", "error", err)
		return fmt.Errorf("storage ping failed: %w", err)
	}
	return nil
}
