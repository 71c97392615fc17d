// Package storage is the local key-value store behind settings, configs and
// chat sessions. Values are stored as JSON documents under string keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by every operation after Close
	ErrClosed = errors.New("storage is closed")

	// ErrInvalidKey is returned for empty keys and keys that are not plain names
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage defines the interface for data persistence operations
type Storage interface {
	// Read decodes the value stored under key into out. found is false,
	// with a nil error, when the key does not exist.
	Read(ctx context.Context, key string, out any) (found bool, err error)

	// Write replaces the value stored under key
	Write(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys in sorted order
	Keys(ctx context.Context) ([]string, error)

	// Health and Management
	Close() error
	Ping(ctx context.Context) error
}

// StorageConfig holds configuration for storage implementations
type StorageConfig struct {
	Type     string `json:"type" yaml:"type"`           // "file", "sqlite", "memory"
	BasePath string `json:"base_path" yaml:"base_path"` // Base directory for file and sqlite storage
}

// StorageFactory creates storage implementations based on configuration
type StorageFactory interface {
	CreateStorage(config StorageConfig) (Storage, error)
	SupportedTypes() []string
}

// validateKey accepts names usable as file names on every platform
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if strings.ContainsAny(key, `/\:*?"<>|`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
