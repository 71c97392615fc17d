package storage

import (
	"fmt"

	"github.com/ashprao/chatbox/pkg/logger"
)

// DefaultStorageFactory creates the built-in storage backends
type DefaultStorageFactory struct {
	logger *logger.Logger
}

// NewDefaultStorageFactory creates a new factory instance
func NewDefaultStorageFactory(logger *logger.Logger) *DefaultStorageFactory {
	return &DefaultStorageFactory{
		logger: logger,
	}
}

// CreateStorage creates a storage instance from configuration
func (f *DefaultStorageFactory) CreateStorage(config StorageConfig) (Storage, error) {
	f.logger.Info("Creating storage", "type", config.Type, "base_path", config.BasePath)

	switch config.Type {
	case "file", "":
		return NewFileStorage(config.BasePath, f.logger)
	case "sqlite":
		return NewSQLiteStorage(config.BasePath, f.logger)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// SupportedTypes returns the list of supported storage types
func (f *DefaultStorageFactory) SupportedTypes() []string {
	return []string{"file", "sqlite", "memory"}
}
