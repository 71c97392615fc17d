// Package state reads and writes the application state kept in storage:
// global settings, the install config and the list of chat sessions.
package state

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/storage"
	"github.com/ashprao/chatbox/pkg/logger"
)

// Storage keys
const (
	SettingsKey = "settings"
	ConfigsKey  = "configs"
	SessionsKey = "chat-sessions"
)

// Store maps application state onto storage keys
type Store struct {
	storage storage.Storage
	logger  *logger.Logger
}

// NewStore creates a store on top of s
func NewStore(s storage.Storage, logger *logger.Logger) *Store {
	return &Store{
		storage: s,
		logger:  logger.WithComponent("state"),
	}
}

// ReadSettings returns the stored settings. Stored values are decoded over
// the defaults so fields missing from older data keep their default.
func (s *Store) ReadSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	found, err := s.storage.Read(ctx, SettingsKey, &settings)
	if err != nil {
		s.logger.Error("Failed to read settings", "error", err)
		return models.DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}
	if !found {
		s.logger.Info("No stored settings, using defaults")
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

// WriteSettings stores settings. An empty API host is replaced by the
// default host first.
func (s *Store) WriteSettings(ctx context.Context, settings models.Settings) error {
	if settings.ModelSetting.APIHost == "" {
		settings.ModelSetting.APIHost = constants.DefaultAPIHost
	}
	s.logger.Info("Writing settings", "api_host", settings.ModelSetting.APIHost)
	if err := s.storage.Write(ctx, SettingsKey, settings); err != nil {
		s.logger.Error("Failed to write settings", "error", err)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ReadConfig returns the install config, creating and storing a new one
// with a fresh uuid on first use
func (s *Store) ReadConfig(ctx context.Context) (models.Config, error) {
	var config models.Config
	found, err := s.storage.Read(ctx, ConfigsKey, &config)
	if err != nil {
		return models.Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if found && config.UUID != "" {
		return config, nil
	}

	config = models.Config{UUID: uuid.NewString()}
	s.logger.Info("Creating install config", "uuid", config.UUID)
	if err := s.WriteConfig(ctx, config); err != nil {
		return models.Config{}, err
	}
	return config, nil
}

// WriteConfig stores the install config
func (s *Store) WriteConfig(ctx context.Context, config models.Config) error {
	if err := s.storage.Write(ctx, ConfigsKey, config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ReadSessions returns the stored sessions. With nothing stored it returns
// one new session built from the settings' model setting. Sessions saved
// without a model setting get the default one.
func (s *Store) ReadSessions(ctx context.Context, settings models.Settings) ([]models.Session, error) {
	var sessions []models.Session
	found, err := s.storage.Read(ctx, SessionsKey, &sessions)
	if err != nil {
		s.logger.Error("Failed to read sessions", "error", err)
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	if !found || len(sessions) == 0 {
		s.logger.Info("No stored sessions, creating one")
		return []models.Session{models.NewSession(constants.DefaultSessionName, settings.ModelSetting)}, nil
	}

	for i := range sessions {
		if sessions[i].Model.IsZero() {
			sessions[i].Model = models.DefaultModelSetting()
		}
	}
	s.logger.Info("Successfully read sessions", "count", len(sessions))
	return sessions, nil
}

// WriteSessions stores the full session list
func (s *Store) WriteSessions(ctx context.Context, sessions []models.Session) error {
	if err := s.storage.Write(ctx, SessionsKey, sessions); err != nil {
		s.logger.Error("Failed to write sessions", "count", len(sessions), "error", err)
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}
