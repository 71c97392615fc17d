package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/validation"
	"github.com/ashprao/chatbox/pkg/logger"
)

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "configs/config.yaml"

// Environment variables that seed the default model setting
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvAPIHost = "OPENAI_API_HOST"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
	Storage StorageConfig `yaml:"storage"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"` // Empty logs to stdout
}

type APIConfig struct {
	Host             string `yaml:"host"`
	APIKey           string `yaml:"-"` // Only from the environment
	DefaultModel     string `yaml:"default_model"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	AutoNameSessions bool   `yaml:"auto_name_sessions"`
}

type UIConfig struct {
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`
	SidebarWidth int `yaml:"sidebar_width"` // Session sidebar width
}

type StorageConfig struct {
	Type string `yaml:"type"` // "file", "sqlite", "memory"
	Path string `yaml:"path"` // Empty uses the app storage root
}

// Default returns the configuration written for new installs
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     constants.AppName,
			Version:  constants.AppVersion,
			LogLevel: "info",
		},
		API: APIConfig{
			Host:             constants.DefaultAPIHost,
			DefaultModel:     constants.DefaultModelName,
			TimeoutSeconds:   constants.DefaultTimeoutSeconds,
			AutoNameSessions: true,
		},
		UI: UIConfig{
			WindowWidth:  constants.DefaultWindowWidth,
			WindowHeight: constants.DefaultWindowHeight,
			SidebarWidth: constants.DefaultSidebarWidth,
		},
		Storage: StorageConfig{
			Type: constants.DefaultStorageType,
		},
	}
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Create default config if file doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing sections keep their defaults
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	if apiKey := os.Getenv(EnvAPIKey); apiKey != "" {
		config.API.APIKey = apiKey
	}
	if apiHost := os.Getenv(EnvAPIHost); apiHost != "" {
		config.API.Host = apiHost
	}

	return config, nil
}

// createDefaultConfig creates a default configuration file
func createDefaultConfig(configPath string) error {
	return Default().SaveConfig(configPath)
}

// GetLogLevel returns the slog.Level based on the config setting
func (c *Config) GetLogLevel() slog.Level {
	return logger.ParseLevel(c.App.LogLevel)
}

// ValidateConfig validates the entire configuration structure
func (c *Config) ValidateConfig() error {
	// Validate App config
	if c.App.Name == "" {
		return fmt.Errorf("app.name cannot be empty")
	}
	if c.App.Version == "" {
		return fmt.Errorf("app.version cannot be empty")
	}

	if err := c.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("API config validation failed: %w", err)
	}

	// Validate UI config
	if err := c.ValidateUIConfig(); err != nil {
		return fmt.Errorf("UI config validation failed: %w", err)
	}

	if err := c.ValidateStorageConfig(); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}

	return nil
}

// ValidateAPIConfig validates the API host section
func (c *Config) ValidateAPIConfig() error {
	if validation.HasErrors(validation.CheckAPIHost(c.API.Host)) {
		return fmt.Errorf("api.host must start with http:// or https://, got %q", c.API.Host)
	}
	if c.API.DefaultModel == "" {
		return fmt.Errorf("api.default_model cannot be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive")
	}
	return nil
}

// ValidateUIConfig validates UI configuration values
func (c *Config) ValidateUIConfig() error {
	return validation.ValidateUIValues(
		c.UI.WindowWidth,
		c.UI.WindowHeight,
		c.UI.SidebarWidth,
	)
}

// ValidateStorageConfig validates the storage backend selection
func (c *Config) ValidateStorageConfig() error {
	validTypes := []string{"file", "sqlite", "memory"}
	if !slices.Contains(validTypes, c.Storage.Type) {
		return fmt.Errorf("storage.type must be one of: %v", validTypes)
	}
	return nil
}

// ReloadConfig reloads configuration from file without restart
func ReloadConfig(configPath string) (*Config, error) {
	return LoadConfig(configPath)
}

// SaveConfig saves the current configuration to file
func (c *Config) SaveConfig(configPath string) error {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}
