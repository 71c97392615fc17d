package app

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ashprao/chatbox/internal/config"
	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/i18n"
	"github.com/ashprao/chatbox/internal/llm"
	"github.com/ashprao/chatbox/internal/models"
	"github.com/ashprao/chatbox/internal/state"
	"github.com/ashprao/chatbox/internal/storage"
	"github.com/ashprao/chatbox/internal/ui"
	"github.com/ashprao/chatbox/pkg/logger"
)

// App represents the main application container with all dependencies
type App struct {
	// Core dependencies
	config     *config.Config
	configPath string
	logger     *logger.Logger
	provider   llm.Provider
	storage    storage.Storage
	store      *state.Store
	sessions   *state.Sessions
	translator *i18n.Translator
	watcher    *config.Watcher

	// UI components
	fyneApp fyne.App
	window  fyne.Window
	chatUI  *ui.ChatUI

	// Application state
	mu        sync.Mutex
	settings  models.Settings
	isRunning bool
}

// AppConfig holds the command line overrides for creating the application
type AppConfig struct {
	ConfigPath  string
	LogLevel    string
	StoragePath string
	StorageType string
	APIHost     string
}

// New creates a new application instance with all dependencies
func New(appConfig AppConfig) (*App, error) {
	configPath := appConfig.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	cfg, loadErr := config.LoadConfig(configPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	if appConfig.LogLevel != "" {
		cfg.App.LogLevel = appConfig.LogLevel
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Starting application initialization", "version", cfg.App.Version)
	if loadErr != nil {
		log.Warn("Failed to load config, using defaults", "config_path", configPath, "error", loadErr)
	} else if err := cfg.ValidateConfig(); err != nil {
		log.Warn("Configuration is invalid, using defaults", "error", err)
		cfg = config.Default()
	}
	log.Info("Configuration loaded", "config_path", configPath)

	// Create Fyne app
	fyneApp := app.NewWithID(constants.AppID)
	window := fyneApp.NewWindow(cfg.App.Name)
	window.Resize(fyne.NewSize(
		float32(cfg.UI.WindowWidth),
		float32(cfg.UI.WindowHeight),
	))

	// Initialize storage
	storageConfig := storage.StorageConfig{
		Type:     firstNonEmpty(appConfig.StorageType, cfg.Storage.Type),
		BasePath: firstNonEmpty(appConfig.StoragePath, cfg.Storage.Path, fyneApp.Storage().RootURI().Path()),
	}
	stor, err := storage.NewDefaultStorageFactory(log).CreateStorage(storageConfig)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	ctx := context.Background()
	if err := stor.Ping(ctx); err != nil {
		log.Warn("Storage ping failed", "error", err)
	}
	log.Info("Storage initialized", "type", storageConfig.Type, "path", storageConfig.BasePath)

	// Load persisted state
	store := state.NewStore(stor, log)
	settings, err := store.ReadSettings(ctx)
	if err != nil {
		log.Warn("Failed to read settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}
	settings = seedSettings(settings, cfg, appConfig.APIHost)

	install, err := store.ReadConfig(ctx)
	if err != nil {
		log.Warn("Failed to read install config", "error", err)
	} else {
		log.Debug("Install identified", "uuid", install.UUID)
	}

	sessions := state.NewSessions(store, log)
	if err := sessions.Load(ctx, settings); err != nil {
		stor.Close()
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	translator, err := i18n.NewTranslator(settings.Language)
	if err != nil {
		stor.Close()
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	provider := llm.NewOpenAIProviderWithTimeout(cfg.API.TimeoutSeconds, log)
	log.Info("LLM provider initialized", "provider", provider.GetName(), "api_host", settings.ModelSetting.APIHost)

	a := &App{
		config:     cfg,
		configPath: configPath,
		logger:     log,
		provider:   provider,
		storage:    stor,
		store:      store,
		sessions:   sessions,
		translator: translator,
		fyneApp:    fyneApp,
		window:     window,
		settings:   settings,
	}
	a.chatUI = ui.NewChatUI(window, provider, store, sessions, translator, log, a, settings, chatUIConfig(cfg))
	fyneApp.Settings().SetTheme(ui.NewTheme(settings.Theme, settings.FontSize))

	log.Info("Application initialization completed successfully")
	return a, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.App.LogFile == "" {
		return logger.NewLogger(cfg.GetLogLevel()), nil
	}
	log, err := logger.NewFileLogger(cfg.GetLogLevel(), cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log, nil
}

// seedSettings fills the model setting from the yaml config and the
// environment. The key and host only replace untouched defaults; an explicit
// host flag always wins.
func seedSettings(settings models.Settings, cfg *config.Config, apiHostFlag string) models.Settings {
	setting := settings.ModelSetting
	if setting.APIKey == "" {
		setting.APIKey = cfg.API.APIKey
	}
	if (setting.APIHost == "" || setting.APIHost == constants.DefaultAPIHost) && cfg.API.Host != "" {
		setting.APIHost = cfg.API.Host
	}
	if apiHostFlag != "" {
		setting.APIHost = apiHostFlag
	}
	if setting.Name == "" {
		setting.Name = cfg.API.DefaultModel
	}
	settings.ModelSetting = setting
	return settings
}

func chatUIConfig(cfg *config.Config) ui.ChatUIConfig {
	return ui.ChatUIConfig{
		Version:          cfg.App.Version,
		AutoNameSessions: cfg.API.AutoNameSessions,
		WindowWidth:      cfg.UI.WindowWidth,
		SidebarWidth:     cfg.UI.SidebarWidth,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Run starts the application and blocks until the window is closed
func (a *App) Run() error {
	a.mu.Lock()
	if a.isRunning {
		a.mu.Unlock()
		return fmt.Errorf("application is already running")
	}
	a.isRunning = true
	a.mu.Unlock()

	a.logger.Info("Starting application")

	// Initialize the chat UI
	if err := a.chatUI.Initialize(); err != nil {
		a.logger.Error("Failed to initialize chat UI", "error", err)
		return fmt.Errorf("failed to initialize chat UI: %w", err)
	}

	watcher, err := config.Watch(a.configPath, config.DefaultWatchDebounce, a.onConfigChanged, a.logger)
	if err != nil {
		a.logger.Warn("Config file watching disabled", "error", err)
	} else {
		a.watcher = watcher
	}

	// Show window and run the application
	a.window.ShowAndRun()

	a.mu.Lock()
	a.isRunning = false
	a.mu.Unlock()
	return nil
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	a.logger.Info("Shutting down application")

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Error("Failed to stop config watcher", "error", err)
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Error("Failed to close storage", "error", err)
		}
	}

	a.logger.Info("Application shutdown completed")
	return a.logger.Close()
}

// SaveConfig writes the current configuration to its file
func (a *App) SaveConfig() error {
	a.mu.Lock()
	cfg := *a.config
	a.mu.Unlock()

	if err := cfg.SaveConfig(a.configPath); err != nil {
		a.logger.Error("Failed to save config", "error", err)
		return fmt.Errorf("failed to save config: %w", err)
	}
	a.logger.Info("Config saved", "config_path", a.configPath)
	return nil
}

// UpdateWindowSize resizes the main window
func (a *App) UpdateWindowSize(width, height int) {
	if a.window != nil {
		a.window.Resize(fyne.NewSize(float32(width), float32(height)))
		a.logger.Info("Window size updated", "width", width, "height", height)
	}
}

// ApplySettings applies the theme, font size and language of settings. The
// settings dialog also calls it to preview a theme before saving.
func (a *App) ApplySettings(settings models.Settings) {
	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	a.fyneApp.Settings().SetTheme(ui.NewTheme(settings.Theme, settings.FontSize))
	if a.translator.Language() != settings.Language {
		a.translator.SetLanguage(settings.Language)
	}
	if a.chatUI != nil {
		a.chatUI.ApplySettings(settings)
	}
	a.logger.Debug("Settings applied", "theme", settings.Theme, "font_size", settings.FontSize, "language", settings.Language)
}

// OpenURL opens rawURL in the system browser
func (a *App) OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse url: %w", err)
	}
	return a.fyneApp.OpenURL(u)
}

// onConfigChanged applies a config file edited on disk
func (a *App) onConfigChanged(cfg *config.Config) {
	a.mu.Lock()
	old := a.config
	cfg.API.APIKey = old.API.APIKey
	a.config = cfg
	a.mu.Unlock()

	a.logger.Info("Applying reloaded config")
	if cfg.UI.WindowWidth != old.UI.WindowWidth || cfg.UI.WindowHeight != old.UI.WindowHeight {
		a.UpdateWindowSize(cfg.UI.WindowWidth, cfg.UI.WindowHeight)
	}
	a.chatUI.UpdateConfig(chatUIConfig(cfg))
}

// GetConfig returns the application configuration
func (a *App) GetConfig() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config
}

// GetSettings returns the applied settings
func (a *App) GetSettings() models.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// IsRunning returns whether the application is currently running
func (a *App) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isRunning
}
