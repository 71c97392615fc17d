package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ashprao/chatbox/pkg/logger"
)

// DefaultWatchDebounce groups the bursts of events editors produce on save
const DefaultWatchDebounce = 300 * time.Millisecond

// Watcher reloads the config file when it changes on disk
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)
	watcher  *fsnotify.Watcher
	logger   *logger.Logger

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	done   chan struct{}
}

// Watch starts watching configPath. onChange receives every reloaded
// config that passes validation; it runs on the watcher's goroutine.
func Watch(configPath string, debounce time.Duration, onChange func(*Config), logger *logger.Logger) (*Watcher, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory since editors often replace the file by renaming
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:     absPath,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		logger:   logger.WithComponent("config-watcher"),
		done:     make(chan struct{}),
	}
	go w.processEvents()

	w.logger.Info("Watching config file", "path", absPath)
	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("Failed to reload config", "path", w.path, "error", err)
		return
	}
	if err := cfg.ValidateConfig(); err != nil {
		w.logger.Warn("Ignoring invalid config change", "path", w.path, "error", err)
		return
	}

	w.logger.Info("Successfully reloaded config", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}
